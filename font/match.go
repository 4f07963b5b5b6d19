// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"sort"

	"overtide.org/fixed"
)

// matchFaces runs the css-fonts level 4 font-style matching algorithm over
// the candidate set: italic preference first, then weight selection inside
// each italic bucket.
//
// https://drafts.csswg.org/css-fonts/#font-style-matching
func (db *DB) matchFaces(faces []FaceInfo, style Style) (*Face, error) {
	order := [2]bool{false, true}
	if style.Italic {
		order = [2]bool{true, false}
	}
	for _, wantItalic := range order {
		var bucket []FaceInfo
		for _, f := range faces {
			if f.Italic == wantItalic {
				bucket = append(bucket, f)
			}
		}
		face, err := db.matchFacesForWeight(bucket, style)
		if face != nil || err != nil {
			return face, err
		}
	}
	return nil, nil
}

// weightScan is one step of the weight matching rule: a scan direction and
// the weight interval it may take candidates from.
type weightScan struct {
	ascending bool
	lo, hi    fixed.Int16_16
}

func (db *DB) matchFacesForWeight(faces []FaceInfo, style Style) (*Face, error) {
	if len(faces) == 0 {
		return nil, nil
	}

	open := func(info FaceInfo, weight fixed.Int16_16) (*Face, error) {
		face, err := db.open(info)
		if err != nil {
			return nil, err
		}
		face.setWeightIfVariable(weight)
		return face, nil
	}

	// If the desired weight is available that face matches. Variable
	// ranges count as exact for every weight they contain.
	for _, f := range faces {
		if f.Weight.Contains(style.Weight) {
			return open(f, style.Weight)
		}
	}

	tryScan := func(scan weightScan) (*Face, error) {
		if scan.ascending {
			sort.SliceStable(faces, func(i, j int) bool {
				return faces[i].Weight.Start < faces[j].Weight.Start
			})
		} else {
			sort.SliceStable(faces, func(i, j int) bool {
				return faces[i].Weight.End > faces[j].Weight.End
			})
		}
		for _, f := range faces {
			var w fixed.Int16_16
			if scan.ascending {
				w = f.Weight.Start.Max(scan.lo).Min(scan.hi)
			} else {
				w = f.Weight.End.Max(scan.lo).Min(scan.hi)
			}
			if f.Weight.Contains(w) {
				return open(f, w)
			}
		}
		return nil, nil
	}

	w400, w500 := fixed.I(400), fixed.I(500)
	lo, hi := fixed.I(1), fixed.I(1000)

	var plan []weightScan
	switch {
	case style.Weight >= w400 && style.Weight < w500:
		// Between 400 and 500: greater weights up to 500 first, then
		// below the target descending, then above 500 ascending.
		plan = []weightScan{
			{true, style.Weight, w500},
			{false, lo, style.Weight},
			{true, w500, hi},
		}
	case style.Weight < w400:
		plan = []weightScan{
			{false, lo, style.Weight},
			{true, style.Weight, hi},
		}
	default:
		plan = []weightScan{
			{true, style.Weight, hi},
			{false, lo, style.Weight},
		}
	}
	for _, scan := range plan {
		face, err := tryScan(scan)
		if face != nil || err != nil {
			return face, err
		}
	}
	// Only reachable when every candidate's weight lies outside 1..1000.
	return nil, nil
}
