// SPDX-License-Identifier: Unlicense OR MIT

package text

import (
	"github.com/go-text/typesetting/segmenter"
	"github.com/rivo/uniseg"

	"overtide.org/style"
)

// A Break is one line-break opportunity: the text may wrap before rune
// index Pos. Mandatory breaks come from preserved newlines.
type Break struct {
	Pos       int
	Mandatory bool
}

// BreakOptions selects the opportunity rule of a run's style.
type BreakOptions struct {
	// Anywhere inserts an opportunity between every grapheme cluster
	// (line-break: anywhere).
	Anywhere  bool
	WordBreak style.WordBreak
}

// BreakOpportunities returns the break opportunities of a paragraph in
// ascending rune order, excluding position zero and including the final
// position only when the text ends in a mandatory break.
func BreakOpportunities(runes []rune, opts BreakOptions) []Break {
	if len(runes) == 0 {
		return nil
	}
	if opts.Anywhere || opts.WordBreak == style.WordBreakBreakAll {
		return graphemeBreaks(runes)
	}
	var seg segmenter.Segmenter
	seg.Init(runes)
	var out []Break
	iter := seg.LineIterator()
	for iter.Next() {
		line := iter.Line()
		pos := line.Offset + len(line.Text)
		if pos >= len(runes) {
			// The segmenter flags the end of text as mandatory too; it only
			// counts when the text itself ends in a line separator.
			last := runes[len(runes)-1]
			hard := last == '\n' || last == '\r' || last == '\v' || last == '\f' ||
				last == 0x85 || last == 0x2028 || last == 0x2029
			if !line.IsMandatoryBreak || !hard {
				break
			}
		}
		if opts.WordBreak == style.WordBreakKeepAll && !line.IsMandatoryBreak && !explicitBreak(runes, pos) {
			continue
		}
		out = append(out, Break{Pos: pos, Mandatory: line.IsMandatoryBreak})
	}
	return out
}

// explicitBreak reports opportunities caused by visible separators, the
// only soft breaks word-break: keep-all retains.
func explicitBreak(runes []rune, pos int) bool {
	if pos == 0 || pos > len(runes) {
		return false
	}
	switch runes[pos-1] {
	case ' ', '\t', '-', '­', '‐':
		return true
	}
	return false
}

func graphemeBreaks(runes []rune) []Break {
	var out []Break
	g := uniseg.NewGraphemes(string(runes))
	pos := 0
	for g.Next() {
		pos += len(g.Runes())
		if pos < len(runes) {
			out = append(out, Break{Pos: pos})
		}
	}
	// Newlines still break mandatorily.
	for i, r := range runes {
		if r == '\n' {
			out = append(out, Break{Pos: i + 1, Mandatory: true})
		}
	}
	sortBreaks(out)
	return out
}

func sortBreaks(b []Break) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].Pos < b[j-1].Pos; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}
