// SPDX-License-Identifier: Unlicense OR MIT

// Package style holds the computed style attached to subtitle boxes.
//
// A Computed value is shared by pointer between the boxes that have the
// same style; callers that need a modified style clone first. Layout never
// mutates styles.
package style

import (
	"golang.org/x/image/math/fixed"

	"overtide.org/colors"
)

// Weight is a CSS font-weight. Variable fonts make fractional weights
// meaningful, so it is stored in 16.16 like a variation value.
type Weight int32

const (
	WeightNormal Weight = 400 << 16
	WeightBold   Weight = 700 << 16
)

// WeightFromFloat returns the Weight nearest w.
func WeightFromFloat(w float32) Weight {
	if w < 0 {
		return Weight(w*65536 - 0.5)
	}
	return Weight(w*65536 + 0.5)
}

// Float returns w as a float32 CSS weight number.
func (w Weight) Float() float32 {
	return float32(w) / 65536
}

// TextAlign distributes line-box slack.
type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// WhiteSpace controls collapsing and forced breaks.
type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNowrap
	WhiteSpacePre
	WhiteSpacePreWrap
	WhiteSpacePreLine
	WhiteSpaceBreakSpaces
)

// Collapses reports whether runs of spaces collapse to one.
func (w WhiteSpace) Collapses() bool {
	switch w {
	case WhiteSpaceNormal, WhiteSpaceNowrap, WhiteSpacePreLine:
		return true
	}
	return false
}

// PreservesNewlines reports whether "\n" forces a line break.
func (w WhiteSpace) PreservesNewlines() bool {
	switch w {
	case WhiteSpacePre, WhiteSpacePreWrap, WhiteSpacePreLine, WhiteSpaceBreakSpaces:
		return true
	}
	return false
}

// Wraps reports whether soft wrapping is allowed at all.
func (w WhiteSpace) Wraps() bool {
	switch w {
	case WhiteSpacePre, WhiteSpaceNowrap:
		return false
	}
	return true
}

// LineBreak selects the line-break opportunity rule.
type LineBreak uint8

const (
	LineBreakAuto LineBreak = iota
	// LineBreakAnywhere allows a break between every grapheme cluster.
	LineBreakAnywhere
)

// WordBreak adjusts opportunities inside words.
type WordBreak uint8

const (
	WordBreakNormal WordBreak = iota
	// WordBreakBreakAll allows breaks between any two grapheme clusters
	// within words.
	WordBreakBreakAll
	// WordBreakKeepAll suppresses the implicit break opportunities
	// between CJK characters; only spaces and hyphens break.
	WordBreakKeepAll
)

// RubyPosition places annotations relative to their base.
type RubyPosition uint8

const (
	RubyOver RubyPosition = iota
	RubyUnder
)

// Shadow is one entry of a text-shadow list.
type Shadow struct {
	Offset fixed.Point26_6
	// Sigma is the Gaussian blur standard deviation in pixels.
	Sigma fixed.Int26_6
	Color colors.BGRA
}

// Decoration is the text-decoration set declared on one box. Presence
// propagates to inline descendants; a descendant redeclaring a kind
// supersedes only the color.
type Decoration struct {
	Underline        bool
	UnderlineColor   colors.BGRA
	LineThrough      bool
	LineThroughColor colors.BGRA
}

// FeatureSetting is one OpenType font-feature-settings entry.
type FeatureSetting struct {
	// Tag is the four-character feature tag, e.g. "liga".
	Tag   [4]byte
	Value uint32
}

// Tag4 builds a feature tag from a string, padding with spaces.
func Tag4(s string) [4]byte {
	var t = [4]byte{' ', ' ', ' ', ' '}
	copy(t[:], s)
	return t
}

// Computed is the resolved style of a box.
type Computed struct {
	// FontFamilies is the ordered CSS family list.
	FontFamilies []string
	FontWeight   Weight
	Italic       bool
	// FontSize is in CSS pixels; DPI scaling happens in layout.
	FontSize fixed.Int26_6

	Color      colors.BGRA
	Background colors.BGRA

	TextAlign  TextAlign
	WhiteSpace WhiteSpace
	LineBreak  LineBreak
	WordBreak  WordBreak
	Decoration Decoration
	Shadows    []Shadow

	PaddingLeft   fixed.Int26_6
	PaddingRight  fixed.Int26_6
	PaddingTop    fixed.Int26_6
	PaddingBottom fixed.Int26_6

	RubyPosition RubyPosition

	FeatureSettings []FeatureSetting
}

// Default is the initial style: 16px regular text, white on transparent.
func Default() *Computed {
	return &Computed{
		FontFamilies: []string{"sans-serif"},
		FontWeight:   WeightNormal,
		FontSize:     fixed.I(16),
		Color:        colors.White,
	}
}

// Clone returns a copy of s that can be modified without affecting boxes
// sharing s. Slice fields are copied.
func (s *Computed) Clone() *Computed {
	c := *s
	c.FontFamilies = append([]string(nil), s.FontFamilies...)
	c.Shadows = append([]Shadow(nil), s.Shadows...)
	c.FeatureSettings = append([]FeatureSetting(nil), s.FeatureSettings...)
	return &c
}

// InheritFrom fills the inherited properties of s from parent. Box
// properties (padding, background, decoration presence) do not inherit.
func (s *Computed) InheritFrom(parent *Computed) {
	s.FontFamilies = parent.FontFamilies
	s.FontWeight = parent.FontWeight
	s.Italic = parent.Italic
	s.FontSize = parent.FontSize
	s.Color = parent.Color
	s.TextAlign = parent.TextAlign
	s.WhiteSpace = parent.WhiteSpace
	s.LineBreak = parent.LineBreak
	s.WordBreak = parent.WordBreak
	s.Shadows = parent.Shadows
	s.RubyPosition = parent.RubyPosition
	s.FeatureSettings = parent.FeatureSettings
}
