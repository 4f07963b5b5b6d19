// SPDX-License-Identifier: Unlicense OR MIT

// Package text shapes styled runs into positioned glyph strings.
//
// A run of text is segmented on bidi level, script and font coverage
// boundaries, each segment is shaped with harfbuzz, and the shaped
// segments are reassembled into a GlyphString whose runs carry their
// visual order.
package text

import (
	xfixed "golang.org/x/image/math/fixed"

	gtfont "github.com/go-text/typesetting/font"

	"overtide.org/font"
)

// Glyph is one positioned glyph of a shaped run.
type Glyph struct {
	ID gtfont.GID
	// Cluster is the rune index in the shaped paragraph that starts the
	// cluster this glyph belongs to.
	Cluster int
	// RuneCount is the number of source runes in the cluster; GlyphCount
	// the number of glyphs.
	RuneCount  int
	GlyphCount int
	XAdvance   xfixed.Int26_6
	YAdvance   xfixed.Int26_6
	XOffset    xfixed.Int26_6
	YOffset    xfixed.Int26_6
}

// Run is a maximal font- and direction-homogeneous shaped sequence.
type Run struct {
	Font *font.Font
	// Glyphs are in visual (left-to-right) order.
	Glyphs []Glyph
	// Start and End delimit the run's runes in the source text.
	Start, End int
	RTL        bool
	Advance    xfixed.Int26_6
	Ascent     xfixed.Int26_6
	Descent    xfixed.Int26_6
	LineGap    xfixed.Int26_6
}

// GlyphString is the shaped form of one styled text segment.
type GlyphString struct {
	// Runs are in logical order; VisualOrder holds indices into Runs in
	// display order.
	Runs        []Run
	VisualOrder []int
	Advance     xfixed.Int26_6
	// Ascent, Descent and LineGap are the maxima over the runs' primary
	// fonts.
	Ascent  xfixed.Int26_6
	Descent xfixed.Int26_6
	LineGap xfixed.Int26_6
}

// Empty reports whether nothing was shaped.
func (g *GlyphString) Empty() bool { return len(g.Runs) == 0 }

// RuneLen returns the number of source runes covered.
func (g *GlyphString) RuneLen() int {
	n := 0
	for i := range g.Runs {
		n += g.Runs[i].End - g.Runs[i].Start
	}
	return n
}

// AdvanceBetween returns the summed advance of the glyphs whose cluster
// starts inside [start, end).
func (g *GlyphString) AdvanceBetween(start, end int) xfixed.Int26_6 {
	var sum xfixed.Int26_6
	for i := range g.Runs {
		run := &g.Runs[i]
		for _, gl := range run.Glyphs {
			if gl.Cluster >= start && gl.Cluster < end {
				sum += gl.XAdvance
			}
		}
	}
	return sum
}
