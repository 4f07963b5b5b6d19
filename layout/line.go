// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/style"
	"overtide.org/text"
)

// lineEntry is one unit chunk accepted onto the line being built.
type lineEntry struct {
	unit   *inlineUnit
	glyphs *text.GlyphString
	width  xfixed.Int26_6

	padLeft, padRight xfixed.Int26_6

	ascent, descent xfixed.Int26_6
	// ruby halves, present when unit.kind == rubyUnit
	baseGlyphs, annGlyphs   *text.GlyphString
	baseWidth, annWidth     xfixed.Int26_6
	baseAscent, baseDescent xfixed.Int26_6
	annAscent, annDescent   xfixed.Int26_6
}

type lineBuilder struct {
	ctx   *Context
	avail xfixed.Int26_6
	align style.TextAlign

	lines   []*LineBox
	entries []lineEntry
	width   xfixed.Int26_6
}

func (b *lineBuilder) remaining() xfixed.Int26_6 {
	return b.avail - b.width
}

func (b *lineBuilder) empty() bool { return len(b.entries) == 0 }

func (b *lineBuilder) pushUnit(u *inlineUnit) error {
	switch u.kind {
	case rubyUnit:
		return b.pushRuby(u)
	case drawingUnit:
		b.pushAtomic(u, lineEntry{
			unit:    u,
			width:   u.dsize.X,
			padLeft: u.padLeft, padRight: u.padRight,
			ascent: u.dsize.Y,
		})
		return nil
	}
	return b.pushText(u)
}

// pushAtomic places an unbreakable entry, wrapping first when it would
// overflow a non-empty line.
func (b *lineBuilder) pushAtomic(u *inlineUnit, e lineEntry) {
	total := e.padLeft + e.width + e.padRight
	if total > b.remaining() && !b.empty() {
		b.finishLine(false)
	}
	b.entries = append(b.entries, e)
	b.width += total
	if u.forcedBreakAfter {
		b.finishLine(false)
	}
}

func (b *lineBuilder) pushRuby(u *inlineUnit) error {
	base, ann := u.base, u.ann
	e := lineEntry{
		unit:       u,
		baseGlyphs: &base.shaped, annGlyphs: &ann.shaped,
		baseWidth: base.shaped.Advance, annWidth: ann.shaped.Advance,
		baseAscent: base.shaped.Ascent, baseDescent: base.shaped.Descent,
		annAscent: ann.shaped.Ascent, annDescent: ann.shaped.Descent,
		padLeft: u.padLeft, padRight: u.padRight,
	}
	if e.baseGlyphs.Empty() || e.annGlyphs.Empty() {
		// Metrics of an empty half come from its primary font so the
		// pair still reserves vertical space.
		if err := fillEmptyHalfMetrics(b.ctx, base, &e.baseAscent, &e.baseDescent); err != nil {
			return err
		}
		if err := fillEmptyHalfMetrics(b.ctx, ann, &e.annAscent, &e.annDescent); err != nil {
			return err
		}
	}
	// The wider half sets the pair's inline size.
	e.width = e.baseWidth
	if e.annWidth > e.width {
		e.width = e.annWidth
	}
	// The annotation stacks above the base's ascent.
	e.ascent = e.baseAscent + e.annAscent + e.annDescent
	e.descent = e.baseDescent
	b.pushAtomic(u, e)
	return nil
}

func fillEmptyHalfMetrics(ctx *Context, u *inlineUnit, ascent, descent *xfixed.Int26_6) error {
	if *ascent != 0 || *descent != 0 {
		return nil
	}
	fnt, err := u.matcher.Primary(ctx.DB)
	if err != nil {
		return err
	}
	m := fnt.Metrics()
	*ascent, *descent = m.Ascent, m.Descent
	return nil
}

func (b *lineBuilder) pushText(u *inlineUnit) error {
	runes := u.runes
	if len(runes) == 0 {
		if u.padLeft != 0 || u.padRight != 0 || u.forcedBreakAfter {
			b.pushAtomic(u, lineEntry{
				unit:    u,
				glyphs:  &u.shaped,
				padLeft: u.padLeft, padRight: u.padRight,
			})
		}
		return nil
	}

	cur := 0
	first := true
	for cur < len(runes) {
		padLeft := xfixed.Int26_6(0)
		if first {
			padLeft = u.padLeft
		}

		end, trimmedEnd, fits := b.findChunk(u, cur, padLeft)
		if !fits && !b.empty() {
			b.finishLine(false)
			// Leading collapsible spaces vanish at a soft wrap.
			cur = skipSpaces(u, cur)
			if cur >= len(runes) {
				break
			}
			continue
		}

		last := end >= len(runes)
		padRight := xfixed.Int26_6(0)
		if last {
			padRight = u.padRight
		}

		glyphs, width, err := b.chunkGlyphs(u, cur, trimmedEnd)
		if err != nil {
			return err
		}
		e := lineEntry{
			unit:    u,
			glyphs:  glyphs,
			width:   width,
			padLeft: padLeft, padRight: padRight,
			ascent:  glyphs.Ascent,
			descent: glyphs.Descent,
		}
		b.entries = append(b.entries, e)
		b.width += padLeft + width + padRight
		first = false

		cur = end
		if !last {
			b.finishLine(false)
			cur = skipSpaces(u, cur)
		}
	}
	if u.forcedBreakAfter {
		b.finishLine(false)
	}
	return nil
}

// findChunk returns the furthest break position of u at or after cur whose
// trimmed extent fits the remaining space, its trimmed end, and whether it
// fits at all. When nothing fits on an empty line the smallest chunk is
// returned with fits=true, overflowing deliberately.
func (b *lineBuilder) findChunk(u *inlineUnit, cur int, padLeft xfixed.Int26_6) (end, trimmedEnd int, fits bool) {
	limit := b.remaining() - padLeft

	candidates := candidateEnds(u, cur)
	bestEnd := -1
	bestTrim := -1
	for _, k := range candidates {
		te := trimEnd(u, cur, k)
		w := u.shaped.AdvanceBetween(cur, te)
		if w <= limit {
			bestEnd, bestTrim = k, te
		} else {
			break
		}
	}
	if bestEnd >= 0 {
		return bestEnd, bestTrim, true
	}
	if !b.empty() {
		return 0, 0, false
	}
	// Unbreakable overflow: take the smallest possible chunk.
	k := candidates[0]
	return k, trimEnd(u, cur, k), true
}

// candidateEnds lists the acceptable chunk ends after cur in ascending
// order, ending with the unit length.
func candidateEnds(u *inlineUnit, cur int) []int {
	var out []int
	for _, br := range u.breaks {
		if br.Pos > cur && br.Pos < len(u.runes) {
			out = append(out, br.Pos)
		}
	}
	return append(out, len(u.runes))
}

// trimEnd drops the trailing collapsible spaces of a chunk ending at a
// soft wrap.
func trimEnd(u *inlineUnit, cur, end int) int {
	if end >= len(u.runes) {
		return end
	}
	ws := u.st.WhiteSpace
	if !ws.Collapses() && ws != style.WhiteSpacePreWrap {
		return end
	}
	for end > cur && u.runes[end-1] == ' ' {
		end--
	}
	return end
}

func skipSpaces(u *inlineUnit, cur int) int {
	if !u.st.WhiteSpace.Collapses() {
		return cur
	}
	for cur < len(u.runes) && u.runes[cur] == ' ' {
		cur++
	}
	return cur
}

// chunkGlyphs returns the shaped form of [cur, end): the whole-unit
// shaping when possible, a reshape otherwise. Clusters that straddled the
// wrap reshape cleanly this way.
func (b *lineBuilder) chunkGlyphs(u *inlineUnit, cur, end int) (*text.GlyphString, xfixed.Int26_6, error) {
	if cur == 0 && end == len(u.runes) {
		return &u.shaped, u.shaped.Advance, nil
	}
	shaped, err := b.ctx.Shaper.Shape(b.ctx.DB, u.matcher, string(u.runes[cur:end]), false, u.st.FeatureSettings)
	if err != nil {
		return nil, 0, err
	}
	s := shaped
	return &s, s.Advance, nil
}

// finishLine closes the line under construction. Unless last is set, an
// empty line is still emitted (forced breaks produce one); the final call
// drops a trailing empty line.
func (b *lineBuilder) finishLine(last bool) {
	if b.empty() {
		if !last {
			b.lines = append(b.lines, &LineBox{})
		}
		b.width = 0
		return
	}

	var ascent, descent xfixed.Int26_6
	for i := range b.entries {
		e := &b.entries[i]
		if e.glyphs != nil && e.glyphs.Empty() && e.ascent == 0 && e.descent == 0 {
			// Strut from the unit's primary font keeps empty entries
			// from flattening the line. A resolution failure leaves the
			// entry zero-height.
			_ = fillEmptyHalfMetrics(b.ctx, e.unit, &e.ascent, &e.descent)
		}
		if e.ascent > ascent {
			ascent = e.ascent
		}
		if e.descent > descent {
			descent = e.descent
		}
	}

	line := &LineBox{Baseline: ascent}
	x := xfixed.Int26_6(0)
	for i := range b.entries {
		e := &b.entries[i]
		x += e.padLeft
		switch e.unit.kind {
		case rubyUnit:
			b.placeRuby(line, e, x, ascent)
		case drawingUnit:
			line.Items = append(line.Items, &DrawingItem{
				Offset:  xfixed.Point26_6{X: x, Y: ascent - e.ascent},
				Size:    e.unit.dsize,
				Drawing: e.unit.drawing,
			})
		default:
			line.Items = append(line.Items, &TextItem{
				Offset:      xfixed.Point26_6{X: x, Y: ascent},
				Width:       e.width,
				Glyphs:      e.glyphs,
				Style:       e.unit.st,
				Decorations: e.unit.decos,
				PadLeft:     e.padLeft,
				PadRight:    e.padRight,
			})
		}
		x += e.width + e.padRight
	}
	line.Size = xfixed.Point26_6{X: x, Y: ascent + descent}
	b.lines = append(b.lines, line)
	b.entries = b.entries[:0]
	b.width = 0
}

// placeRuby lays the pair out: the wider half sets the width, the narrower
// is centered; the annotation sits above the base ascent on its own
// baseline.
func (b *lineBuilder) placeRuby(line *LineBox, e *lineEntry, x xfixed.Int26_6, lineAscent xfixed.Int26_6) {
	baseX := x + (e.width-e.baseWidth)/2
	annX := x + (e.width-e.annWidth)/2

	annBaseline := lineAscent - e.baseAscent - e.annDescent

	line.Items = append(line.Items,
		&TextItem{
			Offset:      xfixed.Point26_6{X: baseX, Y: lineAscent},
			Width:       e.baseWidth,
			Glyphs:      e.baseGlyphs,
			Style:       e.unit.base.st,
			Decorations: e.unit.base.decos,
		},
		&TextItem{
			Offset:      xfixed.Point26_6{X: annX, Y: annBaseline},
			Width:       e.annWidth,
			Glyphs:      e.annGlyphs,
			Style:       e.unit.ann.st,
			Decorations: e.unit.ann.decos,
		},
	)
}
