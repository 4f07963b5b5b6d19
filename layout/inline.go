// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"log/slog"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/fixed"
	"overtide.org/font"
	"overtide.org/scene"
	"overtide.org/style"
	"overtide.org/subtitle"
	"overtide.org/text"
)

// Context carries the collaborators of one layout pass.
type Context struct {
	DPI    uint32
	DB     *font.DB
	Shaper *text.Shaper
	Log    *slog.Logger
}

// Constraints is the available space handed to a formatting context.
type Constraints struct {
	Size xfixed.Point26_6
}

type unitKind uint8

const (
	textUnit unitKind = iota
	rubyUnit
	drawingUnit
)

// An inlineUnit is one flattened, atomic-or-breakable piece of inline
// content. Text units carry their whole-run shaping for measurement and
// their local soft break opportunities.
type inlineUnit struct {
	kind unitKind

	// text
	runes   []rune
	st      *style.Computed
	matcher *font.Matcher
	decos   []ActiveDecoration
	shaped  text.GlyphString
	breaks  []text.Break

	padLeft, padRight xfixed.Int26_6
	forcedBreakAfter  bool

	// ruby
	base, ann *inlineUnit

	// drawing
	drawing scene.Drawing
	dsize   xfixed.Point26_6
}

// flattener walks the span tree into a unit list, collapsing whitespace
// across unit boundaries and attaching padding.
type flattener struct {
	ctx   *Context
	units []*inlineUnit
	// pendingPadLeft attaches to the next emitted unit.
	pendingPadLeft xfixed.Int26_6
	// lastSpace tracks whether collapsible output so far ends in a space
	// (or is still at the paragraph start).
	lastSpace bool
	decoID    int
	err       error
}

// LayoutInline lays one inline formatting context out into lines no wider
// than the constraint.
func LayoutInline(ctx *Context, content *subtitle.InlineContent, cons Constraints, align style.TextAlign) (*InlineFragment, error) {
	fl := &flattener{ctx: ctx, lastSpace: true}
	rootStyle := content.Root.Style
	if rootStyle == nil {
		rootStyle = style.Default()
	}
	fl.flattenSpan(&content.Root, rootStyle, nil)
	if fl.err != nil {
		return nil, fl.err
	}
	units := fl.units

	for _, u := range units {
		if err := shapeUnit(ctx, u); err != nil {
			return nil, err
		}
	}

	lb := lineBuilder{ctx: ctx, avail: cons.Size.X, align: align}
	for _, u := range units {
		if err := lb.pushUnit(u); err != nil {
			return nil, err
		}
	}
	lb.finishLine(true)

	frag := &InlineFragment{Lines: lb.lines}
	var width, height xfixed.Int26_6
	for _, line := range frag.Lines {
		line.Offset.Y = height
		height += line.Size.Y
		if line.Size.X > width {
			width = line.Size.X
		}
	}
	frag.Box.Size = xfixed.Point26_6{X: width, Y: height}

	// Alignment distributes each line's slack against the widest extent
	// available.
	alignWidth := cons.Size.X
	if alignWidth > width && align == style.AlignLeft {
		alignWidth = width
	}
	for _, line := range frag.Lines {
		slack := alignWidth - line.Size.X
		if slack < 0 {
			slack = 0
		}
		switch align {
		case style.AlignCenter:
			line.Offset.X = slack / 2
		case style.AlignRight:
			line.Offset.X = slack
		}
	}
	if align != style.AlignLeft && cons.Size.X > frag.Box.Size.X {
		frag.Box.Size.X = cons.Size.X
	}
	return frag, nil
}

func (fl *flattener) matcherFor(st *style.Computed) *font.Matcher {
	return &font.Matcher{
		Families: st.FontFamilies,
		Style:    font.Style{Weight: fixed.Int16_16(st.FontWeight), Italic: st.Italic},
		Size:     st.FontSize,
		DPI:      fl.ctx.DPI,
	}
}

// flattenSpan emits the units of span, with decos the decorations
// propagated from ancestors.
func (fl *flattener) flattenSpan(span *subtitle.Span, st *style.Computed, decos []ActiveDecoration) {
	if fl.err != nil {
		return
	}
	if span.Style != nil {
		st = span.Style
	}
	matcher := fl.matcherFor(st)
	decos = fl.pushDecorations(decos, st, matcher)

	fl.pendingPadLeft += font.CSSToDevice(st.PaddingLeft, fl.ctx.DPI)
	firstUnit := len(fl.units)

	for _, item := range span.Children {
		switch item := item.(type) {
		case subtitle.Text:
			fl.emitText(item.Text, st, matcher, decos)
		case *subtitle.Span:
			fl.flattenSpan(item, st, decos)
		case *subtitle.Ruby:
			fl.emitRuby(item, st, decos)
		case *subtitle.Drawing:
			fl.emitDrawing(item, st)
		}
	}

	padRight := font.CSSToDevice(st.PaddingRight, fl.ctx.DPI)
	if padRight != 0 {
		if len(fl.units) > firstUnit {
			fl.units[len(fl.units)-1].padRight += padRight
		} else {
			// Padding on an empty span still takes space.
			fl.pendingPadLeft += padRight
		}
	}
}

// pushDecorations resolves the span's declared decorations against its
// primary font and merges them into the propagated set. Re-declaring an
// active kind supersedes its color only.
func (fl *flattener) pushDecorations(parent []ActiveDecoration, st *style.Computed, matcher *font.Matcher) []ActiveDecoration {
	d := st.Decoration
	if !d.Underline && !d.LineThrough {
		return parent
	}
	fnt, err := matcher.Primary(fl.ctx.DB)
	if err != nil {
		fl.err = err
		return parent
	}
	m := fnt.Metrics()
	out := append([]ActiveDecoration(nil), parent...)
	if d.Underline {
		out = mergeDecoration(out, ActiveDecoration{
			ID:        fl.nextDecoID(),
			Kind:      Underline,
			Color:     d.UnderlineColor,
			TopOffset: m.UnderlineTopOffset,
			Thickness: m.UnderlineThickness,
		})
	}
	if d.LineThrough {
		out = mergeDecoration(out, ActiveDecoration{
			ID:        fl.nextDecoID(),
			Kind:      LineThrough,
			Color:     d.LineThroughColor,
			TopOffset: -m.StrikeoutTopOffset,
			Thickness: m.StrikeoutThickness,
		})
	}
	return out
}

func (fl *flattener) nextDecoID() int {
	fl.decoID++
	return fl.decoID
}

func mergeDecoration(decos []ActiveDecoration, d ActiveDecoration) []ActiveDecoration {
	for i := range decos {
		if decos[i].Kind == d.Kind {
			decos[i] = d
			return decos
		}
	}
	return append(decos, d)
}

// emitText collapses whitespace per the style and splits preserved
// newlines into forced breaks.
func (fl *flattener) emitText(s string, st *style.Computed, matcher *font.Matcher, decos []ActiveDecoration) {
	runes := []rune(s)
	collapsed := make([]rune, 0, len(runes))
	flushUnit := func(forced bool) {
		if len(collapsed) == 0 && !forced && fl.pendingPadLeft == 0 {
			return
		}
		u := &inlineUnit{
			kind:             textUnit,
			runes:            append([]rune(nil), collapsed...),
			st:               st,
			matcher:          matcher,
			decos:            decos,
			padLeft:          fl.pendingPadLeft,
			forcedBreakAfter: forced,
		}
		fl.pendingPadLeft = 0
		fl.units = append(fl.units, u)
		collapsed = collapsed[:0]
	}

	ws := st.WhiteSpace
	for _, r := range runes {
		switch r {
		case '\n':
			if ws.PreservesNewlines() {
				flushUnit(true)
				fl.lastSpace = true
				continue
			}
			r = ' '
		case '\t', '\r':
			if !ws.Collapses() && ws != style.WhiteSpacePreLine {
				collapsed = append(collapsed, r)
				fl.lastSpace = false
				continue
			}
			r = ' '
		}
		if r == ' ' && ws.Collapses() {
			if fl.lastSpace {
				continue
			}
			fl.lastSpace = true
			collapsed = append(collapsed, ' ')
			continue
		}
		fl.lastSpace = r == ' '
		collapsed = append(collapsed, r)
	}
	flushUnit(false)
}

func (fl *flattener) emitRuby(r *subtitle.Ruby, st *style.Computed, decos []ActiveDecoration) {
	mk := func(span *subtitle.Span) *inlineUnit {
		sub := &flattener{ctx: fl.ctx, lastSpace: true, decoID: fl.decoID}
		subStyle := st
		if span != nil && span.Style != nil {
			subStyle = span.Style
		}
		if span != nil {
			sub.flattenSpan(span, subStyle, decos)
		}
		if sub.err != nil {
			fl.err = sub.err
			return nil
		}
		fl.decoID = sub.decoID
		// A ruby half is shaped as one unit; nested structure inside it
		// flattens to its concatenated text.
		var runes []rune
		for _, u := range sub.units {
			runes = append(runes, u.runes...)
		}
		return &inlineUnit{
			kind:    textUnit,
			runes:   runes,
			st:      subStyle,
			matcher: fl.matcherFor(subStyle),
			decos:   decos,
		}
	}
	base := mk(r.Base)
	ann := mk(r.Annotation)
	if fl.err != nil {
		return
	}
	fl.units = append(fl.units, &inlineUnit{
		kind:    rubyUnit,
		st:      st,
		base:    base,
		ann:     ann,
		padLeft: fl.pendingPadLeft,
	})
	fl.pendingPadLeft = 0
	fl.lastSpace = false
}

func (fl *flattener) emitDrawing(d *subtitle.Drawing, st *style.Computed) {
	fl.units = append(fl.units, &inlineUnit{
		kind:    drawingUnit,
		st:      st,
		drawing: d.Drawing,
		dsize: xfixed.Point26_6{
			X: font.CSSToDevice(d.Size.X, fl.ctx.DPI),
			Y: font.CSSToDevice(d.Size.Y, fl.ctx.DPI),
		},
		padLeft: fl.pendingPadLeft,
	})
	fl.pendingPadLeft = 0
	fl.lastSpace = false
}

// shapeUnit shapes text units and ruby halves, and computes their break
// opportunities.
func shapeUnit(ctx *Context, u *inlineUnit) error {
	switch u.kind {
	case rubyUnit:
		if err := shapeUnit(ctx, u.base); err != nil {
			return err
		}
		return shapeUnit(ctx, u.ann)
	case drawingUnit:
		return nil
	}
	shaped, err := ctx.Shaper.Shape(ctx.DB, u.matcher, string(u.runes), false, u.st.FeatureSettings)
	if err != nil {
		return err
	}
	u.shaped = shaped
	if u.st.WhiteSpace.Wraps() {
		u.breaks = text.BreakOpportunities(u.runes, text.BreakOptions{
			Anywhere:  u.st.LineBreak == style.LineBreakAnywhere,
			WordBreak: u.st.WordBreak,
		})
	}
	return nil
}
