// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/font"
	"overtide.org/scene"
)

// Paint walks the fragment tree in z-order, appending paint ops: the
// block's background, then its content in document order. Within a text
// item shadows precede the foreground in declaration order (first declared
// drawn first, furthest back); line decorations draw last.
func Paint(b *scene.Builder, ctx *Context, frag *BlockFragment, origin xfixed.Point26_6) {
	if frag.Style.Background.A != 0 {
		b.PushRect(xfixed.Rectangle26_6{
			Min: origin,
			Max: addPt(origin, frag.Box.Size),
		}, frag.Style.Background)
	}

	if frag.Inline != nil {
		inlineOrigin := addPt(origin, frag.InlineOffset)
		for _, line := range frag.Inline.Lines {
			paintLine(b, ctx, line, addPt(inlineOrigin, line.Offset))
		}
	}
	for _, child := range frag.Children {
		Paint(b, ctx, child.Fragment, addPt(origin, child.Offset))
	}
}

func paintLine(b *scene.Builder, ctx *Context, line *LineBox, origin xfixed.Point26_6) {
	// Inline backgrounds sit behind every glyph of the line.
	for _, item := range line.Items {
		t, ok := item.(*TextItem)
		if !ok || t.Style.Background.A == 0 {
			continue
		}
		top := origin.Y + t.Offset.Y - t.Glyphs.Ascent
		bottom := origin.Y + t.Offset.Y + t.Glyphs.Descent
		b.PushRect(xfixed.Rectangle26_6{
			Min: xfixed.Point26_6{X: origin.X + t.Offset.X - t.PadLeft, Y: top},
			Max: xfixed.Point26_6{X: origin.X + t.Offset.X + t.Width + t.PadRight, Y: bottom},
		}, t.Style.Background)
	}

	for _, item := range line.Items {
		switch item := item.(type) {
		case *TextItem:
			paintText(b, ctx, item, origin)
		case *DrawingItem:
			b.PushDrawing(addPt(origin, item.Offset), item.Drawing)
		}
	}

	paintDecorations(b, line, origin)
}

func paintText(b *scene.Builder, ctx *Context, t *TextItem, origin xfixed.Point26_6) {
	if t.Glyphs == nil || t.Glyphs.Empty() {
		return
	}
	pen := addPt(origin, t.Offset)
	for _, shadow := range t.Style.Shadows {
		off := xfixed.Point26_6{
			X: font.CSSToDevice(shadow.Offset.X, ctx.DPI),
			Y: font.CSSToDevice(shadow.Offset.Y, ctx.DPI),
		}
		b.PushText(scene.TextOp{
			Pos:    addPt(pen, off),
			Glyphs: t.Glyphs,
			Shadow: true,
			Sigma:  font.CSSToDevice(shadow.Sigma, ctx.DPI),
			Color:  shadow.Color,
		})
	}
	b.PushText(scene.TextOp{
		Pos:    pen,
		Glyphs: t.Glyphs,
		Color:  t.Style.Color,
	})
}

// paintDecorations draws each propagated decoration once per line,
// spanning the horizontal extent of the consecutive items that carry it.
func paintDecorations(b *scene.Builder, line *LineBox, origin xfixed.Point26_6) {
	type segment struct {
		deco       ActiveDecoration
		baseline   xfixed.Int26_6
		start, end xfixed.Int26_6
		open       bool
	}
	var segs []segment

	flushUncarried := func(carried map[int]bool) {
		for i := range segs {
			if segs[i].open && !carried[segs[i].deco.ID] {
				segs[i].open = false
			}
		}
	}

	for _, item := range line.Items {
		t, ok := item.(*TextItem)
		if !ok {
			flushUncarried(nil)
			continue
		}
		carried := make(map[int]bool, len(t.Decorations))
		for _, d := range t.Decorations {
			carried[d.ID] = true
			extended := false
			for i := range segs {
				if segs[i].open && segs[i].deco.ID == d.ID && segs[i].baseline == t.Offset.Y {
					segs[i].end = t.Offset.X + t.Width
					extended = true
					break
				}
			}
			if !extended {
				segs = append(segs, segment{
					deco:     d,
					baseline: t.Offset.Y,
					start:    t.Offset.X,
					end:      t.Offset.X + t.Width,
					open:     true,
				})
			}
		}
		flushUncarried(carried)
	}

	for _, s := range segs {
		y := origin.Y + s.baseline + s.deco.TopOffset
		b.PushRect(xfixed.Rectangle26_6{
			Min: xfixed.Point26_6{X: origin.X + s.start, Y: y},
			Max: xfixed.Point26_6{X: origin.X + s.end, Y: y + s.deco.Thickness},
		}, s.deco.Color)
	}
}

func addPt(a, b xfixed.Point26_6) xfixed.Point26_6 {
	return xfixed.Point26_6{X: a.X + b.X, Y: a.Y + b.Y}
}
