// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/font"
	"overtide.org/style"
	"overtide.org/subtitle"
)

// Layout lays a subtitle box tree out inside the constraint rectangle and
// returns the fragment tree.
func Layout(ctx *Context, cons Constraints, root *subtitle.BlockContainer) (*BlockFragment, error) {
	return layoutBlock(ctx, cons, root)
}

func layoutBlock(ctx *Context, cons Constraints, block *subtitle.BlockContainer) (*BlockFragment, error) {
	st := block.Style
	if st == nil {
		st = style.Default()
	}
	padLeft := font.CSSToDevice(st.PaddingLeft, ctx.DPI)
	padRight := font.CSSToDevice(st.PaddingRight, ctx.DPI)
	padTop := font.CSSToDevice(st.PaddingTop, ctx.DPI)
	padBottom := font.CSSToDevice(st.PaddingBottom, ctx.DPI)

	// Block width is 'auto': the constraint minus horizontal padding.
	width := cons.Size.X - padLeft - padRight
	if width < 0 {
		width = 0
	}

	frag := &BlockFragment{Style: st}
	var height xfixed.Int26_6

	switch {
	case block.Inline != nil:
		inline, err := LayoutInline(ctx, block.Inline, Constraints{
			Size: xfixed.Point26_6{X: width, Y: cons.Size.Y},
		}, st.TextAlign)
		if err != nil {
			return nil, err
		}
		frag.Inline = inline
		var xOff xfixed.Int26_6
		switch st.TextAlign {
		case style.AlignCenter:
			xOff = (width - inline.Box.Size.X) / 2
		case style.AlignRight:
			xOff = width - inline.Box.Size.X
		}
		if xOff < 0 {
			xOff = 0
		}
		frag.InlineOffset = xfixed.Point26_6{X: padLeft + xOff, Y: padTop}
		height = inline.Box.Size.Y
	default:
		for _, child := range block.Blocks {
			childFrag, err := layoutBlock(ctx, Constraints{
				Size: xfixed.Point26_6{X: width, Y: cons.Size.Y - height},
			}, child)
			if err != nil {
				return nil, err
			}
			frag.Children = append(frag.Children, ChildBlock{
				Offset:   xfixed.Point26_6{X: padLeft, Y: padTop + height},
				Fragment: childFrag,
			})
			height += childFrag.Box.Size.Y
		}
	}

	frag.Box.Size = xfixed.Point26_6{
		X: cons.Size.X,
		Y: height + padTop + padBottom,
	}
	return frag, nil
}
