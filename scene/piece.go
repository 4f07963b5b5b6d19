// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"image"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/colors"
	"overtide.org/fixed"
	"overtide.org/raster"
)

// An OutputPiece is one rasterizer unit: a positioned texture reference or
// a filled rectangle, intermediate between paint ops and instances.
type OutputPiece struct {
	Pos  image.Point
	Size image.Point
	// Tex is nil for rectangle pieces.
	Tex *raster.Texture
	// ExtractAlpha draws a color texture as coverage of Color.
	ExtractAlpha bool
	Color        colors.BGRA
	// Rect is the subpixel rectangle of rectangle pieces.
	Rect xfixed.Rectangle26_6
}

// IsRect reports whether the piece is a rectangle fill.
func (p *OutputPiece) IsRect() bool { return p.Tex == nil }

// Bounds returns the piece's destination rectangle.
func (p *OutputPiece) Bounds() image.Rectangle {
	return image.Rectangle{Min: p.Pos, Max: p.Pos.Add(p.Size)}
}

// AppendPieces expands ops into pieces via the glyph cache, in op order.
// Empty pieces are dropped.
func AppendPieces(dst []OutputPiece, ops []PaintOp) ([]OutputPiece, error) {
	var err error
	for _, op := range ops {
		switch op := op.(type) {
		case TextOp:
			dst, err = appendTextPieces(dst, op)
			if err != nil {
				return dst, err
			}
		case RectFillOp:
			dst = append(dst, OutputPiece{
				Pos:   image.Pt(fixed.Floor26_6(op.Rect.Min.X), fixed.Floor26_6(op.Rect.Min.Y)),
				Size:  image.Pt(fixed.Ceil26_6(op.Rect.Max.X)-fixed.Floor26_6(op.Rect.Min.X), fixed.Ceil26_6(op.Rect.Max.Y)-fixed.Floor26_6(op.Rect.Min.Y)),
				Rect:  op.Rect,
				Color: op.Color,
			})
		case DrawingOp:
			for _, node := range op.Drawing.Nodes {
				origin, tex := raster.StrokePolylineTexture(node.Points, node.Width, op.Pos)
				if tex.Width == 0 || tex.Height == 0 {
					continue
				}
				dst = append(dst, OutputPiece{
					Pos:   origin,
					Size:  tex.Size(),
					Tex:   tex,
					Color: node.Color,
				})
			}
		}
	}
	// Zero-sized pieces carry no pixels.
	filtered := dst[:0]
	for _, p := range dst {
		if p.Size.X > 0 && p.Size.Y > 0 {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func appendTextPieces(dst []OutputPiece, op TextOp) ([]OutputPiece, error) {
	sigma := float32(0)
	if op.Shadow {
		sigma = fixed.From26_6Float(op.Sigma)
	}
	pen := op.Pos
	for _, runIdx := range op.Glyphs.VisualOrder {
		run := &op.Glyphs.Runs[runIdx]
		for _, g := range run.Glyphs {
			gx := pen.X + g.XOffset
			gy := pen.Y - g.YOffset
			tex, origin, err := run.Font.Glyph(g.ID, fixed.Frac26_6(gx), fixed.Frac26_6(gy), sigma)
			if err != nil {
				return dst, err
			}
			pen.X += g.XAdvance
			pen.Y -= g.YAdvance
			if tex.Width == 0 || tex.Height == 0 {
				continue
			}
			piece := OutputPiece{
				Pos:   image.Pt(fixed.Floor26_6(gx), fixed.Floor26_6(gy)).Add(origin),
				Size:  tex.Size(),
				Tex:   tex,
				Color: op.Color,
			}
			if op.Shadow && tex.Format == raster.BGRA {
				piece.ExtractAlpha = true
			}
			dst = append(dst, piece)
		}
	}
	return dst, nil
}

// RenderPieces blits pieces straight to the framebuffer, clipped to clip.
func RenderPieces(target *raster.RenderTarget, pieces []OutputPiece, clip image.Rectangle) {
	for i := range pieces {
		p := &pieces[i]
		if !p.Bounds().Overlaps(clip) {
			continue
		}
		if p.IsRect() {
			r := clipRect26_6(p.Rect, clip)
			raster.FillRect(target, r, p.Color)
			continue
		}
		vis := p.Bounds().Intersect(clip)
		src := vis.Sub(p.Pos)
		blitSub(target, p, vis.Min, src)
	}
}

// blitSub draws the src sub-rectangle of p's texture at dst.
func blitSub(target *raster.RenderTarget, p *OutputPiece, dst image.Point, src image.Rectangle) {
	tex := p.Tex
	if src != tex.Bounds() {
		tex = subTexture(tex, src)
	}
	switch {
	case tex.Format == raster.Mono:
		raster.BlitMonoOver(target, tex, dst.X, dst.Y, p.Color)
	case p.ExtractAlpha:
		raster.BlitAlphaOver(target, tex, dst.X, dst.Y, p.Color)
	default:
		raster.BlitBGRAOver(target, tex, dst.X, dst.Y, p.Color.A)
	}
}

// subTexture views a sub-rectangle of t without copying pixels.
func subTexture(t *raster.Texture, r image.Rectangle) *raster.Texture {
	bpp := t.Format.BytesPerPixel()
	return &raster.Texture{
		Format: t.Format,
		Width:  r.Dx(),
		Height: r.Dy(),
		Stride: t.Stride,
		Pix:    t.Pix[r.Min.Y*t.Stride+r.Min.X*bpp:],
	}
}

func offsetRect26_6(r xfixed.Rectangle26_6, d image.Point) xfixed.Rectangle26_6 {
	off := xfixed.Point26_6{X: xfixed.I(d.X), Y: xfixed.I(d.Y)}
	return xfixed.Rectangle26_6{
		Min: xfixed.Point26_6{X: r.Min.X + off.X, Y: r.Min.Y + off.Y},
		Max: xfixed.Point26_6{X: r.Max.X + off.X, Y: r.Max.Y + off.Y},
	}
}

func clipRect26_6(r xfixed.Rectangle26_6, clip image.Rectangle) xfixed.Rectangle26_6 {
	lo := func(a xfixed.Int26_6, b int) xfixed.Int26_6 {
		if bb := xfixed.I(b); a < bb {
			return bb
		}
		return a
	}
	hi := func(a xfixed.Int26_6, b int) xfixed.Int26_6 {
		if bb := xfixed.I(b); a > bb {
			return bb
		}
		return a
	}
	return xfixed.Rectangle26_6{
		Min: xfixed.Point26_6{X: lo(r.Min.X, clip.Min.X), Y: lo(r.Min.Y, clip.Min.Y)},
		Max: xfixed.Point26_6{X: hi(r.Max.X, clip.Max.X), Y: hi(r.Max.Y, clip.Max.Y)},
	}
}
