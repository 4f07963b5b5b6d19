// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"image"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/colors"
	"overtide.org/f32"
	"overtide.org/fixed"
)

// FillRect composites an axis-aligned rectangle over the target. Fractional
// edges get partial coverage.
func FillRect(dst *RenderTarget, rect xfixed.Rectangle26_6, color colors.BGRA) {
	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return
	}
	pre := color.Premultiply()
	x0, x1 := fixed.Floor26_6(rect.Min.X), fixed.Ceil26_6(rect.Max.X)
	y0, y1 := fixed.Floor26_6(rect.Min.Y), fixed.Ceil26_6(rect.Max.Y)
	for y := max(y0, 0); y < min(y1, dst.Height); y++ {
		rowCov := axisCoverage(y, rect.Min.Y, rect.Max.Y)
		row := dst.Pix[y*dst.Stride*4:]
		for x := max(x0, 0); x < min(x1, dst.Width); x++ {
			cov := rowCov * axisCoverage(x, rect.Min.X, rect.Max.X)
			a := uint8(cov*255 + 0.5)
			if a == 0 {
				continue
			}
			di := 4 * x
			s := pre.MulAlpha(a)
			d := colors.Premultiplied{B: row[di], G: row[di+1], R: row[di+2], A: row[di+3]}
			o := s.Over(d)
			row[di], row[di+1], row[di+2], row[di+3] = o.B, o.G, o.R, o.A
		}
	}
}

// axisCoverage returns how much of the unit interval [i, i+1) lies inside
// [lo, hi), as a fraction.
func axisCoverage(i int, lo, hi xfixed.Int26_6) float32 {
	a := fixed.From26_6Float(lo) - float32(i)
	b := fixed.From26_6Float(hi) - float32(i)
	if a < 0 {
		a = 0
	}
	if b > 1 {
		b = 1
	}
	if b <= a {
		return 0
	}
	return b - a
}

// StrokePolylineTexture rasterizes a stroked polyline into a fresh mono
// texture. pos is the 26.6 pen position of the drawing; the returned origin
// is the integer position of the texture. The fractional parts of pos and
// of the stroke's bounding box are folded into the rasterization offset so
// the stroke lands on the same subpixel position it would have unclipped.
func StrokePolylineTexture(points []fixed.Point16_16, width fixed.Int16_16, pos xfixed.Point26_6) (image.Point, *Texture) {
	if len(points) == 0 || width <= 0 {
		return image.Point{}, NewTexture(Mono, 0, 0)
	}

	bbox := f32.Nothing()
	pts := make([]f32.Point, len(points))
	for i, p := range points {
		pts[i] = f32.Point{X: p.X.Float32(), Y: p.Y.Float32()}
		bbox = bbox.ExpandToPoint(pts[i])
	}
	hw := width.Float32() / 2
	bbox = bbox.Expand(hw, hw)

	posX := fixed.From26_6(pos.X)
	posY := fixed.From26_6(pos.Y)
	minX := fixed.FromFloat32(bbox.Min.X)
	minY := fixed.FromFloat32(bbox.Min.Y)
	maxX := fixed.FromFloat32(bbox.Max.X)
	maxY := fixed.FromFloat32(bbox.Max.Y)

	shiftX := (minX.Frac() + posX.Frac()).Frac() - minX
	shiftY := (minY.Frac() + posY.Frac()).Frac() - minY
	origin := image.Pt((minX + posX).Floor(), (minY + posY).Floor())
	size := image.Pt(
		(maxX+posX.Frac()).Ceil()-(minX+posX.Frac()).Floor(),
		(maxY+posY.Frac()).Ceil()-(minY+posY.Frac()).Floor(),
	)

	var r StripRasterizer
	shifted := make([]f32.Point, len(pts))
	for i, p := range pts {
		shifted[i] = f32.Point{
			X: p.X + shiftX.Float32(),
			Y: p.Y + shiftY.Float32(),
		}
	}
	r.StrokePolyline(shifted, hw)
	return origin, r.Rasterize(size.X, size.Y)
}
