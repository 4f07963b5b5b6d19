// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"image"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/f32"
	"overtide.org/fixed"
	"overtide.org/raster"
)

// The tofu face is the synthesized placeholder used when every provider
// tier fails: a hollow box at six tenths of an em, drawn for any
// codepoint.

func newTofuFace(db *DB) *Face {
	f := &Face{
		info: FaceInfo{Family: "(tofu)", Weight: Fixed(fixed.I(400))},
		tofu: true,
	}
	f.glyphs.init(db)
	return f
}

func tofuMetrics(size xfixed.Int26_6) Metrics {
	return Metrics{
		Ascent:             xfixed.Int26_6(int64(size) * 4 / 5),
		Descent:            xfixed.Int26_6(int64(size) / 5),
		UnderlineTopOffset: xfixed.Int26_6(int64(size) / 10),
		UnderlineThickness: xfixed.Int26_6(int64(size) / 14),
		StrikeoutTopOffset: xfixed.Int26_6(int64(size) * 3 / 10),
		StrikeoutThickness: xfixed.Int26_6(int64(size) / 14),
	}
}

// TofuAdvance is the width of the placeholder box, six tenths of the font
// size.
func (f *Font) TofuAdvance() xfixed.Int26_6 {
	return xfixed.Int26_6(int64(f.size) * 3 / 5)
}

func (f *Font) renderTofuGlyph() (*raster.Texture, image.Point, error) {
	px := fixed.From26_6Float(f.size)
	w := px * 0.6
	h := px * 0.7
	stroke := px / 14
	if stroke < 1 {
		stroke = 1
	}

	var r raster.StripRasterizer
	outer := []f32.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	inner := []f32.Point{
		{X: stroke, Y: stroke},
		{X: stroke, Y: h - stroke},
		{X: w - stroke, Y: h - stroke},
		{X: w - stroke, Y: stroke},
	}
	// The inner contour winds the opposite way, leaving a hollow box
	// under the non-zero rule.
	r.AddPolygon(outer)
	r.AddPolygon(inner)

	tw := int(ceilf(w))
	th := int(ceilf(h))
	tex := r.Rasterize(tw, th)
	// Box bottom sits on the baseline.
	return tex, image.Pt(0, -th), nil
}
