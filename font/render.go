// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	gtfont "github.com/go-text/typesetting/font"
	gtot "github.com/go-text/typesetting/font/opentype"
	xfixed "golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"

	"overtide.org/colors"
	"overtide.org/f32"
	"overtide.org/fixed"
	"overtide.org/internal/curve"
	"overtide.org/raster"
)

// flattenTolerance is the maximum deviation of outline polylines from the
// true curve, in pixels.
const flattenTolerance = 0.01

// RasterError reports a failed glyph render.
type RasterError struct {
	Glyph gtfont.GID
	Err   error
}

func (e *RasterError) Error() string {
	return fmt.Sprintf("font: rasterizing glyph %d: %v", e.Glyph, e.Err)
}

func (e *RasterError) Unwrap() error { return e.Err }

// Glyph returns the rendered bitmap of gid with the pen's fractional
// position quantized into subpixel bins, blurred by sigma when sigma > 0.
// The returned origin is relative to the glyph's integer pen position.
//
// Blurred requests always produce mono bitmaps: color glyphs are flattened
// to their alpha before blurring.
func (f *Font) Glyph(gid gtfont.GID, fracX, fracY xfixed.Int26_6, sigma float32) (*raster.Texture, image.Point, error) {
	radius := 0
	if sigma > 0 {
		radius = raster.GaussianSigmaToBoxRadius(sigma)
	}
	key := glyphKey{
		size:       f.size,
		varHash:    f.face.varHash,
		gid:        gid,
		subX:       SubpixelBin(fracX),
		subY:       SubpixelBin(fracY),
		blurRadius: int16(radius),
	}
	cache := &f.face.glyphs
	if e, ok := cache.get(key); ok {
		return e.tex, e.origin, nil
	}

	tex, origin, err := f.renderGlyph(gid, key.subX, key.subY)
	if err != nil {
		return nil, image.Point{}, err
	}
	if radius > 0 {
		var b raster.Blurer
		blurred, pad := b.BlurTexture(tex, sigma)
		tex = blurred
		origin = origin.Sub(image.Pt(pad, pad))
	}
	e := cache.put(key, tex, origin)
	return e.tex, e.origin, nil
}

func (f *Font) renderGlyph(gid gtfont.GID, subX, subY uint8) (*raster.Texture, image.Point, error) {
	if f.face.tofu {
		return f.renderTofuGlyph()
	}
	switch data := f.face.face.GlyphData(gid).(type) {
	case gtfont.GlyphOutline:
		return f.renderOutline(data, subX, subY)
	case gtfont.GlyphBitmap:
		return f.renderBitmap(data)
	default:
		return nil, image.Point{}, &RasterError{Glyph: gid, Err: fmt.Errorf("unsupported glyph data format %T", data)}
	}
}

// renderOutline scales the outline to pixels, flattens it and fills it
// with the strip rasterizer at the bin's subpixel offset.
func (f *Font) renderOutline(outline gtfont.GlyphOutline, subX, subY uint8) (*raster.Texture, image.Point, error) {
	scale := f.scale()
	off := f32.Point{X: binOffset(subX), Y: binOffset(subY)}

	// Font units are y-up; the raster space is y-down.
	pt := func(p gtfont.SegmentPoint) f32.Point {
		return f32.Point{X: p.X*scale + off.X, Y: -p.Y*scale + off.Y}
	}

	var (
		contours [][]f32.Point
		cur      []f32.Point
	)
	flush := func() {
		if len(cur) > 1 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case gtot.SegmentOpMoveTo:
			flush()
			cur = append(cur, pt(seg.Args[0]))
		case gtot.SegmentOpLineTo:
			cur = append(cur, pt(seg.Args[0]))
		case gtot.SegmentOpQuadTo:
			if len(cur) == 0 {
				break
			}
			q := curve.Quadratic{cur[len(cur)-1], pt(seg.Args[0]), pt(seg.Args[1])}
			cur = curve.FlattenQuadratic(cur, q, flattenTolerance)
		case gtot.SegmentOpCubeTo:
			if len(cur) == 0 {
				break
			}
			c := curve.Cubic{cur[len(cur)-1], pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])}
			cur = curve.FlattenCubic(cur, c, flattenTolerance)
		}
	}
	flush()

	bbox := f32.Nothing()
	for _, c := range contours {
		for _, p := range c {
			bbox = bbox.ExpandToPoint(p)
		}
	}
	if bbox.Empty() {
		// Whitespace glyphs have no outline.
		return raster.NewTexture(raster.Mono, 0, 0), image.Point{}, nil
	}

	minX := int(floorf(bbox.Min.X))
	minY := int(floorf(bbox.Min.Y))
	w := int(ceilf(bbox.Max.X)) - minX
	h := int(ceilf(bbox.Max.Y)) - minY

	var r raster.StripRasterizer
	shift := f32.Point{X: -float32(minX), Y: -float32(minY)}
	for _, c := range contours {
		for i := range c {
			c[i] = c[i].Add(shift)
		}
		r.AddPolygon(c)
	}
	return r.Rasterize(w, h), image.Pt(minX, minY), nil
}

// renderBitmap decodes a color glyph strike and scales it to the font
// size. The strike's height is treated as one em.
func (f *Font) renderBitmap(data gtfont.GlyphBitmap) (*raster.Texture, image.Point, error) {
	switch data.Format {
	case gtfont.PNG, gtfont.JPG, gtfont.TIFF:
	default:
		return nil, image.Point{}, fmt.Errorf("font: unsupported bitmap glyph format")
	}
	img, _, err := image.Decode(bytes.NewReader(data.Data))
	if err != nil {
		return nil, image.Point{}, err
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	src := raster.NewTexture(raster.BGRA, rgba.Bounds().Dx(), rgba.Bounds().Dy())
	for y := 0; y < src.Height; y++ {
		srow := rgba.Pix[y*rgba.Stride:]
		drow := src.Pix[y*src.Stride:]
		for x := 0; x < src.Width; x++ {
			c := colors.BGRA{
				R: srow[4*x], G: srow[4*x+1], B: srow[4*x+2], A: srow[4*x+3],
			}.Premultiply()
			drow[4*x], drow[4*x+1], drow[4*x+2], drow[4*x+3] = c.B, c.G, c.R, c.A
		}
	}

	em := fixed.Ceil26_6(f.size)
	if em <= 0 || src.Height == 0 {
		return src, image.Point{}, nil
	}
	dstH := em
	dstW := src.Width * dstH / src.Height
	if dstW <= 0 {
		dstW = 1
	}
	scaled := raster.ScaleTexture(src, image.Pt(dstW, dstH), image.Point{}, src.Size())
	ascent := fixed.Ceil26_6(f.Metrics().Ascent)
	return scaled, image.Pt(0, -ascent), nil
}

func floorf(v float32) float32 {
	i := float32(int(v))
	if i > v {
		i--
	}
	return i
}

func ceilf(v float32) float32 {
	i := float32(int(v))
	if i < v {
		i++
	}
	return i
}
