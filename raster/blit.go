// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"image"

	"overtide.org/colors"
)

// visibleRect clamps a blit of a srcW×srcH source placed at (dx, dy) against
// both the source and a dstW×dstH destination. It returns the source-space
// sub-rectangle to copy, or an empty rectangle when nothing is visible.
func visibleRect(dx, dy, dstW, dstH, srcW, srcH int) image.Rectangle {
	r := image.Rect(0, 0, srcW, srcH)
	if dx < 0 {
		r.Min.X = -dx
	}
	if dy < 0 {
		r.Min.Y = -dy
	}
	if over := dx + srcW - dstW; over > 0 {
		r.Max.X = srcW - over
	}
	if over := dy + srcH - dstH; over > 0 {
		r.Max.Y = srcH - over
	}
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return image.Rectangle{}
	}
	return r
}

// The inner loops below are deliberately not inlined: keeping them out of
// their callers leaves the compiler budget to inline the per-pixel blend
// instead.

//go:noinline
func blitMonoOverRows(dst []uint8, dstStride int, src []uint8, srcStride, w, h int, pre colors.Premultiplied) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			s := pre.MulAlpha(srow[x])
			di := 4 * x
			d := colors.Premultiplied{B: drow[di], G: drow[di+1], R: drow[di+2], A: drow[di+3]}
			o := s.Over(d)
			drow[di], drow[di+1], drow[di+2], drow[di+3] = o.B, o.G, o.R, o.A
		}
	}
}

//go:noinline
func blitBGRAOverRows(dst []uint8, dstStride int, src []uint8, srcStride, w, h int, alpha uint8) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			si := 4 * x
			s := colors.Premultiplied{B: srow[si], G: srow[si+1], R: srow[si+2], A: srow[si+3]}.MulAlpha(alpha)
			d := colors.Premultiplied{B: drow[si], G: drow[si+1], R: drow[si+2], A: drow[si+3]}
			o := s.Over(d)
			drow[si], drow[si+1], drow[si+2], drow[si+3] = o.B, o.G, o.R, o.A
		}
	}
}

//go:noinline
func blitAlphaOverRows(dst []uint8, dstStride int, src []uint8, srcStride, w, h int, pre colors.Premultiplied) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			si := 4 * x
			s := pre.MulAlpha(srow[si+3])
			d := colors.Premultiplied{B: drow[si], G: drow[si+1], R: drow[si+2], A: drow[si+3]}
			o := s.Over(d)
			drow[si], drow[si+1], drow[si+2], drow[si+3] = o.B, o.G, o.R, o.A
		}
	}
}

//go:noinline
func copyMonoToFloatRows(dst []float32, dstStride int, src []uint8, srcStride, w, h int) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			drow[x] = float32(srow[x]) / 255
		}
	}
}

//go:noinline
func copyAlphaToFloatRows(dst []float32, dstStride int, src []uint8, srcStride, w, h int) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			drow[x] = float32(srow[4*x+3]) / 255
		}
	}
}

//go:noinline
func copyFloatToMonoRows(dst []uint8, dstStride int, src []float32, srcStride, w, h int) {
	for y := 0; y < h; y++ {
		drow := dst[y*dstStride:]
		srow := src[y*srcStride:]
		for x := 0; x < w; x++ {
			v := srow[x] * 255
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			drow[x] = uint8(v)
		}
	}
}

// BlitMonoOver composites a mono coverage texture at (dx, dy), multiplying
// color by per-pixel coverage.
func BlitMonoOver(dst *RenderTarget, src *Texture, dx, dy int, color colors.BGRA) {
	vis := visibleRect(dx, dy, dst.Width, dst.Height, src.Width, src.Height)
	if vis.Empty() {
		return
	}
	pre := color.Premultiply()
	dstOff := ((vis.Min.Y+dy)*dst.Stride + vis.Min.X + dx) * 4
	srcOff := vis.Min.Y*src.Stride + vis.Min.X
	blitMonoOverRows(dst.Pix[dstOff:], dst.Stride*4, src.Pix[srcOff:], src.Stride, vis.Dx(), vis.Dy(), pre)
}

// BlitBGRAOver composites a premultiplied BGRA texture at (dx, dy), scaled
// by alpha.
func BlitBGRAOver(dst *RenderTarget, src *Texture, dx, dy int, alpha uint8) {
	vis := visibleRect(dx, dy, dst.Width, dst.Height, src.Width, src.Height)
	if vis.Empty() {
		return
	}
	dstOff := ((vis.Min.Y+dy)*dst.Stride + vis.Min.X + dx) * 4
	srcOff := vis.Min.Y*src.Stride + vis.Min.X*4
	blitBGRAOverRows(dst.Pix[dstOff:], dst.Stride*4, src.Pix[srcOff:], src.Stride, vis.Dx(), vis.Dy(), alpha)
}

// BlitAlphaOver composites a BGRA texture using only its alpha channel as
// coverage for color. This is the extract-alpha filter used for shadows of
// color glyphs.
func BlitAlphaOver(dst *RenderTarget, src *Texture, dx, dy int, color colors.BGRA) {
	vis := visibleRect(dx, dy, dst.Width, dst.Height, src.Width, src.Height)
	if vis.Empty() {
		return
	}
	pre := color.Premultiply()
	dstOff := ((vis.Min.Y+dy)*dst.Stride + vis.Min.X + dx) * 4
	srcOff := vis.Min.Y*src.Stride + vis.Min.X*4
	blitAlphaOverRows(dst.Pix[dstOff:], dst.Stride*4, src.Pix[srcOff:], src.Stride, vis.Dx(), vis.Dy(), pre)
}

// copyToFloat copies a texture's coverage into a float32 buffer at
// (dx, dy). Color textures contribute their alpha channel.
func copyToFloat(dst []float32, dstStride, dx, dy int, src *Texture) {
	off := dy*dstStride + dx
	if src.Format == Mono {
		copyMonoToFloatRows(dst[off:], dstStride, src.Pix, src.Stride, src.Width, src.Height)
	} else {
		copyAlphaToFloatRows(dst[off:], dstStride, src.Pix, src.Stride, src.Width, src.Height)
	}
}
