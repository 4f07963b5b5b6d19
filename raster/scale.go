// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"image"

	"overtide.org/fixed"
)

// Bilinear sampling follows the Vulkan sample-operations chapter: per
// destination pixel the source position is computed in 16.16, four texels
// are fetched with clamp-to-edge addressing and blended with the bilinear
// weights.

func clampToEdge(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// a32 accumulates weighted 8-bit samples in 16.16 with a rounding bias, so
// the final shift is exact to within half a bit.
type a32 uint32

const a32Initial a32 = 32768

func (a *a32) add(value uint8, weight fixed.Int16_16) {
	*a += a32(uint32(value) * uint32(weight))
}

func (a a32) done() uint8 {
	return uint8(a >> 16)
}

type linearWeights struct {
	x0, x1, y0, y1 int
	wx, wy         fixed.Int16_16
}

//go:noinline
func scaleMonoRows(dst []uint8, dstStride, dstW, dstH int, src []uint8, srcStride, srcW, srcH int, srcOff, srcSize image.Point) {
	dx := fixed.FromQuotient(int32(srcSize.X), int32(dstW))
	dy := fixed.FromQuotient(int32(srcSize.Y), int32(dstH))
	srcY := fixed.I(srcOff.Y)
	for y := 0; y < dstH; y++ {
		row := dst[y*dstStride:]
		srcX := fixed.I(srcOff.X)
		for x := 0; x < dstW; x++ {
			w := sampleWeights(srcX, srcY, srcW, srcH)
			r0 := src[w.y0*srcStride:]
			r1 := src[w.y1*srcStride:]
			acc := a32Initial
			wx0, wx1 := fixed.One-w.wx, w.wx
			wy0, wy1 := fixed.One-w.wy, w.wy
			acc.add(r0[w.x0], wy0.Mul(wx0))
			acc.add(r0[w.x1], wy0.Mul(wx1))
			acc.add(r1[w.x0], wy1.Mul(wx0))
			acc.add(r1[w.x1], wy1.Mul(wx1))
			row[x] = acc.done()
			srcX += dx
		}
		srcY += dy
	}
}

//go:noinline
func scaleBGRARows(dst []uint8, dstStride, dstW, dstH int, src []uint8, srcStride, srcW, srcH int, srcOff, srcSize image.Point) {
	dx := fixed.FromQuotient(int32(srcSize.X), int32(dstW))
	dy := fixed.FromQuotient(int32(srcSize.Y), int32(dstH))
	srcY := fixed.I(srcOff.Y)
	for y := 0; y < dstH; y++ {
		row := dst[y*dstStride:]
		srcX := fixed.I(srcOff.X)
		for x := 0; x < dstW; x++ {
			w := sampleWeights(srcX, srcY, srcW, srcH)
			r0 := src[w.y0*srcStride:]
			r1 := src[w.y1*srcStride:]
			var acc [4]a32
			for i := range acc {
				acc[i] = a32Initial
			}
			wx0, wx1 := fixed.One-w.wx, w.wx
			wy0, wy1 := fixed.One-w.wy, w.wy
			accBGRA(&acc, r0[4*w.x0:], wy0.Mul(wx0))
			accBGRA(&acc, r0[4*w.x1:], wy0.Mul(wx1))
			accBGRA(&acc, r1[4*w.x0:], wy1.Mul(wx0))
			accBGRA(&acc, r1[4*w.x1:], wy1.Mul(wx1))
			di := 4 * x
			row[di], row[di+1], row[di+2], row[di+3] = acc[0].done(), acc[1].done(), acc[2].done(), acc[3].done()
			srcX += dx
		}
		srcY += dy
	}
}

func accBGRA(acc *[4]a32, px []uint8, weight fixed.Int16_16) {
	acc[0].add(px[0], weight)
	acc[1].add(px[1], weight)
	acc[2].add(px[2], weight)
	acc[3].add(px[3], weight)
}

func sampleWeights(srcX, srcY fixed.Int16_16, srcW, srcH int) linearWeights {
	x0 := srcX.Floor()
	y0 := srcY.Floor()
	return linearWeights{
		x0: clampToEdge(x0, srcW),
		x1: clampToEdge(x0+1, srcW),
		y0: clampToEdge(y0, srcH),
		y1: clampToEdge(y0+1, srcH),
		wx: srcX.Frac(),
		wy: srcY.Frac(),
	}
}

// ScaleTexture resamples the srcSize sub-rectangle of src at srcOff into a
// new dstSize texture of the same format.
func ScaleTexture(src *Texture, dstSize, srcOff, srcSize image.Point) *Texture {
	out := NewTexture(src.Format, dstSize.X, dstSize.Y)
	if dstSize.X <= 0 || dstSize.Y <= 0 || srcSize.X <= 0 || srcSize.Y <= 0 {
		return out
	}
	if src.Format == Mono {
		scaleMonoRows(out.Pix, out.Stride, out.Width, out.Height,
			src.Pix, src.Stride, src.Width, src.Height, srcOff, srcSize)
	} else {
		scaleBGRARows(out.Pix, out.Stride, out.Width, out.Height,
			src.Pix, src.Stride, src.Width, src.Height, srcOff, srcSize)
	}
	return out
}
