// SPDX-License-Identifier: Unlicense OR MIT

// Package raster is the software rasterizer: scanline coverage polygon
// filling, Gaussian blur, bilinear scaling and the blit routines that
// composite glyph bitmaps into premultiplied BGRA framebuffers.
package raster

import "image"

// PixelFormat describes the layout of a Texture's pixel data.
type PixelFormat uint8

const (
	// Mono is one alpha byte per pixel.
	Mono PixelFormat = iota
	// BGRA is four bytes per pixel, premultiplied alpha. Textures in this
	// format are premultiplied at construction and never store straight
	// alpha.
	BGRA
)

// BytesPerPixel returns the pixel stride of the format.
func (f PixelFormat) BytesPerPixel() int {
	if f == BGRA {
		return 4
	}
	return 1
}

// A Texture is an immutable pixel buffer shared by pointer. Its byte length
// is Stride×Height; bytes of a row past Width×bpp are padding and never
// sampled.
type Texture struct {
	Format PixelFormat
	Width  int
	Height int
	// Stride is in bytes.
	Stride int
	Pix    []uint8
}

// NewTexture allocates a zeroed texture with a tightly packed stride.
func NewTexture(format PixelFormat, w, h int) *Texture {
	stride := w * format.BytesPerPixel()
	return &Texture{
		Format: format,
		Width:  w,
		Height: h,
		Stride: stride,
		Pix:    make([]uint8, stride*h),
	}
}

// Size returns the texture dimensions as a point.
func (t *Texture) Size() image.Point {
	return image.Pt(t.Width, t.Height)
}

// Bounds returns the texture rectangle at the origin.
func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// Row returns the pixel bytes of row y, without padding.
func (t *Texture) Row(y int) []uint8 {
	return t.Pix[y*t.Stride : y*t.Stride+t.Width*t.Format.BytesPerPixel()]
}
