// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"github.com/chewxy/math32"
)

// GaussianSigmaToBoxRadius converts a Gaussian standard deviation to the box
// blur radius that approximates it over three passes, per the CSS filter
// effects spec. Divided by two because it is a radius, not the whole extent.
func GaussianSigmaToBoxRadius(sigma float32) int {
	r := math32.Sqrt(2*math32.Pi) * 0.375 * sigma
	return int(math32.Round(r))
}

// A Blurer runs a triple box blur over a float32 coverage buffer. The same
// Blurer is reused across glyphs to keep its two buffers warm.
type Blurer struct {
	front, back []float32
	width       int
	height      int
	radius      int
	recipExtent float32
}

// Padding returns the extra pixels added on each side of the source for the
// current radius.
func (b *Blurer) Padding() int {
	return 2 * b.radius
}

// Width returns the padded buffer width.
func (b *Blurer) Width() int { return b.width }

// Height returns the padded buffer height.
func (b *Blurer) Height() int { return b.height }

// Front returns the buffer holding the current coverage values. The caller
// copies the source image in at offset (Padding, Padding) before blurring.
func (b *Blurer) Front() []float32 { return b.front }

// Prepare sizes the buffers for a w×h source blurred with the box radius
// for sigma, and zeroes the front buffer.
func (b *Blurer) Prepare(w, h int, sigma float32) {
	b.radius = GaussianSigmaToBoxRadius(sigma)
	b.recipExtent = 1 / float32(2*b.radius+1)
	b.width = w + 2*b.Padding()
	b.height = h + 2*b.Padding()
	size := b.width * b.height
	if cap(b.front) < size {
		b.front = make([]float32, size)
		b.back = make([]float32, size)
	} else {
		b.front = b.front[:size]
		b.back = b.back[:size]
		clear(b.front)
	}
}

// run box-blurs one line of length n with the sliding-window sum. The
// buffer is treated as zero outside the line, so the window is primed
// with the leading radius worth of samples and shrinks at both ends.
func (b *Blurer) run(front, back []float32, stride, n int) {
	r := b.radius
	sum := float32(0)
	for x := 0; x < r && x < n; x++ {
		sum += front[x*stride]
	}
	for x := 0; x < n; x++ {
		if x+r < n {
			sum += front[(x+r)*stride]
		}
		back[x*stride] = sum * b.recipExtent
		if x >= r {
			sum -= front[(x-r)*stride]
		}
	}
}

// HorizontalPass box-blurs every row once.
func (b *Blurer) HorizontalPass() {
	for y := 0; y < b.height; y++ {
		b.run(b.front[y*b.width:], b.back[y*b.width:], 1, b.width)
	}
	b.front, b.back = b.back, b.front
}

// VerticalPass box-blurs every column once.
func (b *Blurer) VerticalPass() {
	for x := 0; x < b.width; x++ {
		b.run(b.front[x:], b.back[x:], b.width, b.height)
	}
	b.front, b.back = b.back, b.front
}

// BlurTexture blurs the coverage of src with a Gaussian of standard
// deviation sigma and returns the result as a mono texture together with
// the offset of the source's origin inside it (negative padding on both
// axes). A sigma that rounds to radius zero returns src unchanged when it
// is already mono.
func (b *Blurer) BlurTexture(src *Texture, sigma float32) (*Texture, int) {
	b.Prepare(src.Width, src.Height, sigma)
	if b.radius == 0 && src.Format == Mono {
		return src, 0
	}
	pad := b.Padding()
	copyToFloat(b.front, b.width, pad, pad, src)
	for i := 0; i < 3; i++ {
		b.HorizontalPass()
	}
	for i := 0; i < 3; i++ {
		b.VerticalPass()
	}
	out := NewTexture(Mono, b.width, b.height)
	copyFloatToMonoRows(out.Pix, out.Stride, b.front, b.width, b.width, b.height)
	return out, pad
}
