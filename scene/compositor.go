// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"image"

	"overtide.org/raster"
)

// Compositor replays an instanced stream into a framebuffer, scaling
// instances whose destination differs from their source. It doubles as
// the reference for what GPU-side replay must produce.
type Compositor struct {
	Target *raster.RenderTarget
	images []OutputImage
}

// OnImage implements InstanceBuilder.
func (c *Compositor) OnImage(img OutputImage) int {
	c.images = append(c.images, img)
	return len(c.images) - 1
}

// OnInstance implements InstanceBuilder.
func (c *Compositor) OnInstance(handle int, params InstanceParams) {
	img := &c.images[handle]
	p := img.Piece
	if p.IsRect() {
		// The image's rectangle is origin-relative; place it at the
		// instance destination.
		raster.FillRect(c.Target, offsetRect26_6(p.Rect, params.DstPos), p.Color)
		return
	}
	tex := p.Tex
	sub := image.Rectangle{Min: params.SrcOff, Max: params.SrcOff.Add(params.SrcSize)}
	if sub != tex.Bounds() {
		tex = subTexture(tex, sub)
	}
	if params.DstSize != params.SrcSize {
		tex = raster.ScaleTexture(tex, params.DstSize, image.Point{}, params.SrcSize)
	}
	clipped := p
	clipped.Tex = tex
	blitSub(c.Target, &clipped, params.DstPos, tex.Bounds())
}
