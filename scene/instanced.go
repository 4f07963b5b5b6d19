// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"image"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/raster"
)

// An OutputImage is one deduplicated image of an instanced frame: either a
// shared texture with its tint, or a solid rectangle. A rectangle image's
// geometry is stored relative to the instance destination.
type OutputImage struct {
	Size  image.Point
	Piece OutputPiece
}

// InstanceParams positions one replay of an image. SrcOff and SrcSize
// select the visible sub-rectangle when the instance is partially clipped.
type InstanceParams struct {
	DstPos  image.Point
	DstSize image.Point
	SrcOff  image.Point
	SrcSize image.Point
}

// An InstanceBuilder receives the instanced output stream. OnImage is
// called once per distinct image, in first-occurrence order; OnInstance
// once per draw, in paint-op order.
type InstanceBuilder interface {
	OnImage(img OutputImage) (handle int)
	OnInstance(handle int, params InstanceParams)
}

// imageKey identifies shareable image content: the backing texture with
// its tint and filter. Rectangle pieces share only with rectangles of the
// same origin-relative geometry and color.
type imageKey struct {
	tex          *raster.Texture
	color        [4]uint8
	extractAlpha bool
	isRect       bool
	rect         xfixed.Rectangle26_6
	w, h         int
}

func pieceImageKey(p *OutputPiece) imageKey {
	return imageKey{
		tex:          p.Tex,
		color:        [4]uint8{p.Color.B, p.Color.G, p.Color.R, p.Color.A},
		extractAlpha: p.ExtractAlpha,
		isRect:       p.IsRect(),
		rect:         p.Rect,
		w:            p.Size.X,
		h:            p.Size.Y,
	}
}

// PiecesToInstancedImages converts pieces into a deduplicated image list
// plus instances, clipped to clip. Pieces entirely outside clip are
// discarded; partially visible instances carry the visible source
// sub-rectangle. Emission follows paint-op order, images deduplicate by
// first occurrence.
func PiecesToInstancedImages(b InstanceBuilder, pieces []OutputPiece, clip image.Rectangle) {
	handles := make(map[imageKey]int)
	for i := range pieces {
		p := &pieces[i]
		bounds := p.Bounds()
		vis := bounds.Intersect(clip)
		if vis.Empty() {
			continue
		}
		if p.IsRect() {
			clipped := *p
			clipped.Pos = vis.Min
			clipped.Size = vis.Size()
			// The image stores the rectangle relative to the instance
			// origin, so equal-geometry rects at different positions share.
			clipped.Rect = offsetRect26_6(clipRect26_6(p.Rect, clip),
				image.Pt(-vis.Min.X, -vis.Min.Y))
			key := pieceImageKey(&clipped)
			handle, ok := handles[key]
			if !ok {
				handle = b.OnImage(OutputImage{Size: clipped.Size, Piece: clipped})
				handles[key] = handle
			}
			b.OnInstance(handle, InstanceParams{
				DstPos:  vis.Min,
				DstSize: vis.Size(),
				SrcSize: vis.Size(),
			})
			continue
		}
		key := pieceImageKey(p)
		handle, ok := handles[key]
		if !ok {
			handle = b.OnImage(OutputImage{Size: p.Size, Piece: *p})
			handles[key] = handle
		}
		b.OnInstance(handle, InstanceParams{
			DstPos:  vis.Min,
			DstSize: vis.Size(),
			SrcOff:  vis.Min.Sub(bounds.Min),
			SrcSize: vis.Size(),
		})
	}
}
