// SPDX-License-Identifier: Unlicense OR MIT

// Package scene is the flat intermediate representation between layout and
// the rasterizer: paint ops produced by the render walk, the pieces they
// expand into, and the instanced-output stream replayed by GPU-style
// compositors.
package scene

import (
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/colors"
	"overtide.org/fixed"
	"overtide.org/text"
)

// Drawing is a vector drawing attached to a subtitle: a list of stroked
// polylines.
type Drawing struct {
	Nodes []StrokedPolyline
}

// StrokedPolyline strokes an open polyline with round caps and joins.
type StrokedPolyline struct {
	Points []fixed.Point16_16
	Width  fixed.Int16_16
	Color  colors.BGRA
}

// A PaintOp is one entry of the flat draw list. Ops are emitted in z-order:
// backgrounds first, then per fragment its shadows in declaration order,
// then foreground text, then decorations.
type PaintOp interface {
	isPaintOp()
}

// TextOp draws a shaped glyph string at a pen position.
type TextOp struct {
	// Pos is the baseline pen position of the first glyph.
	Pos    xfixed.Point26_6
	Glyphs *text.GlyphString
	// Shadow selects the shadow variant: glyphs are flattened to
	// coverage, blurred by Sigma and tinted.
	Shadow bool
	// Sigma is the Gaussian standard deviation in pixels, used when
	// Shadow is set.
	Sigma xfixed.Int26_6
	Color colors.BGRA
}

// RectFillOp fills an axis-aligned rectangle.
type RectFillOp struct {
	Rect  xfixed.Rectangle26_6
	Color colors.BGRA
}

// DrawingOp draws a vector drawing with its own colors.
type DrawingOp struct {
	Pos     xfixed.Point26_6
	Drawing Drawing
}

func (TextOp) isPaintOp()     {}
func (RectFillOp) isPaintOp() {}
func (DrawingOp) isPaintOp()  {}

// Builder appends paint ops during the render walk.
type Builder struct {
	ops []PaintOp
}

// PushText appends a text op.
func (b *Builder) PushText(op TextOp) { b.ops = append(b.ops, op) }

// PushRect appends a rectangle fill.
func (b *Builder) PushRect(rect xfixed.Rectangle26_6, color colors.BGRA) {
	b.ops = append(b.ops, RectFillOp{Rect: rect, Color: color})
}

// PushDrawing appends a vector drawing.
func (b *Builder) PushDrawing(pos xfixed.Point26_6, d Drawing) {
	b.ops = append(b.ops, DrawingOp{Pos: pos, Drawing: d})
}

// Ops returns the accumulated list in emission order.
func (b *Builder) Ops() []PaintOp { return b.ops }

// Reset empties the builder for reuse.
func (b *Builder) Reset() { b.ops = b.ops[:0] }
