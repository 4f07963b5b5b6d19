// SPDX-License-Identifier: Unlicense OR MIT

// Package layout builds fragment trees from subtitle box trees: an inline
// formatting context with line breaking, bidi reordering, ruby pairing and
// decoration propagation, stacked by a block formatting context.
//
// The layout space is device pixels in 26.6 fixed point. X is the inline
// axis, Y the block axis, growing down.
package layout

import (
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/colors"
	"overtide.org/scene"
	"overtide.org/style"
	"overtide.org/text"
)

// FragmentBox is the border box of a fragment.
type FragmentBox struct {
	Size xfixed.Point26_6
}

// BlockFragment is the laid-out form of a block container. Exactly one of
// Inline and Children is set.
type BlockFragment struct {
	Box      FragmentBox
	Style    *style.Computed
	Inline   *InlineFragment
	Children []ChildBlock
	// InlineOffset positions Inline within the fragment (alignment and
	// padding).
	InlineOffset xfixed.Point26_6
}

// ChildBlock is a positioned child of a block fragment.
type ChildBlock struct {
	Offset   xfixed.Point26_6
	Fragment *BlockFragment
}

// InlineFragment is the result of one inline formatting context.
type InlineFragment struct {
	Box   FragmentBox
	Lines []*LineBox
}

// A LineBox is one horizontal strip of inline items sharing a baseline.
type LineBox struct {
	// Offset is relative to the inline fragment.
	Offset xfixed.Point26_6
	Size   xfixed.Point26_6
	// Baseline is the shared baseline's distance from the line top.
	Baseline xfixed.Int26_6
	Items    []Item
}

// Item is one positioned unit inside a line box.
type Item interface {
	isLineItem()
}

// TextItem is a shaped run placed on a line.
type TextItem struct {
	// Offset.X is the item's left edge relative to the line box;
	// Offset.Y is the item's own baseline relative to the line top.
	// For ruby annotations the baseline differs from the line baseline.
	Offset xfixed.Point26_6
	Width  xfixed.Int26_6
	Glyphs *text.GlyphString
	Style  *style.Computed
	// Decorations are the propagated decorations active on this item,
	// with positions resolved against its font.
	Decorations []ActiveDecoration
	// PadLeft and PadRight extend the item's background beyond the
	// glyphs without moving them.
	PadLeft, PadRight xfixed.Int26_6
}

// DrawingItem is an atomic inline vector drawing.
type DrawingItem struct {
	// Offset.X is the left edge; Offset.Y the top, relative to the line.
	Offset  xfixed.Point26_6
	Size    xfixed.Point26_6
	Drawing scene.Drawing
}

func (*TextItem) isLineItem()    {}
func (*DrawingItem) isLineItem() {}

// DecorationKind is a propagating text-decoration line.
type DecorationKind uint8

const (
	Underline DecorationKind = iota
	LineThrough
)

// ActiveDecoration is a decoration applying to an item, positioned
// relative to the item's baseline. Decorations sharing an ID were declared
// by the same element and draw as one segment per line.
type ActiveDecoration struct {
	ID    int
	Kind  DecorationKind
	Color colors.BGRA
	// TopOffset is from the baseline down (underline) or up (negative,
	// line-through) to the top of the stroke.
	TopOffset xfixed.Int26_6
	Thickness xfixed.Int26_6
}
