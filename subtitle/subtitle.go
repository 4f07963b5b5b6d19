// SPDX-License-Identifier: Unlicense OR MIT

// Package subtitle defines the styled box tree that format parsers hand to
// the renderer: a document of timed events, each holding a block container
// of inline content with computed style attached.
package subtitle

import (
	"golang.org/x/image/math/fixed"

	"overtide.org/scene"
	"overtide.org/style"
)

// Document is a parsed subtitle file, ready for rendering.
type Document struct {
	Events []Event
}

// Event is one timed subtitle: its root box is laid out and painted for
// every t in [Start, End).
type Event struct {
	// Start and End are in milliseconds of media time.
	Start, End uint32
	Root       *BlockContainer
}

// BlockContainer stacks block children or holds one run of inline content.
// Exactly one of Blocks and Inline is set.
type BlockContainer struct {
	Style  *style.Computed
	Blocks []*BlockContainer
	Inline *InlineContent
}

// InlineContent is the root span of one inline formatting context.
type InlineContent struct {
	Root Span
}

// Span is a styled inline box with child items.
type Span struct {
	Style    *style.Computed
	Children []Item
}

// Item is one node of inline content: a Text run, a nested *Span, a *Ruby
// pair or an atomic *Drawing.
type Item interface {
	isInlineItem()
}

// Text is a run of unstyled text inside its parent span.
type Text struct {
	Text string
}

// Ruby pairs base text with an annotation shaped at its own font size.
type Ruby struct {
	Base       *Span
	Annotation *Span
}

// Drawing is an atomic inline box holding vector drawing commands.
type Drawing struct {
	Drawing scene.Drawing
	// Size is the box the drawing occupies in the line, in CSS pixels.
	Size fixed.Point26_6
}

func (Text) isInlineItem()     {}
func (*Span) isInlineItem()    {}
func (*Ruby) isInlineItem()    {}
func (*Drawing) isInlineItem() {}

// VisibleAt returns the indices of events active at time t, in document
// order.
func (d *Document) VisibleAt(t uint32) []int {
	var idx []int
	for i := range d.Events {
		ev := &d.Events[i]
		if ev.Start <= t && t < ev.End {
			idx = append(idx, i)
		}
	}
	return idx
}

// NextChangeAfter returns the earliest event boundary strictly after t, or
// false when no boundary remains.
func (d *Document) NextChangeAfter(t uint32) (uint32, bool) {
	next := ^uint32(0)
	found := false
	for i := range d.Events {
		ev := &d.Events[i]
		if ev.Start > t && ev.Start < next {
			next, found = ev.Start, true
		}
		if ev.End > t && ev.End < next {
			next, found = ev.End, true
		}
	}
	return next, found
}
