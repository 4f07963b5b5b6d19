// SPDX-License-Identifier: Unlicense OR MIT

package overtide

import (
	"errors"
	"fmt"
	"image"
	"slices"

	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/fixed"
	"overtide.org/font"
	"overtide.org/layout"
	"overtide.org/raster"
	"overtide.org/scene"
	"overtide.org/subtitle"
	"overtide.org/text"
)

// ErrInvalidArgument reports malformed caller input such as a zero-sized
// framebuffer description.
var ErrInvalidArgument = errors.New("overtide: invalid argument")

// A Renderer owns the caches and dirty tracking of one subtitle stream.
// It is not safe for concurrent use; renderers on different goroutines
// must not share a font database.
type Renderer struct {
	lib    *Library
	fonts  *font.DB
	shaper text.Shaper

	subs    *subtitle.Document
	subsGen uint64

	builder scene.Builder
	pieces  []scene.OutputPiece

	// last frame's inputs, for did-change detection.
	haveLast    bool
	lastCtx     SubtitleContext
	lastT       uint32
	lastSubsGen uint64
	lastVisible []int

	unchangedUntil    uint32
	hasUnchangedUntil bool
}

// NewRenderer builds a renderer backed by the system font index.
func NewRenderer(lib *Library) (*Renderer, error) {
	provider, err := font.NewScanProvider(lib.log)
	if err != nil {
		return nil, err
	}
	return NewRendererWithProvider(lib, provider), nil
}

// NewRendererWithProvider builds a renderer with a custom font provider.
// Pass nil to use only fonts added through AddMemoryFont.
func NewRendererWithProvider(lib *Library, provider font.Provider) *Renderer {
	return &Renderer{
		lib:   lib,
		fonts: font.NewDB(lib.log, provider),
	}
}

// Fonts exposes the renderer's font database, e.g. to register in-memory
// faces.
func (r *Renderer) Fonts() *font.DB { return r.fonts }

// SetSubtitles replaces the rendered document. Passing nil clears it.
func (r *Renderer) SetSubtitles(subs *subtitle.Document) {
	r.subs = subs
	r.subsGen++
}

// DidChange reports whether rendering at (ctx, t) would produce output
// different from the last rendered frame.
func (r *Renderer) DidChange(ctx *SubtitleContext, t uint32) bool {
	if !r.haveLast {
		return true
	}
	if *ctx != r.lastCtx || r.subsGen != r.lastSubsGen {
		return true
	}
	if r.subs == nil {
		return false
	}
	return !slices.Equal(r.subs.VisibleAt(t), r.lastVisible)
}

// UnchangedUntil returns a lower bound on the next timestamp (in
// milliseconds) at which output may change, when one is known.
func (r *Renderer) UnchangedUntil() (uint32, bool) {
	return r.unchangedUntil, r.hasUnchangedUntil
}

// Render rasterizes the frame at t directly into a premultiplied BGRA
// framebuffer with the given stride in pixels. On failure the caller's
// previous frame is preserved: nothing is written.
func (r *Renderer) Render(ctx *SubtitleContext, t uint32, pix []uint8, width, height, stride int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d framebuffer", ErrInvalidArgument, width, height)
	}
	target, err := raster.NewRenderTarget(pix, width, height, stride)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := r.prepare(ctx, t); err != nil {
		return err
	}
	target.Clear()
	scene.RenderPieces(&target, r.pieces, target.Bounds())
	return nil
}

// RenderPieces produces the frame at t as an instanced output stream
// clipped to clip: deduplicated images through b.OnImage, instances in
// paint-op order through b.OnInstance.
func (r *Renderer) RenderPieces(ctx *SubtitleContext, t uint32, clip image.Rectangle, b scene.InstanceBuilder) error {
	if clip.Empty() {
		return nil
	}
	if err := r.prepare(ctx, t); err != nil {
		return err
	}
	scene.PiecesToInstancedImages(b, r.pieces, clip)
	return nil
}

// prepare rebuilds layout, paint ops and pieces when (ctx, t) moved since
// the last frame. The previous pieces stay valid until the rebuild
// succeeds.
func (r *Renderer) prepare(ctx *SubtitleContext, t uint32) error {
	if !r.DidChange(ctx, t) {
		r.lastT = t
		// The frame is unchanged but the bound still moves with t.
		if r.subs != nil {
			r.unchangedUntil, r.hasUnchangedUntil = r.subs.NextChangeAfter(t)
		}
		return nil
	}

	visible := []int(nil)
	ops := []scene.PaintOp(nil)
	if r.subs != nil {
		visible = r.subs.VisibleAt(t)
		r.builder.Reset()
		lctx := &layout.Context{
			DPI:    ctx.DPI,
			DB:     r.fonts,
			Shaper: &r.shaper,
			Log:    r.lib.log,
		}
		cons := layout.Constraints{Size: xfixed.Point26_6{
			X: fixed.To26_6(ctx.VideoWidth - ctx.PaddingLeft - ctx.PaddingRight),
			Y: fixed.To26_6(ctx.VideoHeight - ctx.PaddingTop - ctx.PaddingBottom),
		}}
		origin := xfixed.Point26_6{
			X: fixed.To26_6(ctx.PaddingLeft),
			Y: fixed.To26_6(ctx.PaddingTop),
		}
		var yOff xfixed.Int26_6
		for _, idx := range visible {
			ev := &r.subs.Events[idx]
			frag, err := layout.Layout(lctx, layout.Constraints{
				Size: xfixed.Point26_6{X: cons.Size.X, Y: cons.Size.Y - yOff},
			}, ev.Root)
			if err != nil {
				return err
			}
			layout.Paint(&r.builder, lctx, frag, xfixed.Point26_6{X: origin.X, Y: origin.Y + yOff})
			yOff += frag.Box.Size.Y
		}
		ops = r.builder.Ops()
	}

	pieces, err := scene.AppendPieces(nil, ops)
	if err != nil {
		return err
	}
	if r.lib.DebugEnabled("render") {
		r.lib.log.Debug("rebuilt frame",
			"t", t, "events", len(visible), "ops", len(ops), "pieces", len(pieces))
	}

	r.pieces = pieces
	r.haveLast = true
	r.lastCtx = *ctx
	r.lastT = t
	r.lastSubsGen = r.subsGen
	r.lastVisible = visible

	if r.subs != nil {
		next, ok := r.subs.NextChangeAfter(t)
		r.unchangedUntil, r.hasUnchangedUntil = next, ok
	} else {
		r.hasUnchangedUntil = false
	}

	r.fonts.AdvanceCacheGeneration()
	return nil
}
