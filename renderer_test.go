// SPDX-License-Identifier: Unlicense OR MIT

package overtide

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"overtide.org/colors"
	"overtide.org/font"
	"overtide.org/raster"
	"overtide.org/scene"
	"overtide.org/style"
	"overtide.org/subtitle"
)

func newTargetForTest(pix []uint8, w, h int) (*raster.RenderTarget, error) {
	target, err := raster.NewRenderTarget(pix, w, h, w)
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func testRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	lib := Init()
	r := NewRendererWithProvider(lib, nil)
	info, err := font.DescribeData(goregular.TTF, 0)
	require.NoError(t, err)
	r.Fonts().AddMemoryFont(info)
	return r, info.Family
}

func testDoc(family, textContent string, start, end uint32) *subtitle.Document {
	st := style.Default()
	st.FontFamilies = []string{family}
	return &subtitle.Document{Events: []subtitle.Event{{
		Start: start,
		End:   end,
		Root: &subtitle.BlockContainer{
			Style: st,
			Inline: &subtitle.InlineContent{Root: subtitle.Span{
				Style:    st,
				Children: []subtitle.Item{subtitle.Text{Text: textContent}},
			}},
		},
	}}}
}

func testCtx() SubtitleContext {
	return SubtitleContext{DPI: 72, VideoWidth: 320, VideoHeight: 240}
}

func TestRenderProducesPixels(t *testing.T) {
	r, family := testRenderer(t)
	r.SetSubtitles(testDoc(family, "hello", 0, 5000))
	ctx := testCtx()
	pix := make([]uint8, 320*240*4)
	require.NoError(t, r.Render(&ctx, 1000, pix, 320, 240, 320))

	nonzero := 0
	for _, v := range pix {
		if v != 0 {
			nonzero++
		}
	}
	assert.Greater(t, nonzero, 0, "text must produce visible pixels")
}

func TestRenderOutsideEventIsBlank(t *testing.T) {
	r, family := testRenderer(t)
	r.SetSubtitles(testDoc(family, "hello", 1000, 2000))
	ctx := testCtx()
	pix := make([]uint8, 320*240*4)
	require.NoError(t, r.Render(&ctx, 5000, pix, 320, 240, 320))
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d, want blank frame", i, v)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	r, _ := testRenderer(t)
	ctx := testCtx()
	assert.ErrorIs(t, r.Render(&ctx, 0, nil, 0, 240, 0), ErrInvalidArgument)
	assert.ErrorIs(t, r.Render(&ctx, 0, make([]uint8, 16), 320, 240, 320), ErrInvalidArgument)
}

func TestDidChangeTracksEventSet(t *testing.T) {
	r, family := testRenderer(t)
	r.SetSubtitles(testDoc(family, "hello", 1000, 2000))
	ctx := testCtx()
	pix := make([]uint8, 320*240*4)

	assert.True(t, r.DidChange(&ctx, 1500), "first frame always changes")
	require.NoError(t, r.Render(&ctx, 1500, pix, 320, 240, 320))
	assert.False(t, r.DidChange(&ctx, 1600), "same event set, no change")
	assert.True(t, r.DidChange(&ctx, 2500), "event ended")

	ctx2 := ctx
	ctx2.VideoWidth = 640
	assert.True(t, r.DidChange(&ctx2, 1600), "context change invalidates")

	r.SetSubtitles(nil)
	assert.True(t, r.DidChange(&ctx, 1600), "subtitle change invalidates")
}

func TestUnchangedUntil(t *testing.T) {
	r, family := testRenderer(t)
	doc := testDoc(family, "hello", 1000, 2000)
	doc.Events = append(doc.Events, testDoc(family, "next", 3000, 4000).Events...)
	r.SetSubtitles(doc)
	ctx := testCtx()
	pix := make([]uint8, 320*240*4)

	require.NoError(t, r.Render(&ctx, 0, pix, 320, 240, 320))
	next, ok := r.UnchangedUntil()
	require.True(t, ok)
	assert.Equal(t, uint32(1000), next)

	require.NoError(t, r.Render(&ctx, 1500, pix, 320, 240, 320))
	next, ok = r.UnchangedUntil()
	require.True(t, ok)
	assert.Equal(t, uint32(2000), next)

	require.NoError(t, r.Render(&ctx, 4500, pix, 320, 240, 320))
	_, ok = r.UnchangedUntil()
	assert.False(t, ok, "no boundary after the last event")
}

func TestRenderPiecesMatchesDirect(t *testing.T) {
	r, family := testRenderer(t)
	st := style.Default()
	st.FontFamilies = []string{family}
	st.Background = colors.BGRA{R: 40, G: 40, B: 40, A: 255}
	doc := testDoc(family, "compare me", 0, 1000)
	doc.Events[0].Root.Style = st
	r.SetSubtitles(doc)
	ctx := testCtx()

	direct := make([]uint8, 320*240*4)
	require.NoError(t, r.Render(&ctx, 500, direct, 320, 240, 320))

	replayPix := make([]uint8, 320*240*4)
	target, err := newTargetForTest(replayPix, 320, 240)
	require.NoError(t, err)
	comp := &scene.Compositor{Target: target}
	require.NoError(t, r.RenderPieces(&ctx, 500, image.Rect(0, 0, 320, 240), comp))

	assert.Equal(t, direct, replayPix, "instanced replay must cover the same pixels as direct rasterization")
}

func TestRenderUnchangedFrameIsStable(t *testing.T) {
	r, family := testRenderer(t)
	r.SetSubtitles(testDoc(family, "stable", 0, 10000))
	ctx := testCtx()
	a := make([]uint8, 320*240*4)
	b := make([]uint8, 320*240*4)
	require.NoError(t, r.Render(&ctx, 100, a, 320, 240, 320))
	require.NoError(t, r.Render(&ctx, 200, b, 320, 240, 320))
	assert.Equal(t, a, b)
}
