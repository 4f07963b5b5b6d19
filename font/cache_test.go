// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	xfixed "golang.org/x/image/math/fixed"
)

func openTestFont(t *testing.T, db *DB) *Font {
	t.Helper()
	info, err := DescribeData(goregular.TTF, 0)
	require.NoError(t, err)
	db.AddMemoryFont(info)
	face, err := db.MatchFaceForFamily(info.Family, StyleRegular)
	require.NoError(t, err)
	require.NotNil(t, face)
	fnt, err := face.WithSize(xfixed.I(16), 72)
	require.NoError(t, err)
	return fnt
}

func TestGlyphRenders(t *testing.T) {
	db := NewDB(slog.Default(), nil)
	fnt := openTestFont(t, db)
	gid, ok := fnt.Face().Raw().NominalGlyph('A')
	require.True(t, ok)

	tex, origin, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, tex.Width, 0)
	assert.Greater(t, tex.Height, 0)
	// The cap sits above the baseline.
	assert.Less(t, origin.Y, 0)

	var nonzero int
	for _, v := range tex.Pix {
		if v != 0 {
			nonzero++
		}
	}
	assert.Greater(t, nonzero, 0)
}

func TestGlyphCacheHit(t *testing.T) {
	db := NewDB(slog.Default(), nil)
	fnt := openTestFont(t, db)
	gid, _ := fnt.Face().Raw().NominalGlyph('A')

	a, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	b, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	assert.Same(t, a, b, "second lookup must come from the cache")

	// A different subpixel bin is a different entry.
	c, _, err := fnt.Glyph(gid, 32, 0, 0)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestGlyphCacheEviction(t *testing.T) {
	db := NewDB(slog.Default(), nil)
	fnt := openTestFont(t, db)
	gid, _ := fnt.Face().Raw().NominalGlyph('A')

	a, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)

	// Age the entry past the retention window; the next probe sweeps it.
	for i := 0; i < retainGenerations+2; i++ {
		db.AdvanceCacheGeneration()
	}
	b, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "stale generations must be evicted")
}

func TestGlyphCacheRetention(t *testing.T) {
	db := NewDB(slog.Default(), nil)
	fnt := openTestFont(t, db)
	gid, _ := fnt.Face().Raw().NominalGlyph('A')

	a, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	db.AdvanceCacheGeneration()
	b, _, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	assert.Same(t, a, b, "entries inside the window survive")
}

func TestBlurredGlyphIsMono(t *testing.T) {
	db := NewDB(slog.Default(), nil)
	fnt := openTestFont(t, db)
	gid, _ := fnt.Face().Raw().NominalGlyph('A')

	plain, plainOrigin, err := fnt.Glyph(gid, 0, 0, 0)
	require.NoError(t, err)
	blurred, blurOrigin, err := fnt.Glyph(gid, 0, 0, 3)
	require.NoError(t, err)

	assert.Greater(t, blurred.Width, plain.Width, "blur pads the bitmap")
	assert.Less(t, blurOrigin.X, plainOrigin.X, "origin moves out by the padding")
}

func TestSubpixelBinQuantization(t *testing.T) {
	assert.Equal(t, uint8(0), SubpixelBin(0))
	assert.Equal(t, uint8(0), SubpixelBin(15))
	assert.Equal(t, uint8(1), SubpixelBin(16))
	assert.Equal(t, uint8(3), SubpixelBin(63))
	// Only the fractional part matters.
	assert.Equal(t, SubpixelBin(xfixed.I(5)+20), SubpixelBin(20))
}
