// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/fixed"
)

// stubProvider serves a fixed candidate list. Every face is backed by the
// same real font bytes; only the declared attributes differ, which is all
// the matching algorithm looks at.
type stubProvider struct {
	faces []FaceInfo
}

func (s *stubProvider) QueryFamily(family string) ([]FaceInfo, error) {
	var out []FaceInfo
	for _, f := range s.faces {
		if f.Family == family {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubProvider) QueryFallback(req FallbackRequest) ([]FaceInfo, error) {
	return s.faces, nil
}

func testDB(t *testing.T, faces []FaceInfo) *DB {
	t.Helper()
	return NewDB(slog.Default(), &stubProvider{faces: faces})
}

func weighted(family string, weight int, italic bool, id uint64) FaceInfo {
	return FaceInfo{
		Family: family,
		Weight: Fixed(fixed.I(weight)),
		Italic: italic,
		Source: Source{Data: goregular.TTF, dataID: id},
	}
}

func matchWeight(t *testing.T, db *DB, want int, style Style) {
	t.Helper()
	face, err := db.MatchFaceForFamily("Test", style)
	require.NoError(t, err)
	require.NotNil(t, face)
	assert.Equal(t, fixed.I(want), face.Info().Weight.Start, "requested %v", style.Weight.Float32())
}

func TestWeightMatchingExact(t *testing.T) {
	db := testDB(t, []FaceInfo{
		weighted("Test", 300, false, 1),
		weighted("Test", 400, false, 2),
		weighted("Test", 700, false, 3),
	})
	matchWeight(t, db, 400, Style{Weight: fixed.I(400)})
	matchWeight(t, db, 700, Style{Weight: fixed.I(700)})
}

func TestWeightMatchingBetween400And500(t *testing.T) {
	// Desired 450: prefer >= desired up to 500, then below descending,
	// then above 500.
	db := testDB(t, []FaceInfo{
		weighted("Test", 300, false, 1),
		weighted("Test", 480, false, 2),
		weighted("Test", 700, false, 3),
	})
	matchWeight(t, db, 480, Style{Weight: fixed.I(450)})

	db = testDB(t, []FaceInfo{
		weighted("Test", 300, false, 1),
		weighted("Test", 700, false, 2),
	})
	matchWeight(t, db, 300, Style{Weight: fixed.I(450)})

	db = testDB(t, []FaceInfo{
		weighted("Test", 600, false, 1),
		weighted("Test", 700, false, 2),
	})
	matchWeight(t, db, 600, Style{Weight: fixed.I(450)})
}

func TestWeightMatchingLight(t *testing.T) {
	// Desired < 400: lighter weights first, descending.
	db := testDB(t, []FaceInfo{
		weighted("Test", 100, false, 1),
		weighted("Test", 250, false, 2),
		weighted("Test", 500, false, 3),
	})
	matchWeight(t, db, 250, Style{Weight: fixed.I(300)})

	db = testDB(t, []FaceInfo{
		weighted("Test", 500, false, 1),
		weighted("Test", 800, false, 2),
	})
	matchWeight(t, db, 500, Style{Weight: fixed.I(300)})
}

func TestWeightMatchingBold(t *testing.T) {
	// Desired > 500: heavier weights first, ascending.
	db := testDB(t, []FaceInfo{
		weighted("Test", 400, false, 1),
		weighted("Test", 800, false, 2),
		weighted("Test", 900, false, 3),
	})
	matchWeight(t, db, 800, Style{Weight: fixed.I(700)})

	db = testDB(t, []FaceInfo{
		weighted("Test", 400, false, 1),
		weighted("Test", 500, false, 2),
	})
	matchWeight(t, db, 500, Style{Weight: fixed.I(700)})
}

func TestItalicPreference(t *testing.T) {
	db := testDB(t, []FaceInfo{
		weighted("Test", 400, false, 1),
		weighted("Test", 400, true, 2),
	})
	face, err := db.MatchFaceForFamily("Test", Style{Weight: fixed.I(400), Italic: true})
	require.NoError(t, err)
	assert.True(t, face.Info().Italic)

	face, err = db.MatchFaceForFamily("Test", Style{Weight: fixed.I(400)})
	require.NoError(t, err)
	assert.False(t, face.Info().Italic)

	// Upright falls back to italic when it is the only choice.
	db = testDB(t, []FaceInfo{weighted("Test", 400, true, 1)})
	face, err = db.MatchFaceForFamily("Test", Style{Weight: fixed.I(400)})
	require.NoError(t, err)
	require.NotNil(t, face)
	assert.True(t, face.Info().Italic)
}

func TestVariableRangeCountsAsExact(t *testing.T) {
	db := testDB(t, []FaceInfo{
		{
			Family: "Test",
			Weight: Range(fixed.I(100), fixed.I(900)),
			Source: Source{Data: goregular.TTF, dataID: 1},
		},
	})
	face, err := db.MatchFaceForFamily("Test", Style{Weight: fixed.I(567)})
	require.NoError(t, err)
	require.NotNil(t, face)
}

func TestQueryCaching(t *testing.T) {
	provider := &stubProvider{faces: []FaceInfo{weighted("Test", 400, false, 1)}}
	db := NewDB(slog.Default(), provider)
	a, err := db.QueryByName("Test")
	require.NoError(t, err)
	provider.faces = nil
	b, err := db.QueryByName("Test")
	require.NoError(t, err)
	assert.Equal(t, a, b, "second query must come from the cache")
}

func TestFallbackPrefersCustomFamilies(t *testing.T) {
	db := testDB(t, nil)
	info, err := DescribeData(goregular.TTF, 0)
	require.NoError(t, err)
	db.AddMemoryFont(info)
	face, err := db.SelectFallback(FallbackRequest{
		Families:  []string{info.Family},
		Style:     StyleRegular,
		Codepoint: 'a',
	})
	require.NoError(t, err)
	require.NotNil(t, face)
	assert.Equal(t, info.Family, face.Info().Family)
}

func TestNotFound(t *testing.T) {
	db := testDB(t, nil)
	_, err := db.SelectFallback(FallbackRequest{Codepoint: 'a'})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTofuCoversEverything(t *testing.T) {
	db := testDB(t, nil)
	tofu := db.Tofu()
	assert.True(t, tofu.Covers('a'))
	assert.True(t, tofu.Covers('字'))
	fnt, err := tofu.WithSize(xfixed.I(16), 72)
	require.NoError(t, err)
	m := fnt.Metrics()
	assert.Greater(t, int(m.Ascent), 0)
	tex, origin, err := fnt.Glyph(0, 0, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, tex.Width, 0)
	assert.Less(t, origin.Y, 0)
}
