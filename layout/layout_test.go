// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/colors"
	"overtide.org/font"
	"overtide.org/scene"
	"overtide.org/style"
	"overtide.org/subtitle"
	"overtide.org/text"
)

func testContext(t *testing.T) (*Context, string) {
	t.Helper()
	db := font.NewDB(slog.Default(), nil)
	info, err := font.DescribeData(goregular.TTF, 0)
	require.NoError(t, err)
	db.AddMemoryFont(info)
	return &Context{
		DPI:    72,
		DB:     db,
		Shaper: &text.Shaper{},
		Log:    slog.Default(),
	}, info.Family
}

func textStyle(family string) *style.Computed {
	s := style.Default()
	s.FontFamilies = []string{family}
	return s
}

func inlineText(st *style.Computed, s string) *subtitle.InlineContent {
	return &subtitle.InlineContent{Root: subtitle.Span{
		Style:    st,
		Children: []subtitle.Item{subtitle.Text{Text: s}},
	}}
}

func cons(w, h int) Constraints {
	return Constraints{Size: xfixed.Point26_6{X: xfixed.I(w), Y: xfixed.I(h)}}
}

func TestSingleLine(t *testing.T) {
	ctx, family := testContext(t)
	frag, err := LayoutInline(ctx, inlineText(textStyle(family), "hello"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	require.Len(t, frag.Lines, 1)
	line := frag.Lines[0]
	require.Len(t, line.Items, 1)
	item := line.Items[0].(*TextItem)
	assert.Greater(t, int(item.Width), 0)
	assert.Equal(t, line.Baseline, item.Offset.Y)
	assert.Greater(t, int(line.Size.Y), 0)
	// The baseline offset lies within the line box and matches the
	// shaped run's ascender.
	assert.Equal(t, item.Glyphs.Ascent, line.Baseline)
	assert.LessOrEqual(t, int(line.Baseline), int(line.Size.Y))
}

func TestWrapping(t *testing.T) {
	ctx, family := testContext(t)
	wide, err := LayoutInline(ctx, inlineText(textStyle(family), "aaa bbb ccc"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	require.Len(t, wide.Lines, 1)
	lineWidth := wide.Lines[0].Size.X

	// Constrain to roughly half: must wrap, and no line may exceed the
	// constraint.
	avail := lineWidth/2 + xfixed.I(1)
	narrow, err := LayoutInline(ctx, inlineText(textStyle(family), "aaa bbb ccc"),
		Constraints{Size: xfixed.Point26_6{X: avail, Y: xfixed.I(1000)}}, style.AlignLeft)
	require.NoError(t, err)
	assert.Greater(t, len(narrow.Lines), 1)
	for _, line := range narrow.Lines {
		assert.LessOrEqual(t, int(line.Size.X), int(avail))
	}
}

func TestNowrapDoesNotWrap(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	st.WhiteSpace = style.WhiteSpaceNowrap
	frag, err := LayoutInline(ctx, inlineText(st, "aaa bbb ccc ddd eee"), cons(20, 1000), style.AlignLeft)
	require.NoError(t, err)
	assert.Len(t, frag.Lines, 1, "nowrap must keep everything on one line")
}

func TestPreservedNewlineForcesBreak(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	st.WhiteSpace = style.WhiteSpacePre
	frag, err := LayoutInline(ctx, inlineText(st, "one\ntwo"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	assert.Len(t, frag.Lines, 2)
}

func TestCollapsedNewlineDoesNot(t *testing.T) {
	ctx, family := testContext(t)
	frag, err := LayoutInline(ctx, inlineText(textStyle(family), "one\ntwo"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	assert.Len(t, frag.Lines, 1)
}

func TestWhitespaceCollapsing(t *testing.T) {
	ctx, family := testContext(t)
	a, err := LayoutInline(ctx, inlineText(textStyle(family), "a     b"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	b, err := LayoutInline(ctx, inlineText(textStyle(family), "a b"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	assert.Equal(t, b.Lines[0].Size.X, a.Lines[0].Size.X)
}

func TestAlignment(t *testing.T) {
	ctx, family := testContext(t)
	for _, align := range []style.TextAlign{style.AlignLeft, style.AlignCenter, style.AlignRight} {
		frag, err := LayoutInline(ctx, inlineText(textStyle(family), "hi"), cons(500, 1000), align)
		require.NoError(t, err)
		line := frag.Lines[0]
		switch align {
		case style.AlignLeft:
			assert.Equal(t, xfixed.Int26_6(0), line.Offset.X)
		case style.AlignCenter:
			assert.Greater(t, int(line.Offset.X), 0)
		case style.AlignRight:
			assert.Equal(t, int(xfixed.I(500)-line.Size.X), int(line.Offset.X))
		}
	}
}

func TestRubyPairGeometry(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	annStyle := st.Clone()
	annStyle.FontSize = xfixed.I(8)

	content := &subtitle.InlineContent{Root: subtitle.Span{
		Style: st,
		Children: []subtitle.Item{
			&subtitle.Ruby{
				Base:       &subtitle.Span{Style: st, Children: []subtitle.Item{subtitle.Text{Text: "base"}}},
				Annotation: &subtitle.Span{Style: annStyle, Children: []subtitle.Item{subtitle.Text{Text: "an"}}},
			},
		},
	}}
	frag, err := LayoutInline(ctx, content, cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	require.Len(t, frag.Lines, 1)
	line := frag.Lines[0]
	require.Len(t, line.Items, 2)
	base := line.Items[0].(*TextItem)
	ann := line.Items[1].(*TextItem)

	// The wider half sets the pair width; the narrower is centered.
	assert.Greater(t, int(base.Width), int(ann.Width))
	center := func(i *TextItem) xfixed.Int26_6 { return i.Offset.X + i.Width/2 }
	assert.InDelta(t, float64(center(base)), float64(center(ann)), 2)

	// Annotation sits above the base: its baseline is the line baseline
	// minus base ascent minus annotation descent.
	wantAnnBaseline := line.Baseline - base.Glyphs.Ascent - ann.Glyphs.Descent
	assert.Equal(t, wantAnnBaseline, ann.Offset.Y)

	// Total line height is base ascent + annotation height + base descent.
	wantHeight := base.Glyphs.Ascent + ann.Glyphs.Ascent + ann.Glyphs.Descent + base.Glyphs.Descent
	assert.Equal(t, wantHeight, line.Size.Y)
}

func paintOps(t *testing.T, ctx *Context, content *subtitle.InlineContent, width int) []scene.PaintOp {
	t.Helper()
	frag, err := LayoutInline(ctx, content, cons(width, 1000), style.AlignLeft)
	require.NoError(t, err)
	var b scene.Builder
	paintLine0 := func() {
		for _, line := range frag.Lines {
			paintLine(&b, ctx, line, line.Offset)
		}
	}
	paintLine0()
	return b.Ops()
}

func TestShadowOrdering(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	st.Shadows = []style.Shadow{
		{Offset: xfixed.Point26_6{X: xfixed.I(1)}, Sigma: xfixed.I(1), Color: colors.Red},
		{Offset: xfixed.Point26_6{X: xfixed.I(2)}, Sigma: xfixed.I(2), Color: colors.Blue},
	}
	ops := paintOps(t, ctx, inlineText(st, "x"), 1000)

	var textOps []scene.TextOp
	for _, op := range ops {
		if t, ok := op.(scene.TextOp); ok {
			textOps = append(textOps, t)
		}
	}
	require.Len(t, textOps, 3)
	assert.True(t, textOps[0].Shadow)
	assert.Equal(t, colors.Red, textOps[0].Color)
	assert.True(t, textOps[1].Shadow)
	assert.Equal(t, colors.Blue, textOps[1].Color)
	assert.False(t, textOps[2].Shadow, "foreground is drawn last")
}

func TestDecorationPropagation(t *testing.T) {
	ctx, family := testContext(t)
	outer := textStyle(family)
	outer.Decoration = style.Decoration{Underline: true, UnderlineColor: colors.Red}
	inner := outer.Clone()
	inner.Decoration = style.Decoration{LineThrough: true, LineThroughColor: colors.Blue}

	content := &subtitle.InlineContent{Root: subtitle.Span{
		Style: outer,
		Children: []subtitle.Item{
			subtitle.Text{Text: "a"},
			&subtitle.Span{Style: inner, Children: []subtitle.Item{subtitle.Text{Text: "b"}}},
		},
	}}
	frag, err := LayoutInline(ctx, content, cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	line := frag.Lines[0]
	require.Len(t, line.Items, 2)
	first := line.Items[0].(*TextItem)
	second := line.Items[1].(*TextItem)

	require.Len(t, first.Decorations, 1)
	assert.Equal(t, Underline, first.Decorations[0].Kind)

	// The inner span carries the propagated underline plus its own
	// line-through.
	require.Len(t, second.Decorations, 2)
	kinds := map[DecorationKind]colors.BGRA{}
	for _, d := range second.Decorations {
		kinds[d.Kind] = d.Color
	}
	assert.Equal(t, colors.Red, kinds[Underline])
	assert.Equal(t, colors.Blue, kinds[LineThrough])

	// Painting emits both decoration rects after the text.
	var b scene.Builder
	paintLine(&b, ctx, line, line.Offset)
	ops := b.Ops()
	var rects []scene.RectFillOp
	lastText := -1
	for i, op := range ops {
		switch op := op.(type) {
		case scene.RectFillOp:
			rects = append(rects, op)
		case scene.TextOp:
			lastText = i
		}
	}
	require.Len(t, rects, 2)
	for i, op := range ops {
		if _, ok := op.(scene.RectFillOp); ok {
			assert.Greater(t, i, lastText, "decorations draw after text")
		}
	}
	// The underline spans both items: from the first item's start to the
	// second's end.
	var underline scene.RectFillOp
	found := false
	for _, r := range rects {
		if r.Color == colors.Red {
			underline, found = r, true
		}
	}
	require.True(t, found)
	assert.Equal(t, first.Offset.X, underline.Rect.Min.X)
	assert.Equal(t, second.Offset.X+second.Width, underline.Rect.Max.X)
	assert.Greater(t, int(underline.Rect.Min.Y), int(line.Baseline), "underline sits below the baseline")
}

func TestLayoutDeterministic(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	st.Shadows = []style.Shadow{{Sigma: xfixed.I(2), Color: colors.Black}}
	mk := func() []scene.PaintOp {
		return paintOps(t, ctx, inlineText(st, "same content twice"), 200)
	}
	assert.Equal(t, mk(), mk())
}

func TestBlockStacksChildren(t *testing.T) {
	ctx, family := testContext(t)
	st := textStyle(family)
	block := &subtitle.BlockContainer{
		Style: st,
		Blocks: []*subtitle.BlockContainer{
			{Style: st, Inline: inlineText(st, "first")},
			{Style: st, Inline: inlineText(st, "second")},
		},
	}
	frag, err := Layout(ctx, cons(500, 500), block)
	require.NoError(t, err)
	require.Len(t, frag.Children, 2)
	assert.Equal(t, xfixed.Int26_6(0), frag.Children[0].Offset.Y)
	assert.Equal(t, frag.Children[0].Fragment.Box.Size.Y, frag.Children[1].Offset.Y)
	assert.Equal(t, frag.Children[0].Fragment.Box.Size.Y+frag.Children[1].Fragment.Box.Size.Y, frag.Box.Size.Y)
}

func TestInlinePadding(t *testing.T) {
	ctx, family := testContext(t)
	plain, err := LayoutInline(ctx, inlineText(textStyle(family), "pad"), cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)

	st := textStyle(family)
	st.PaddingLeft = xfixed.I(5)
	st.PaddingRight = xfixed.I(7)
	content := &subtitle.InlineContent{Root: subtitle.Span{
		Style:    textStyle(family),
		Children: []subtitle.Item{&subtitle.Span{Style: st, Children: []subtitle.Item{subtitle.Text{Text: "pad"}}}},
	}}
	padded, err := LayoutInline(ctx, content, cons(1000, 1000), style.AlignLeft)
	require.NoError(t, err)
	assert.Equal(t, plain.Lines[0].Size.X+xfixed.I(12), padded.Lines[0].Size.X)

	item := padded.Lines[0].Items[0].(*TextItem)
	assert.Equal(t, xfixed.I(5), item.Offset.X, "left padding shifts the first fragment")
}
