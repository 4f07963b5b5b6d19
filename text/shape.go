// SPDX-License-Identifier: Unlicense OR MIT

package text

import (
	"errors"
	"fmt"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/exp/slices"
	xfixed "golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"overtide.org/font"
	"overtide.org/style"
)

// ShapingError reports that the shaping engine refused a run; the caller
// renders the run as tofu.
type ShapingError struct {
	Text string
	Err  error
}

func (e *ShapingError) Error() string {
	return fmt.Sprintf("text: shaping %q: %v", e.Text, e.Err)
}

func (e *ShapingError) Unwrap() error { return e.Err }

// A Shaper owns the shaping engine and the scratch buffers reused between
// runs. It is not safe for concurrent use.
type Shaper struct {
	shaper        shaping.HarfbuzzShaper
	bidiParagraph bidi.Paragraph
}

// segment is an internal shaping segment: a rune range with resolved
// direction, script and font.
type segment struct {
	start, end int
	rtl        bool
	script     language.Script
	font       *font.Font
}

// Shape shapes text with the fonts resolved through matcher. Base
// direction is right-to-left when baseRTL is set. Feature settings are
// passed through to the shaping engine.
func (s *Shaper) Shape(db *font.DB, matcher *font.Matcher, text string, baseRTL bool, features []style.FeatureSetting) (GlyphString, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return GlyphString{}, nil
	}

	segs, err := s.segment(db, matcher, runes, baseRTL)
	if err != nil {
		return GlyphString{}, err
	}

	var out GlyphString
	feats := convertFeatures(features)
	for _, seg := range segs {
		run, err := s.shapeSegment(db, matcher, runes, seg, feats)
		if err != nil {
			var shapeErr *ShapingError
			if !errors.As(err, &shapeErr) {
				return GlyphString{}, err
			}
			run = tofuRun(matcher.Tofu(db), seg)
		}
		out.Runs = append(out.Runs, run)
	}

	for i := range out.Runs {
		run := &out.Runs[i]
		out.Advance += run.Advance
		out.Ascent = maxFixed(out.Ascent, run.Ascent)
		out.Descent = maxFixed(out.Descent, run.Descent)
		out.LineGap = maxFixed(out.LineGap, run.LineGap)
	}
	out.VisualOrder = computeVisualOrder(out.Runs, baseRTL)
	return out, nil
}

// segment splits runes on bidi level, script and font boundaries.
func (s *Shaper) segment(db *font.DB, matcher *font.Matcher, runes []rune, baseRTL bool) ([]segment, error) {
	var segs []segment
	for _, br := range s.splitBidi(runes, baseRTL) {
		for _, sr := range splitScript(runes, br.start, br.end) {
			fontSegs, err := splitFonts(db, matcher, runes, sr.start, sr.end)
			if err != nil {
				return nil, err
			}
			for _, fr := range fontSegs {
				segs = append(segs, segment{
					start:  fr.start,
					end:    fr.end,
					rtl:    br.rtl,
					script: sr.script,
					font:   fr.font,
				})
			}
		}
	}
	return segs, nil
}

type bidiRun struct {
	start, end int
	rtl        bool
}

func (s *Shaper) splitBidi(runes []rune, baseRTL bool) []bidiRun {
	def := bidi.LeftToRight
	if baseRTL {
		def = bidi.RightToLeft
	}
	s.bidiParagraph.SetString(string(runes), bidi.DefaultDirection(def))
	ordering, err := s.bidiParagraph.Order()
	if err != nil {
		return []bidiRun{{start: 0, end: len(runes), rtl: baseRTL}}
	}
	var out []bidiRun
	start := 0
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		_, endRune := run.Pos()
		out = append(out, bidiRun{
			start: start,
			end:   endRune + 1,
			rtl:   run.Direction() == bidi.RightToLeft,
		})
		start = endRune + 1
	}
	if len(out) == 0 {
		out = append(out, bidiRun{start: 0, end: len(runes), rtl: baseRTL})
	}
	return out
}

type scriptRun struct {
	start, end int
	script     language.Script
}

// splitScript divides [start, end) on script boundaries; runes of the
// Common script stay attached to the preceding script.
func splitScript(runes []rune, start, end int) []scriptRun {
	if start >= end {
		return nil
	}
	firstReal := start
	for i := start; i < end; i++ {
		if language.LookupScript(runes[i]) != language.Common {
			firstReal = i
			break
		}
	}
	cur := scriptRun{start: start, script: language.LookupScript(runes[firstReal])}
	var out []scriptRun
	for i := firstReal + 1; i < end; i++ {
		sc := language.LookupScript(runes[i])
		if sc == language.Common || sc == cur.script {
			continue
		}
		cur.end = i
		out = append(out, cur)
		cur = scriptRun{start: i, script: sc}
	}
	cur.end = end
	return append(out, cur)
}

type fontRun struct {
	start, end int
	font       *font.Font
}

// splitFonts walks [start, end) resolving a font per codepoint through the
// match iterator and splitting on missing-glyph boundaries. An exhausted
// iterator yields the tofu font for the offending codepoint.
func splitFonts(db *font.DB, matcher *font.Matcher, runes []rune, start, end int) ([]fontRun, error) {
	var out []fontRun
	i := start
	for i < end {
		it := matcher.Iterator()
		fnt, err := it.NextWithFallback(runes[i], db)
		for err == nil && fnt != nil && !fnt.Face().Covers(runes[i]) {
			if it.DidSystemFallback() {
				// The platform answered with a face that still lacks the
				// codepoint; further queries would repeat it.
				fnt = nil
				break
			}
			fnt, err = it.NextWithFallback(runes[i], db)
		}
		if err != nil {
			return nil, err
		}
		if fnt == nil {
			db.WarnMissing(familyLabel(matcher))
			fnt = matcher.Tofu(db)
		}
		j := i + 1
		for j < end && fnt.Face().Covers(runes[j]) {
			j++
		}
		out = append(out, fontRun{start: i, end: j, font: fnt})
		i = j
	}
	return out, nil
}

func familyLabel(m *font.Matcher) string {
	if len(m.Families) > 0 {
		return m.Families[0]
	}
	return "(empty family list)"
}

func (s *Shaper) shapeSegment(db *font.DB, matcher *font.Matcher, runes []rune, seg segment, feats []shaping.FontFeature) (Run, error) {
	fnt := seg.font
	if fnt.Face().IsTofu() {
		return tofuRun(fnt, seg), nil
	}

	dir := di.DirectionLTR
	if seg.rtl {
		dir = di.DirectionRTL
	}
	input := shaping.Input{
		Text:         runes,
		RunStart:     seg.start,
		RunEnd:       seg.end,
		Direction:    dir,
		Face:         fnt.Face().Raw(),
		Size:         fnt.Size(),
		Script:       seg.script,
		Language:     language.DefaultLanguage(),
		FontFeatures: feats,
	}
	output := s.shaper.Shape(input)
	if len(output.Glyphs) == 0 && seg.end > seg.start {
		return Run{}, &ShapingError{
			Text: string(runes[seg.start:seg.end]),
			Err:  errors.New("shaper returned no glyphs"),
		}
	}

	run := Run{
		Font:    fnt,
		Start:   seg.start,
		End:     seg.end,
		RTL:     seg.rtl,
		Advance: output.Advance,
		Ascent:  output.LineBounds.Ascent,
		Descent: -output.LineBounds.Descent,
		LineGap: output.LineBounds.Gap,
	}
	run.Glyphs = slices.Grow(run.Glyphs, len(output.Glyphs))
	for _, g := range output.Glyphs {
		run.Glyphs = append(run.Glyphs, Glyph{
			ID:         g.GlyphID,
			Cluster:    g.ClusterIndex,
			RuneCount:  g.RuneCount,
			GlyphCount: g.GlyphCount,
			XAdvance:   g.XAdvance,
			YAdvance:   g.YAdvance,
			XOffset:    g.XOffset,
			YOffset:    g.YOffset,
		})
	}
	return run, nil
}

// tofuRun synthesizes a run of placeholder boxes, one per rune.
func tofuRun(fnt *font.Font, seg segment) Run {
	m := fnt.Metrics()
	run := Run{
		Font:    fnt,
		Start:   seg.start,
		End:     seg.end,
		RTL:     seg.rtl,
		Ascent:  m.Ascent,
		Descent: m.Descent,
	}
	adv := fnt.TofuAdvance() + 64/8
	for i := seg.start; i < seg.end; i++ {
		run.Glyphs = append(run.Glyphs, Glyph{
			ID:         0,
			Cluster:    i,
			RuneCount:  1,
			GlyphCount: 1,
			XAdvance:   adv,
		})
		run.Advance += adv
	}
	return run
}

func convertFeatures(features []style.FeatureSetting) []shaping.FontFeature {
	if len(features) == 0 {
		return nil
	}
	out := make([]shaping.FontFeature, len(features))
	for i, f := range features {
		out[i] = shaping.FontFeature{
			Tag:   opentype.NewTag(f.Tag[0], f.Tag[1], f.Tag[2], f.Tag[3]),
			Value: f.Value,
		}
	}
	return out
}

// computeVisualOrder maps logical run order to display order: runs whose
// direction opposes the base direction are reversed as a group.
func computeVisualOrder(runs []Run, baseRTL bool) []int {
	order := make([]int, len(runs))
	const none = -1

	visPos := func(logical int) int {
		if baseRTL {
			return len(runs) - 1 - logical
		}
		return logical
	}
	resolveReversed := func(start, end int) {
		firstVisual := end - 1
		for i := start; i < end; i++ {
			order[visPos(firstVisual)] = i
			firstVisual--
		}
	}

	reversedStart := none
	for i := range runs {
		if runs[i].RTL != baseRTL {
			if reversedStart == none {
				reversedStart = i
			}
			continue
		}
		if reversedStart != none {
			resolveReversed(reversedStart, i)
			reversedStart = none
		}
		order[visPos(i)] = i
	}
	if reversedStart != none {
		resolveReversed(reversedStart, len(runs))
	}
	return order
}

func maxFixed(a, b xfixed.Int26_6) xfixed.Int26_6 {
	if a > b {
		return a
	}
	return b
}
