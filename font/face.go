// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"bytes"
	"fmt"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/fixed"
)

var wghtTag = opentype.MustNewTag("wght")

// A Face is an opened font resource: the parsed tables, its variation
// state and the face's glyph cache. Faces are shared by pointer between
// fonts of different sizes; the glyph cache keys on size.
type Face struct {
	info FaceInfo
	face *gtfont.Face
	// variations currently applied to face, part of glyph cache keys.
	variations []gtfont.Variation
	varHash    uint64

	glyphs glyphCache

	// tofu marks the synthesized placeholder face used when no provider
	// has a usable font.
	tofu bool
}

// openSource parses the face described by info.
func openSource(info FaceInfo) (*Face, error) {
	if info.Source.resolved != nil {
		return &Face{info: info, face: info.Source.resolved}, nil
	}
	data := info.Source.Data
	if data == nil {
		b, err := os.ReadFile(info.Source.Path)
		if err != nil {
			return nil, &LoadError{Source: info.Source, Err: err}
		}
		data = b
	}
	faces, err := gtfont.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: info.Source, Err: err}
	}
	if info.Source.Index >= len(faces) {
		return nil, &LoadError{Source: info.Source, Err: fmt.Errorf("face index %d out of range (%d faces)", info.Source.Index, len(faces))}
	}
	return &Face{info: info, face: faces[info.Source.Index]}, nil
}

// Info returns the descriptor the face was opened from.
func (f *Face) Info() FaceInfo { return f.info }

// Raw returns the underlying typesetting face for shaping. It is nil for
// the tofu face.
func (f *Face) Raw() *gtfont.Face { return f.face }

// IsTofu reports whether f is the synthesized placeholder face.
func (f *Face) IsTofu() bool { return f.tofu }

// SetVariation applies one variable-axis value to the face. Glyphs
// rendered afterwards key on the new coordinates.
func (f *Face) SetVariation(tag opentype.Tag, value float32) {
	for i := range f.variations {
		if f.variations[i].Tag == tag {
			f.variations[i].Value = value
			f.applyVariations()
			return
		}
	}
	f.variations = append(f.variations, gtfont.Variation{Tag: tag, Value: value})
	f.applyVariations()
}

func (f *Face) applyVariations() {
	if f.face != nil {
		f.face.SetVariations(f.variations)
	}
	h := uint64(14695981039346656037)
	for _, v := range f.variations {
		h = (h ^ uint64(v.Tag)) * 1099511628211
		h = (h ^ uint64(fixed.FromFloat32(v.Value))) * 1099511628211
	}
	f.varHash = h
}

// setWeightIfVariable instances the weight axis on variable faces.
func (f *Face) setWeightIfVariable(weight fixed.Int16_16) {
	if f.info.Weight.IsRange() {
		f.SetVariation(wghtTag, f.info.Weight.Clamp(weight).Float32())
	}
}

// Covers reports whether the face maps r to a real glyph. The tofu face
// claims every codepoint.
func (f *Face) Covers(r rune) bool {
	if f.tofu {
		return true
	}
	gid, ok := f.face.NominalGlyph(r)
	return ok && gid != 0
}

// WithSize binds f to a pixel size: size is in CSS pixels, scaled by dpi.
func (f *Face) WithSize(size xfixed.Int26_6, dpi uint32) (*Font, error) {
	px := CSSToDevice(size, dpi)
	if px <= 0 {
		return nil, fmt.Errorf("font: non-positive pixel size %v", px)
	}
	return &Font{face: f, size: px, dpi: dpi}, nil
}

// Metrics are per-size face metrics in device pixels, y growing down.
type Metrics struct {
	Ascent  xfixed.Int26_6
	Descent xfixed.Int26_6
	LineGap xfixed.Int26_6
	// UnderlineTopOffset is from the baseline down to the top of the
	// underline stroke.
	UnderlineTopOffset xfixed.Int26_6
	UnderlineThickness xfixed.Int26_6
	StrikeoutTopOffset xfixed.Int26_6
	StrikeoutThickness xfixed.Int26_6
}

// A Font is a cheap handle: a face bound to a pixel size and DPI. Size
// metrics are computed on first use.
type Font struct {
	face *Face
	// size is in device pixels.
	size xfixed.Int26_6
	dpi  uint32

	metrics    Metrics
	hasMetrics bool
}

// Face returns the backing face.
func (f *Font) Face() *Face { return f.face }

// Size returns the pixel size the font renders at.
func (f *Font) Size() xfixed.Int26_6 { return f.size }

// DPI returns the dots-per-inch the CSS size was scaled with.
func (f *Font) DPI() uint32 { return f.dpi }

// scale returns the font-unit to pixel factor.
func (f *Font) scale() float32 {
	return fixed.From26_6Float(f.size) / float32(f.face.face.Upem())
}

// Metrics returns the per-size metrics, computing them on first use.
func (f *Font) Metrics() Metrics {
	if f.hasMetrics {
		return f.metrics
	}
	if f.face.tofu {
		f.metrics = tofuMetrics(f.size)
	} else {
		scale := f.scale()
		px := func(v float32) xfixed.Int26_6 { return fixed.To26_6(v * scale) }
		ext, _ := f.face.face.FontHExtents()
		underPos := f.face.face.LineMetric(gtfont.UnderlinePosition)
		underThick := f.face.face.LineMetric(gtfont.UnderlineThickness)
		strikePos := f.face.face.LineMetric(gtfont.StrikethroughPosition)
		strikeThick := f.face.face.LineMetric(gtfont.StrikethroughThickness)
		m := Metrics{
			Ascent:  px(ext.Ascender),
			Descent: px(-ext.Descender),
			LineGap: px(ext.LineGap),
		}
		if underThick <= 0 {
			underThick = float32(f.face.face.Upem()) / 14
		}
		if strikeThick <= 0 {
			strikeThick = underThick
		}
		// Line metrics are y-up positions of the stroke center; convert to
		// top-of-stroke offsets below (underline) and above (strikeout)
		// the baseline.
		m.UnderlineTopOffset = px(-underPos - underThick/2)
		m.UnderlineThickness = px(underThick)
		m.StrikeoutTopOffset = px(strikePos + strikeThick/2)
		m.StrikeoutThickness = px(strikeThick)
		f.metrics = m
	}
	f.hasMetrics = true
	return f.metrics
}
