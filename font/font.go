/*
Package font selects, opens and sizes font faces.

The database caches face descriptors from a platform provider, runs the
CSS font-style matching algorithm over them, opens winners and hands out
sized Font handles. Opened faces carry the per-face glyph cache.
*/
package font

import (
	"errors"
	"fmt"

	gtfont "github.com/go-text/typesetting/font"
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/fixed"
)

// Style is the face selection request: a CSS weight and italic flag.
// Weight is 16.16 so variable weights can be addressed exactly.
type Style struct {
	Weight fixed.Int16_16
	Italic bool
}

// StyleRegular is 400 upright.
var StyleRegular = Style{Weight: fixed.I(400)}

// AxisValues is a fixed value or a variable-font range on a design axis.
type AxisValues struct {
	Start, End fixed.Int16_16
}

// Fixed returns a single-valued axis.
func Fixed(v fixed.Int16_16) AxisValues {
	return AxisValues{Start: v, End: v}
}

// Range returns a variable axis covering [start, end].
func Range(start, end fixed.Int16_16) AxisValues {
	return AxisValues{Start: start, End: end}
}

// IsRange reports whether the axis spans more than one value.
func (a AxisValues) IsRange() bool { return a.Start != a.End }

// Contains reports whether v lies on the axis. Range axes clamp, so any
// in-range value counts as exact.
func (a AxisValues) Contains(v fixed.Int16_16) bool {
	return a.Start <= v && v <= a.End
}

// Clamp returns v limited to the axis.
func (a AxisValues) Clamp(v fixed.Int16_16) fixed.Int16_16 {
	return v.Max(a.Start).Min(a.End)
}

// A Source identifies where a face's bytes come from. File sources set
// Path and in-memory sources set Data; sources resolved by a provider carry
// an already-parsed face and set neither. Faces loaded from memory retain
// Data for the face's lifetime.
type Source struct {
	Path  string
	Index int
	Data  []byte
	// dataID distinguishes distinct in-memory buffers in cache keys.
	dataID uint64
	// resolved carries an already-parsed face handed out by a provider
	// that does not expose file locations.
	resolved *gtfont.Face
}

func (s Source) key() sourceKey {
	return sourceKey{path: s.Path, index: s.Index, dataID: s.dataID}
}

type sourceKey struct {
	path   string
	index  int
	dataID uint64
}

func (s Source) String() string {
	if s.Path != "" {
		return fmt.Sprintf("%s#%d", s.Path, s.Index)
	}
	return fmt.Sprintf("memory(%d bytes)#%d", len(s.Data), s.Index)
}

// FaceInfo describes one face available for matching, before it is opened.
type FaceInfo struct {
	// Family is the face's primary family name.
	Family string
	Weight AxisValues
	Italic bool
	Source Source
}

// ErrNotFound reports that every provider tier was exhausted. It is
// recoverable: the caller substitutes tofu.
var ErrNotFound = errors.New("font: no matching face found")

// LoadError wraps a parse failure of an opened source.
type LoadError struct {
	Source Source
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("font: loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ProviderError wraps a platform-provider failure.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("font: provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// FallbackRequest asks a provider for faces covering a codepoint.
type FallbackRequest struct {
	Families  []string
	Style     Style
	Codepoint rune
}

// A Provider enumerates platform faces. QueryFamily returns every face of a
// named family; QueryFallback returns candidates assumed to cover the
// requested codepoint. Both may block on platform IPC; the database caches
// family answers.
type Provider interface {
	QueryFamily(family string) ([]FaceInfo, error)
	QueryFallback(req FallbackRequest) ([]FaceInfo, error)
}

// CSSToDevice converts a CSS-pixel length to device pixels at dpi.
func CSSToDevice(v xfixed.Int26_6, dpi uint32) xfixed.Int26_6 {
	return xfixed.Int26_6(int64(v) * int64(dpi) / 72)
}
