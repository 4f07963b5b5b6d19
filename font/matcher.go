// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"errors"

	xfixed "golang.org/x/image/math/fixed"
)

// A Matcher captures one style's font request: the family list, style,
// CSS size and DPI. Shaping iterates it to resolve per-codepoint fonts.
type Matcher struct {
	Families []string
	Style    Style
	// Size is in CSS pixels.
	Size xfixed.Int26_6
	DPI  uint32
}

// Tofu returns the placeholder font at the matcher's size.
func (m *Matcher) Tofu(db *DB) *Font {
	f, err := db.Tofu().WithSize(m.Size, m.DPI)
	if err != nil {
		// The tofu face accepts any positive size; a failure here means
		// the matcher's size itself is unusable.
		panic(err)
	}
	return f
}

// Primary returns the first font the family list resolves to, falling back
// by the space codepoint, or tofu.
func (m *Matcher) Primary(db *DB) (*Font, error) {
	it := m.Iterator()
	font, err := it.NextWithFallback(' ', db)
	if err != nil {
		return nil, err
	}
	if font == nil {
		return m.Tofu(db), nil
	}
	return font, nil
}

// Iterator starts a fresh walk over the matcher's family list.
func (m *Matcher) Iterator() MatchIterator {
	return MatchIterator{matcher: m}
}

// MatchIterator walks a matcher's families in preference order, ending
// with a platform fallback query for a specific codepoint.
type MatchIterator struct {
	matcher *Matcher
	index   int
}

// Matcher returns the matcher the iterator walks.
func (it *MatchIterator) Matcher() *Matcher { return it.matcher }

// DidSystemFallback reports whether the iterator went past the family list.
func (it *MatchIterator) DidSystemFallback() bool {
	return it.index > len(it.matcher.Families)
}

// NextWithFallback returns the next candidate font for codepoint, or nil
// when every tier including the platform fallback is exhausted. Fonts of
// the family list come back in list order without a coverage check; once
// the list is used up, the platform fallback is queried for codepoint.
func (it *MatchIterator) NextWithFallback(codepoint rune, db *DB) (*Font, error) {
	for {
		if it.index < len(it.matcher.Families) {
			family := it.matcher.Families[it.index]
			it.index++
			matched, err := db.MatchFaceForFamily(family, it.matcher.Style)
			if err != nil {
				if recoverable(err) {
					continue
				}
				return nil, err
			}
			if matched == nil {
				continue
			}
			return matched.WithSize(it.matcher.Size, it.matcher.DPI)
		}
		if it.index == len(it.matcher.Families) {
			it.index++
		}
		face, err := db.SelectFallback(FallbackRequest{
			Families:  it.matcher.Families,
			Style:     it.matcher.Style,
			Codepoint: codepoint,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return face.WithSize(it.matcher.Size, it.matcher.DPI)
	}
}

// recoverable reports errors that should move matching to the next
// candidate tier instead of failing the run.
func recoverable(err error) bool {
	var load *LoadError
	return errors.As(err, &load)
}
