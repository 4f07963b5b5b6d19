// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"image"

	gtfont "github.com/go-text/typesetting/font"
	xfixed "golang.org/x/image/math/fixed"

	"overtide.org/raster"
)

// SubpixelBins is the number of quantized fractional pen positions per
// axis a glyph is cached at. Four bins trade cache size against subpixel
// positioning quality; the value is fixed but tunable.
const SubpixelBins = 4

// retainGenerations is the eviction window: entries untouched for more
// than this many cache generations are dropped at the next probe.
const retainGenerations = 2

type glyphKey struct {
	size       xfixed.Int26_6
	varHash    uint64
	gid        gtfont.GID
	subX, subY uint8
	blurRadius int16
}

type glyphEntry struct {
	tex *raster.Texture
	// origin is the offset of the bitmap's top-left corner from the
	// glyph's integer pen position.
	origin   image.Point
	lastUsed uint64
}

// glyphCache is the per-face glyph bitmap cache. Entries hold either a
// mono coverage bitmap or a premultiplied BGRA bitmap for color glyphs.
type glyphCache struct {
	db        *DB
	entries   map[glyphKey]*glyphEntry
	lastSweep uint64
}

func (c *glyphCache) init(db *DB) {
	c.db = db
	c.entries = make(map[glyphKey]*glyphEntry)
}

// get returns the cached entry, sweeping out stale generations when the
// database generation has moved since the last probe.
func (c *glyphCache) get(key glyphKey) (*glyphEntry, bool) {
	gen := c.db.Generation()
	if gen != c.lastSweep {
		for k, e := range c.entries {
			if e.lastUsed+retainGenerations < gen {
				delete(c.entries, k)
			}
		}
		c.lastSweep = gen
	}
	e, ok := c.entries[key]
	if ok {
		e.lastUsed = gen
	}
	return e, ok
}

func (c *glyphCache) put(key glyphKey, tex *raster.Texture, origin image.Point) *glyphEntry {
	e := &glyphEntry{tex: tex, origin: origin, lastUsed: c.db.Generation()}
	c.entries[key] = e
	return e
}

// SubpixelBin quantizes the fractional part of a 26.6 pen coordinate.
func SubpixelBin(v xfixed.Int26_6) uint8 {
	return uint8((v & 63) >> 4)
}

// binOffset returns the pixel offset a bin renders at.
func binOffset(bin uint8) float32 {
	return float32(bin) / SubpixelBins
}
