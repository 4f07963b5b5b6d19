// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"log/slog"
	"sort"
)

// DB is the font database. It caches family query answers and opened
// faces, runs style matching and resolves per-codepoint fallback through
// the platform provider.
//
// A DB is not safe for concurrent use; every Renderer owns its own.
type DB struct {
	log      *slog.Logger
	provider Provider

	familyCache map[string][]FaceInfo
	faceCache   map[sourceKey]*Face

	// custom faces added by the caller; during fallback they are tried
	// after the provider's answers.
	custom []FaceInfo

	nextDataID uint64
	generation uint64

	tofu *Face

	// warned tracks families already logged as missing, so each is
	// reported once.
	warned map[string]bool
}

// NewDB returns a database backed by provider.
func NewDB(log *slog.Logger, provider Provider) *DB {
	return &DB{
		log:         log,
		provider:    provider,
		familyCache: make(map[string][]FaceInfo),
		faceCache:   make(map[sourceKey]*Face),
		warned:      make(map[string]bool),
	}
}

// Generation returns the current glyph-cache generation.
func (db *DB) Generation() uint64 { return db.generation }

// AdvanceCacheGeneration bumps the glyph-cache generation of all open
// faces; entries last used more than the retention window ago become
// eligible for eviction at their next cache probe.
func (db *DB) AdvanceCacheGeneration() {
	db.generation++
}

// AddMemoryFont registers an in-memory face. It participates in family
// queries ahead of provider faces; during fallback it is considered after
// the provider's candidates.
func (db *DB) AddMemoryFont(info FaceInfo) {
	db.nextDataID++
	info.Source.dataID = db.nextDataID
	db.custom = append(db.custom, info)
	// A new face can answer family queries that previously missed.
	delete(db.familyCache, info.Family)
}

// QueryByName returns every known face of a family: custom faces first,
// then the provider's, memoized per family.
func (db *DB) QueryByName(family string) ([]FaceInfo, error) {
	if cached, ok := db.familyCache[family]; ok {
		return cached, nil
	}
	var faces []FaceInfo
	for _, f := range db.custom {
		if f.Family == family {
			faces = append(faces, f)
		}
	}
	if db.provider != nil {
		provided, err := db.provider.QueryFamily(family)
		if err != nil {
			return nil, &ProviderError{Err: err}
		}
		faces = append(faces, provided...)
	}
	db.familyCache[family] = faces
	return faces, nil
}

// MatchFaceForFamily opens the best face of family for style, or nil when
// the family has no usable face.
func (db *DB) MatchFaceForFamily(family string, style Style) (*Face, error) {
	faces, err := db.QueryByName(family)
	if err != nil {
		return nil, err
	}
	return db.matchFaces(faces, style)
}

// SelectFallback asks the provider for faces covering the request's
// codepoint, appends custom faces re-sorted by the request's family
// preference, and style-matches the result. ErrNotFound is returned when
// nothing matches.
func (db *DB) SelectFallback(req FallbackRequest) (*Face, error) {
	var candidates []FaceInfo
	if db.provider != nil {
		provided, err := db.provider.QueryFallback(req)
		if err != nil {
			return nil, &ProviderError{Err: err}
		}
		candidates = provided
	}
	custom := append([]FaceInfo(nil), db.custom...)
	sort.SliceStable(custom, func(i, j int) bool {
		return familyRank(req.Families, custom[i].Family) < familyRank(req.Families, custom[j].Family)
	})
	for _, f := range custom {
		face, err := db.open(f)
		if err != nil {
			continue
		}
		if face.Covers(req.Codepoint) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	face, err := db.matchFaces(candidates, req.Style)
	if err != nil {
		return nil, err
	}
	if face == nil {
		return nil, ErrNotFound
	}
	return face, nil
}

func familyRank(prefs []string, family string) int {
	for i, p := range prefs {
		if p == family {
			return i
		}
	}
	return len(prefs)
}

// open returns the shared Face for info's source, opening it on first use.
func (db *DB) open(info FaceInfo) (*Face, error) {
	key := info.Source.key()
	if face, ok := db.faceCache[key]; ok {
		return face, nil
	}
	face, err := openSource(info)
	if err != nil {
		return nil, err
	}
	face.glyphs.init(db)
	db.faceCache[key] = face
	return face, nil
}

// Tofu returns the synthesized placeholder face.
func (db *DB) Tofu() *Face {
	if db.tofu == nil {
		db.tofu = newTofuFace(db)
	}
	return db.tofu
}

// WarnMissing logs one warning per missing family.
func (db *DB) WarnMissing(family string) {
	if db.warned[family] {
		return
	}
	db.warned[family] = true
	db.log.Warn("no font found, substituting tofu", "family", family)
}
