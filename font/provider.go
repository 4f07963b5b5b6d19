// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"bytes"
	"io"
	"log"
	"log/slog"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"

	"overtide.org/fixed"
)

// DescribeData builds a FaceInfo for an in-memory face by parsing its
// metadata. The data buffer is retained by the returned info.
func DescribeData(data []byte, index int) (FaceInfo, error) {
	src := Source{Data: data, Index: index}
	faces, err := gtfont.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return FaceInfo{}, &LoadError{Source: src, Err: err}
	}
	if index >= len(faces) {
		return FaceInfo{}, &LoadError{Source: src, Err: os.ErrNotExist}
	}
	return infoFromDescription(faces[index].Describe(), src), nil
}

func infoFromDescription(d gtfont.Description, src Source) FaceInfo {
	return FaceInfo{
		Family: d.Family,
		Weight: Fixed(fixed.FromFloat32(float32(d.Aspect.Weight))),
		Italic: d.Aspect.Style == gtfont.StyleItalic,
		Source: src,
	}
}

// ScanProvider is the portable platform provider: it resolves queries
// through go-text's system font index (fontconfig-like scanning of the
// platform font directories, cached on disk).
type ScanProvider struct {
	fontMap *fontscan.FontMap
	log     *slog.Logger

	// ids gives scanner-resolved faces stable cache keys.
	ids    map[*gtfont.Face]uint64
	nextID uint64
}

// NewScanProvider builds the provider and loads the system font index.
// Scanning happens once; subsequent constructions reuse the on-disk cache.
func NewScanProvider(logger *slog.Logger) (*ScanProvider, error) {
	fm := fontscan.NewFontMap(log.New(io.Discard, "", 0))
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	if err := fm.UseSystemFonts(dir); err != nil {
		return nil, &ProviderError{Err: err}
	}
	return &ScanProvider{fontMap: fm, log: logger}, nil
}

func (p *ScanProvider) aspect(style Style) gtfont.Aspect {
	a := gtfont.Aspect{Weight: gtfont.Weight(style.Weight.Float32())}
	if style.Italic {
		a.Style = gtfont.StyleItalic
	} else {
		a.Style = gtfont.StyleNormal
	}
	return a
}

// QueryFamily resolves one family through the system index. The index
// answers with the best face per query, so the reply has at most one
// entry; style matching then runs over it unchanged.
func (p *ScanProvider) QueryFamily(family string) ([]FaceInfo, error) {
	p.fontMap.SetQuery(fontscan.Query{Families: []string{family}})
	face := p.fontMap.ResolveFace(' ')
	if face == nil {
		return nil, nil
	}
	d := face.Describe()
	if d.Family != family {
		// The index substituted an unrelated family; report a miss so the
		// caller moves on to its next tier.
		return nil, nil
	}
	return []FaceInfo{infoFromDescription(d, p.locate(face))}, nil
}

// QueryFallback resolves a codepoint through the system index with the
// requested families as preference hints.
func (p *ScanProvider) QueryFallback(req FallbackRequest) ([]FaceInfo, error) {
	p.fontMap.SetQuery(fontscan.Query{
		Families: req.Families,
		Aspect:   p.aspect(req.Style),
	})
	face := p.fontMap.ResolveFace(req.Codepoint)
	if face == nil {
		return nil, nil
	}
	return []FaceInfo{infoFromDescription(face.Describe(), p.locate(face))}, nil
}

// locate keys a resolved face for the open-face cache. The scanner does
// not expose file paths through this interface, so resolved faces are
// retained in their parsed form.
func (p *ScanProvider) locate(face *gtfont.Face) Source {
	if p.ids == nil {
		p.ids = make(map[*gtfont.Face]uint64)
	}
	id, ok := p.ids[face]
	if !ok {
		p.nextID++
		id = p.nextID
		p.ids[face] = id
	}
	return Source{resolved: face, dataID: id}
}
