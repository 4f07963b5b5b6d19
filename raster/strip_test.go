// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"testing"

	"overtide.org/f32"
)

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func TestFillFullSquare(t *testing.T) {
	var r StripRasterizer
	r.AddPolygon([]f32.Point{{0, 0}, {8, 0}, {8, 8}, {0, 8}})
	tex := r.Rasterize(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := tex.Pix[y*tex.Stride+x]; got != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 255", x, y, got)
			}
		}
	}
}

func TestWindingDirectionIrrelevant(t *testing.T) {
	var cw, ccw StripRasterizer
	cw.AddPolygon([]f32.Point{{1, 1}, {7, 1}, {7, 7}, {1, 7}})
	ccw.AddPolygon([]f32.Point{{1, 1}, {1, 7}, {7, 7}, {7, 1}})
	a := cw.Rasterize(8, 8)
	b := ccw.Rasterize(8, 8)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d differs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestSubpixelCoverage(t *testing.T) {
	// A convex polygon fully inside one pixel: alpha must equal
	// round(255*area) within ±1.
	cases := []struct {
		quad []f32.Point
		area float32
	}{
		{[]f32.Point{{0.25, 0.25}, {0.75, 0.25}, {0.75, 0.75}, {0.25, 0.75}}, 0.25},
		{[]f32.Point{{0, 0}, {1, 0}, {1, 0.5}, {0, 0.5}}, 0.5},
		{[]f32.Point{{0, 0}, {1, 0}, {0, 1}}, 0.5},
		{[]f32.Point{{0.1, 0.1}, {0.9, 0.1}, {0.9, 0.9}, {0.1, 0.9}}, 0.64},
	}
	for i, c := range cases {
		var r StripRasterizer
		r.AddPolygon(c.quad)
		tex := r.Rasterize(1, 1)
		want := uint8(c.area*255 + 0.5)
		if got := tex.Pix[0]; absDiff(got, want) > 1 {
			t.Errorf("case %d: alpha = %d, want %d±1", i, got, want)
		}
	}
}

func TestHoleViaWinding(t *testing.T) {
	var r StripRasterizer
	r.AddPolygon([]f32.Point{{0, 0}, {8, 0}, {8, 8}, {0, 8}})
	// Reverse winding cuts a hole under the non-zero rule.
	r.AddPolygon([]f32.Point{{2, 2}, {2, 6}, {6, 6}, {6, 2}})
	tex := r.Rasterize(8, 8)
	if got := tex.Pix[4*tex.Stride+4]; got != 0 {
		t.Errorf("hole center = %d, want 0", got)
	}
	if got := tex.Pix[1*tex.Stride+1]; got != 255 {
		t.Errorf("ring = %d, want 255", got)
	}
}

func TestStrokePolylineCoversSegment(t *testing.T) {
	var r StripRasterizer
	r.StrokePolyline([]f32.Point{{2, 8}, {14, 8}}, 3)
	tex := r.Rasterize(16, 16)
	if got := tex.Pix[8*tex.Stride+8]; got != 255 {
		t.Errorf("stroke center = %d, want 255", got)
	}
	if got := tex.Pix[1*tex.Stride+8]; got != 0 {
		t.Errorf("far from stroke = %d, want 0", got)
	}
}
