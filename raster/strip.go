// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"github.com/chewxy/math32"

	"overtide.org/f32"
	"overtide.org/fixed"
)

// stripHeight is the number of output rows rasterized per coverage pass.
// Working in short horizontal strips keeps the signed coverage buffer in
// cache.
const stripHeight = 4

// A segment is one polyline edge, stored with y0 <= y1 and the original
// direction preserved in winding.
type segment struct {
	x0, y0  float32
	x1, y1  float32
	winding int32
}

// A StripRasterizer fills closed polylines with the non-zero winding rule.
// Callers add shapes in a coordinate space where every point is >= 0 (the
// caller applies the subpixel shift first) and then rasterize the region
// [0,w)×[0,h).
type StripRasterizer struct {
	segments []segment
	coverage []fixed.Int16_16
	bounds   f32.Rectangle
}

// Reset discards all accumulated shapes.
func (r *StripRasterizer) Reset() {
	r.segments = r.segments[:0]
	r.bounds = f32.Nothing()
}

// Bounds returns the bounding box of everything added so far.
func (r *StripRasterizer) Bounds() f32.Rectangle {
	return r.bounds
}

func (r *StripRasterizer) addSegment(p0, p1 f32.Point) {
	if p0.Y == p1.Y {
		return
	}
	w := int32(1)
	if p0.Y > p1.Y {
		p0, p1 = p1, p0
		w = -1
	}
	r.segments = append(r.segments, segment{p0.X, p0.Y, p1.X, p1.Y, w})
}

// AddPolygon adds a closed contour. The final point is connected back to
// the first.
func (r *StripRasterizer) AddPolygon(pts []f32.Point) {
	if len(pts) < 2 {
		return
	}
	if len(r.segments) == 0 {
		r.bounds = f32.Nothing()
	}
	prev := pts[len(pts)-1]
	for _, p := range pts {
		r.addSegment(prev, p)
		r.bounds = r.bounds.ExpandToPoint(p)
		prev = p
	}
}

// StrokePolyline adds the stroked shape of an open polyline: one quad per
// segment plus a disk at every vertex, so joins and caps come out round.
func (r *StripRasterizer) StrokePolyline(pts []f32.Point, halfWidth float32) {
	const diskSides = 16
	var disk [diskSides]f32.Point
	for i := range disk {
		a := 2 * math32.Pi * float32(i) / diskSides
		disk[i] = f32.Point{X: halfWidth * math32.Cos(a), Y: halfWidth * math32.Sin(a)}
	}

	for i := 0; i+1 < len(pts); i++ {
		p0, p1 := pts[i], pts[i+1]
		d := p1.Sub(p0)
		l := math32.Hypot(d.X, d.Y)
		if l == 0 {
			continue
		}
		n := d.Normal().Mul(halfWidth / l)
		r.AddPolygon([]f32.Point{p0.Add(n), p1.Add(n), p1.Sub(n), p0.Sub(n)})
	}
	for _, p := range pts {
		quad := make([]f32.Point, diskSides)
		for i, d := range disk {
			quad[i] = p.Add(d)
		}
		r.AddPolygon(quad)
	}
}

// coverageToAlpha clamps the absolute signed coverage to [0,1] and scales
// it to a byte.
func coverageToAlpha(c fixed.Int16_16) uint8 {
	c = c.Abs()
	if c > fixed.One {
		c = fixed.One
	}
	return uint8((int64(c)*255 + 1<<15) >> 16)
}

// Rasterize fills the accumulated shapes into a new w×h mono texture.
func (r *StripRasterizer) Rasterize(w, h int) *Texture {
	out := NewTexture(Mono, w, h)
	if w <= 0 || h <= 0 || len(r.segments) == 0 {
		return out
	}
	if cap(r.coverage) < w*stripHeight {
		r.coverage = make([]fixed.Int16_16, w*stripHeight)
	} else {
		r.coverage = r.coverage[:w*stripHeight]
	}

	for stripY := 0; stripY < h; stripY += stripHeight {
		clear(r.coverage)
		y0 := float32(stripY)
		y1 := y0 + stripHeight
		for i := range r.segments {
			r.rasterizeSegment(&r.segments[i], y0, y1, w)
		}
		rows := min(stripHeight, h-stripY)
		for y := 0; y < rows; y++ {
			dst := out.Pix[(stripY+y)*out.Stride:]
			src := r.coverage[y*w:]
			for x := 0; x < w; x++ {
				dst[x] = coverageToAlpha(src[x])
			}
		}
	}
	return out
}

// rasterizeSegment accumulates the signed coverage of one segment clipped
// to the strip [stripY0, stripY1), in strip-local coordinates.
func (r *StripRasterizer) rasterizeSegment(s *segment, stripY0, stripY1 float32, w int) {
	ys := math32.Max(s.y0, stripY0)
	ye := math32.Min(s.y1, stripY1)
	if ys >= ye {
		return
	}
	// Interpolate x at the clipped endpoints.
	t0 := (ys - s.y0) / (s.y1 - s.y0)
	t1 := (ye - s.y0) / (s.y1 - s.y0)
	xs := fixed.FromFloat32(s.x0 + (s.x1-s.x0)*t0)
	xe := fixed.FromFloat32(s.x0 + (s.x1-s.x0)*t1)
	lyS := fixed.FromFloat32(ys - stripY0)
	lyE := fixed.FromFloat32(ye - stripY0)
	if lyS == lyE {
		return
	}

	sign := fixed.I(int(s.winding))
	dx := (xe - xs).Div(lyE - lyS)
	endRow := lyE.Floor()
	if lyE.Frac() == 0 && endRow > lyS.Floor() {
		endRow--
	}
	if endRow > stripHeight-1 {
		endRow = stripHeight - 1
	}
	curRow := lyS.Floor()
	curX := xs

	if endRow == curRow {
		r.rasterizeRow(curRow, w, xe, xs, lyE-lyS, sign)
		return
	}
	initialHeight := fixed.One - lyS.Frac()
	nextX := curX + dx.Mul(initialHeight)
	r.rasterizeRow(curRow, w, nextX, curX, initialHeight, sign)
	curRow++
	curX = nextX
	for curRow < endRow {
		nextX = curX + dx
		r.rasterizeRow(curRow, w, nextX, curX, fixed.One, sign)
		curRow++
		curX = nextX
	}
	r.rasterizeRow(curRow, w, xe, curX, lyE-fixed.I(curRow), sign)
}

// rasterizeRow adds the coverage of a trapezoid of the given height whose
// slanted side runs from bx to tx, then extends full-height coverage to
// every pixel right of it.
func (r *StripRasterizer) rasterizeRow(y, w int, tx, bx, height, sign fixed.Int16_16) {
	if height == 0 {
		return
	}
	row := r.coverage[y*w : (y+1)*w]
	lx, rx := bx, tx
	if tx < bx {
		lx, rx = tx, bx
	}
	if lx < 0 {
		lx = 0
	}
	if rx < lx {
		rx = lx
	}
	curXi := lx.Floor()
	if curXi >= w {
		return
	}
	curX := lx.FloorFixed()
	endX := rx.Ceil() - 1

	if curXi >= endX {
		// The whole slanted side fits one pixel column.
		row[curXi] += coverPixel(lx, rx, height, 0).Mul(sign)
		row[curXi] += height.Mul(fixed.One - (rx - curX)).Mul(sign)
		curXi++
	} else {
		dy := height.Div(rx - lx)
		curY := dy.Mul(fixed.One - lx.Frac())
		nextX := curX + fixed.One
		row[curXi] += coverPixel(lx, nextX, curY, 0).Mul(sign)
		curX = nextX
		curXi++
		for curXi < endX && curXi < w {
			nextX = curX + fixed.One
			row[curXi] += coverPixel(curX, nextX, dy, curY).Mul(sign)
			curX = nextX
			curXi++
			curY += dy
		}
		if curXi < w {
			row[curXi] += coverPixel(curX, rx, height-curY, curY).Mul(sign)
			row[curXi] += height.Mul(fixed.One - (rx - curX)).Mul(sign)
			curXi++
		}
	}

	for ; curXi < w; curXi++ {
		row[curXi] += height.Mul(sign)
	}
}

// coverPixel returns the area of a right trapezoid spanning lx..rx: a
// triangle of the given height on top of a rectangle.
func coverPixel(lx, rx, triangleHeight, rectHeight fixed.Int16_16) fixed.Int16_16 {
	return (rx - lx).Mul(triangleHeight/2 + rectHeight)
}
