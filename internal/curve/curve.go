// SPDX-License-Identifier: Unlicense OR MIT

// Package curve evaluates and flattens quadratic and cubic Bézier curves.
//
// Quadratics are flattened with the scheme described in
// https://raphlinus.github.io/graphics/curves/2019/12/23/flatten-quadbez.html:
// the curve is mapped onto a segment of y=x² and subdivision points are
// chosen by inverting an approximate arc-length integral. Cubics are split
// into quadratics first.
package curve

import (
	"github.com/chewxy/math32"

	"overtide.org/f32"
)

// Quadratic is a quadratic Bézier: start, control, end.
type Quadratic [3]f32.Point

// Cubic is a cubic Bézier: start, two controls, end.
type Cubic [4]f32.Point

// Eval returns the curve position at t by De Casteljau.
func (q Quadratic) Eval(t float32) f32.Point {
	ab := lerp(t, q[0], q[1])
	bc := lerp(t, q[1], q[2])
	return lerp(t, ab, bc)
}

// Eval returns the curve position at t by De Casteljau.
func (c Cubic) Eval(t float32) f32.Point {
	ab := lerp(t, c[0], c[1])
	bc := lerp(t, c[1], c[2])
	cd := lerp(t, c[2], c[3])
	abc := lerp(t, ab, bc)
	bcd := lerp(t, bc, cd)
	return lerp(t, abc, bcd)
}

// Subcurve returns the section of c between t0 and t1 as its own cubic.
func (c Cubic) Subcurve(t0, t1 float32) Cubic {
	d01 := c[1].Sub(c[0])
	d12 := c[2].Sub(c[1])
	d23 := c[3].Sub(c[2])

	dt := t1 - t0
	p0 := c.Eval(t0)
	p3 := c.Eval(t1)
	deriv0 := lerp(t0, lerp(t0, d01, d12), lerp(t0, d12, d23))
	deriv1 := lerp(t1, lerp(t1, d01, d12), lerp(t1, d12, d23))
	p1 := p0.Add(deriv0.Mul(dt))
	p2 := p3.Sub(deriv1.Mul(dt))
	return Cubic{p0, p1, p2, p3}
}

func lerp(t float32, p, q f32.Point) f32.Point {
	return f32.Point{
		X: p.X + t*(q.X-p.X),
		Y: p.Y + t*(q.Y-p.Y),
	}
}

// basic is a quadratic mapped to a scaled, translated and rotated segment of
// y=x².
type basic struct {
	x0, x2 float32
	scale  float32
}

func mapToBasic(a, b, c f32.Point) basic {
	// (b - a) + (b - c)
	dd := b.Mul(2).Sub(a).Sub(c)
	u0 := (b.X-a.X)*dd.X + (b.Y-a.Y)*dd.Y
	u2 := (c.X-b.X)*dd.X + (c.Y-b.Y)*dd.Y
	cross := (c.X-a.X)*dd.Y - (c.Y-a.Y)*dd.X
	x0 := u0 / cross
	x2 := u2 / cross
	scale := math32.Abs(cross) / (math32.Hypot(dd.X, dd.Y) * math32.Abs(x2-x0))
	return basic{x0: x0, x2: x2, scale: scale}
}

// approxSegmentsIntegral approximates integral((1 + 4x²)^-0.25).
func approxSegmentsIntegral(x float32) float32 {
	const d = 0.67
	return x / (1 - d + math32.Sqrt(math32.Sqrt(d*d*d*d+0.25*x*x)))
}

func approxInvSegmentsIntegral(x float32) float32 {
	const b = 0.39
	return x * (1 - b + math32.Sqrt(b*b+0.25*x*x))
}

// FlattenQuadratic appends to dst the polyline points approximating q within
// tolerance, excluding the start point and including the end point.
func FlattenQuadratic(dst []f32.Point, q Quadratic, tolerance float32) []f32.Point {
	bsc := mapToBasic(q[0], q[1], q[2])
	a0 := approxSegmentsIntegral(bsc.x0)
	a2 := approxSegmentsIntegral(bsc.x2)
	count := math32.Ceil(0.5 * math32.Abs(a2-a0) * math32.Sqrt(bsc.scale/tolerance))
	if !(count >= 1) {
		// Degenerate (collinear or zero-length) curves flatten to a line;
		// the comparison also rejects NaN.
		return append(dst, q[2])
	}
	if count > 1<<12 {
		// Near-degenerate control points can blow the estimate up; cap the
		// subdivision rather than trust an infinite integral.
		count = 1 << 12
	}
	x0 := approxInvSegmentsIntegral(a0)
	x2 := approxInvSegmentsIntegral(a2)
	n := uint32(count)
	for i := uint32(1); i < n; i++ {
		x := approxInvSegmentsIntegral(a0 + (a2-a0)*float32(i)/count)
		t := (x - x0) / (x2 - x0)
		dst = append(dst, q.Eval(t))
	}
	return append(dst, q[2])
}

func naiveCubicToQuadratic(c Cubic) Quadratic {
	c12 := c[1].Mul(3).Sub(c[0])
	c22 := c[2].Mul(3).Sub(c[3])
	return Quadratic{c[0], c12.Add(c22).Mul(0.25), c[3]}
}

func quadraticCountForCubic(c Cubic, tolerance float32) float32 {
	p := c[0].Sub(c[1].Mul(3)).Add(c[2].Mul(3)).Sub(c[3])
	err := p.Dot(p)
	n := math32.Ceil(math32.Pow(err/(432*tolerance*tolerance), 1.0/6.0))
	return math32.Max(n, 1)
}

// FlattenCubic appends to dst the polyline points approximating c within
// tolerance, excluding the start point and including the end point.
func FlattenCubic(dst []f32.Point, c Cubic, tolerance float32) []f32.Point {
	count := quadraticCountForCubic(c, tolerance)
	step := 1 / count
	t := float32(0)
	for i := uint32(0); i < uint32(count); i++ {
		tnext := t + step
		q := naiveCubicToQuadratic(c.Subcurve(t, tnext))
		dst = FlattenQuadratic(dst, q, tolerance)
		t = tnext
	}
	return dst
}
