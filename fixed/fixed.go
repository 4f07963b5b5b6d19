// SPDX-License-Identifier: Unlicense OR MIT

// Package fixed implements the 16.16 signed fixed-point arithmetic used for
// subpixel pixel coordinates and font variation values.
//
// Layout-space lengths use golang.org/x/image/math/fixed.Int26_6 instead;
// this package provides the conversions between the two scales. Conversions
// are always explicit, there is no implicit rescaling anywhere.
package fixed

import (
	xfixed "golang.org/x/image/math/fixed"
)

// Int16_16 is a signed 16.16 fixed-point number.
//
// The integer part ranges over [-32768, 32767] and the fractional part has
// 16 bits of precision. Multiplication widens to int64 internally, so no
// intermediate overflow can occur for in-range operands.
type Int16_16 int32

// One is the Int16_16 value 1.
const One Int16_16 = 1 << 16

// I returns the Int16_16 value for i.
func I(i int) Int16_16 {
	return Int16_16(i << 16)
}

// FromFloat32 returns the Int16_16 value nearest to x.
func FromFloat32(x float32) Int16_16 {
	if x >= 0 {
		return Int16_16(x*65536 + 0.5)
	}
	return Int16_16(x*65536 - 0.5)
}

// FromQuotient returns the Int16_16 value of num/den without going through
// floating point.
func FromQuotient(num, den int32) Int16_16 {
	return Int16_16((int64(num) << 16) / int64(den))
}

// From26_6 converts a 26.6 value to 16.16. The ten extra fractional bits are
// zero filled.
func From26_6(x xfixed.Int26_6) Int16_16 {
	return Int16_16(x) << 10
}

// To26_6 converts x to 26.6, truncating the ten lowest fractional bits.
func (x Int16_16) To26_6() xfixed.Int26_6 {
	return xfixed.Int26_6(x >> 10)
}

// Mul returns x*y, computed with an int64 intermediate and rounded to
// nearest.
func (x Int16_16) Mul(y Int16_16) Int16_16 {
	return Int16_16((int64(x)*int64(y) + 1<<15) >> 16)
}

// Div returns x/y with the dividend widened to int64 before the shift.
func (x Int16_16) Div(y Int16_16) Int16_16 {
	return Int16_16((int64(x) << 16) / int64(y))
}

// Floor returns the greatest integer value less than or equal to x.
func (x Int16_16) Floor() int {
	return int(x >> 16)
}

// Round returns the nearest integer value to x. Ties round up.
func (x Int16_16) Round() int {
	return int(x+1<<15) >> 16
}

// Ceil returns the least integer value greater than or equal to x.
func (x Int16_16) Ceil() int {
	return int(x+(One-1)) >> 16
}

// FloorFixed returns x rounded down to an integer, as an Int16_16.
func (x Int16_16) FloorFixed() Int16_16 {
	return x &^ (One - 1)
}

// Frac returns the non-negative fractional part of x.
func (x Int16_16) Frac() Int16_16 {
	return x & (One - 1)
}

// Float32 returns the float32 value nearest to x.
func (x Int16_16) Float32() float32 {
	return float32(x) / 65536
}

// Abs returns the absolute value of x.
func (x Int16_16) Abs() Int16_16 {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of x and y.
func (x Int16_16) Min(y Int16_16) Int16_16 {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x and y.
func (x Int16_16) Max(y Int16_16) Int16_16 {
	if x > y {
		return x
	}
	return y
}

// A Point16_16 is a 16.16 fixed-point coordinate pair.
type Point16_16 struct {
	X, Y Int16_16
}

// P returns the Point16_16 for the integer pair (x, y).
func P(x, y int) Point16_16 {
	return Point16_16{I(x), I(y)}
}

// Add returns the vector p+q.
func (p Point16_16) Add(q Point16_16) Point16_16 {
	return Point16_16{p.X + q.X, p.Y + q.Y}
}

// Sub returns the vector p-q.
func (p Point16_16) Sub(q Point16_16) Point16_16 {
	return Point16_16{p.X - q.X, p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point16_16) Mul(s Int16_16) Point16_16 {
	return Point16_16{p.X.Mul(s), p.Y.Mul(s)}
}

// Floor26_6 returns the greatest integer value less than or equal to x.
func Floor26_6(x xfixed.Int26_6) int {
	return int(x >> 6)
}

// Ceil26_6 returns the least integer value greater than or equal to x.
func Ceil26_6(x xfixed.Int26_6) int {
	return int(x+63) >> 6
}

// Frac26_6 returns the non-negative fractional part of x.
func Frac26_6(x xfixed.Int26_6) xfixed.Int26_6 {
	return x & 63
}

// From26_6Float returns the float32 value nearest to x.
func From26_6Float(x xfixed.Int26_6) float32 {
	return float32(x) / 64
}

// To26_6 returns the 26.6 value nearest to x.
func To26_6(x float32) xfixed.Int26_6 {
	if x >= 0 {
		return xfixed.Int26_6(x*64 + 0.5)
	}
	return xfixed.Int26_6(x*64 - 0.5)
}
