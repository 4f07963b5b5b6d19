// SPDX-License-Identifier: Unlicense OR MIT

package fixed

import (
	"testing"

	xfixed "golang.org/x/image/math/fixed"
)

func TestArithmetic(t *testing.T) {
	a := I(3)
	b := I(2)
	if got := a.Mul(b); got != I(6) {
		t.Errorf("3*2 = %v, want %v", got, I(6))
	}
	if got := a.Div(b); got != One+One/2 {
		t.Errorf("3/2 = %v, want 1.5", got)
	}
	half := One / 2
	if got := half.Mul(half); got != One/4 {
		t.Errorf("0.5*0.5 = %v, want 0.25", got)
	}
	neg := FromFloat32(-2.5)
	if got := neg.Mul(I(2)); got != FromFloat32(-5) {
		t.Errorf("-2.5*2 = %v, want -5", got)
	}
}

func TestMulWidens(t *testing.T) {
	// 181 * 181 overflows the raw i32 product of the operands; the
	// widened intermediate must not.
	a := I(181)
	if got := a.Mul(a); got != I(181*181) {
		t.Errorf("181² = %v, want %v", got, I(181*181))
	}
}

func TestRounding(t *testing.T) {
	cases := []struct {
		v                  float32
		floor, round, ceil int
	}{
		{0, 0, 0, 0},
		{0.25, 0, 0, 1},
		{0.5, 0, 1, 1},
		{0.75, 0, 1, 1},
		{1, 1, 1, 1},
		{-0.25, -1, 0, 0},
		{-0.75, -1, -1, 0},
		{-1, -1, -1, -1},
	}
	for _, c := range cases {
		v := FromFloat32(c.v)
		if got := v.Floor(); got != c.floor {
			t.Errorf("Floor(%v) = %d, want %d", c.v, got, c.floor)
		}
		if got := v.Round(); got != c.round {
			t.Errorf("Round(%v) = %d, want %d", c.v, got, c.round)
		}
		if got := v.Ceil(); got != c.ceil {
			t.Errorf("Ceil(%v) = %d, want %d", c.v, got, c.ceil)
		}
	}
}

func TestFrac(t *testing.T) {
	v := FromFloat32(-1.25)
	if got := v.Frac(); got != FromFloat32(0.75) {
		t.Errorf("Frac(-1.25) = %v, want 0.75", got)
	}
	if got := v.FloorFixed(); got != I(-2) {
		t.Errorf("FloorFixed(-1.25) = %v, want -2", got)
	}
}

func TestConversions(t *testing.T) {
	if got := From26_6(xfixed.I(3)); got != I(3) {
		t.Errorf("From26_6(3) = %v", got)
	}
	if got := I(3).To26_6(); got != xfixed.I(3) {
		t.Errorf("To26_6(3) = %v", got)
	}
	if got := FromQuotient(1, 2); got != One/2 {
		t.Errorf("FromQuotient(1,2) = %v", got)
	}
	if got := FromFloat32(1.5).Float32(); got != 1.5 {
		t.Errorf("round-trip 1.5 = %v", got)
	}
	// Integer equality is exact.
	if To26_6(2.0) != xfixed.I(2) {
		t.Error("To26_6(2.0) not exact")
	}
}
