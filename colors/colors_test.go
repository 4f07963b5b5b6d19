// SPDX-License-Identifier: Unlicense OR MIT

package colors

import "testing"

func TestMulRGBIdentity(t *testing.T) {
	for x := 0; x < 256; x++ {
		if got := MulRGB(255, uint8(x)); got != uint8(x) {
			t.Fatalf("MulRGB(255, %d) = %d", x, got)
		}
		if got := MulRGB(uint8(x), 255); got != uint8(x) {
			t.Fatalf("MulRGB(%d, 255) = %d", x, got)
		}
		if got := MulRGB(0, uint8(x)); got != 0 {
			t.Fatalf("MulRGB(0, %d) = %d", x, got)
		}
	}
}

func TestMulRGBExact(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			want := uint8((a*b + 127) / 255)
			if got := MulRGB(uint8(a), uint8(b)); got != want {
				t.Fatalf("MulRGB(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestPremultiplyOpaqueIdentity(t *testing.T) {
	c := BGRA{B: 12, G: 200, R: 91, A: 255}
	p := c.Premultiply()
	if p.B != c.B || p.G != c.G || p.R != c.R || p.A != 255 {
		t.Errorf("premultiply changed an opaque color: %+v", p)
	}
}

func TestUnpremultiplyRoundTrip(t *testing.T) {
	for _, a := range []uint8{1, 3, 64, 128, 200, 255} {
		c := BGRA{B: 40, G: 90, R: 180, A: a}
		back := c.Premultiply().Unpremultiply()
		if back.A != a {
			t.Fatalf("alpha changed: %d -> %d", a, back.A)
		}
		within := func(x, y uint8) bool {
			d := int(x) - int(y)
			if d < 0 {
				d = -d
			}
			// One quantization step of 255/a per channel.
			return d <= int(255/int(a))+1
		}
		if !within(back.B, c.B) || !within(back.G, c.G) || !within(back.R, c.R) {
			t.Errorf("round-trip alpha=%d: %+v -> %+v", a, c, back)
		}
	}
}

func TestOver(t *testing.T) {
	opaque := BGRA{B: 10, G: 20, R: 30, A: 255}.Premultiply()
	under := BGRA{B: 200, G: 200, R: 200, A: 255}.Premultiply()
	if got := opaque.Over(under); got != opaque {
		t.Errorf("opaque over = %+v, want %+v", got, opaque)
	}
	clear := Premultiplied{}
	if got := clear.Over(under); got != under {
		t.Errorf("transparent over = %+v, want %+v", got, under)
	}
	// Green with alpha 150 over opaque blue, the scenario from the
	// rectangle compositing suite.
	green := BGRA{G: 255, A: 150}.Premultiply()
	blue := BGRA{B: 255, A: 255}.Premultiply()
	got := green.Over(blue)
	if got.A != 255 {
		t.Errorf("alpha = %d, want 255", got.A)
	}
	if got.G != green.G {
		t.Errorf("green channel = %d, want %d", got.G, green.G)
	}
	wantB := MulRGB(255-150, 255)
	if got.B != wantB {
		t.Errorf("blue channel = %d, want %d", got.B, wantB)
	}
}

func TestRGBA32RoundTrip(t *testing.T) {
	c := FromRGBA32(0x11223344)
	if c.R != 0x11 || c.G != 0x22 || c.B != 0x33 || c.A != 0x44 {
		t.Errorf("FromRGBA32 = %+v", c)
	}
	if c.ToRGBA32() != 0x11223344 {
		t.Errorf("round trip = %08x", c.ToRGBA32())
	}
}
