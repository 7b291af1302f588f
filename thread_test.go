package stitchgo

import "testing"

func TestNewThreadNamedColor(t *testing.T) {
	th, err := NewThread("Red")
	if err != nil {
		t.Fatal(err)
	}
	if th.R != 255 || th.G != 0 || th.B != 0 {
		t.Fatalf("red: got %+v", th)
	}
}

func TestNewThreadHex(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b uint8
	}{
		{"#FF8000", 0xFF, 0x80, 0x00},
		{"FF8000", 0xFF, 0x80, 0x00},
		{"#F80", 0xFF, 0x88, 0x00},
	}
	for _, c := range cases {
		th, err := NewThread(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if th.R != c.r || th.G != c.g || th.B != c.b {
			t.Fatalf("%s: got #%02X%02X%02X, want #%02X%02X%02X", c.in, th.R, th.G, th.B, c.r, c.g, c.b)
		}
	}
}

func TestNewThreadInvalid(t *testing.T) {
	if _, err := NewThread("not-a-color"); err == nil {
		t.Fatal("expected error for malformed color")
	}
}

func TestThreadEqualIgnoresMetadata(t *testing.T) {
	a := MustThread("red")
	b := Thread{R: 255, G: 0, B: 0, Name: "custom"}
	if !a.Equal(b) {
		t.Fatalf("threads with same RGB should be equal regardless of name")
	}
}

func TestMustThreadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustThread("nope")
}
