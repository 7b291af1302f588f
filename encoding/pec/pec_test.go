package pec

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/cpjet64/stitchgo"
)

func square(p *stitchgo.Pattern) {
	for _, pt := range [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}} {
		p.StitchAbs(pt[0], pt[1])
	}
}

func TestRoundTripShortForm(t *testing.T) {
	src := stitchgo.NewPattern()
	square(src)
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	square(src)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := got.CountColorChanges(); got != 1 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 1", got)
	}
	if got := got.CountStitchCommands(stitchgo.Stitch); got != 10 {
		t.Fatalf("STITCH count: got %d, want 10", got)
	}
}

func TestRoundTripLongExtensionForm(t *testing.T) {
	src := stitchgo.NewPattern()
	src.StitchAbs(0, 0)
	src.StitchAbs(500, -500)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	last := got.Stitches[len(got.Stitches)-2]
	if last.X != 500 || last.Y != -500 {
		t.Fatalf("final stitch: got (%v,%v), want (500,-500)", last.X, last.Y)
	}
}

func TestAxisEncodeDecodeRoundTripsNegativeShortForm(t *testing.T) {
	for _, v := range []float64{-64, -1, 0, 1, 63} {
		b, err := encodeAxis(v)
		if err != nil {
			t.Fatal(err)
		}
		br := bufio.NewReader(bytes.NewReader(b[1:]))
		got, err := decodeAxis(br, b[0])
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("axis %v: round trip got %v", v, got)
		}
	}
}
