package jef

import (
	"bytes"
	"testing"

	"github.com/cpjet64/stitchgo"
)

func square(p *stitchgo.Pattern) {
	for _, pt := range [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}} {
		p.StitchAbs(pt[0], pt[1])
	}
}

func TestRoundTripPreservesThreadCountAndStitches(t *testing.T) {
	src := stitchgo.NewPattern()
	src.AddThread(stitchgo.MustThread("red"))
	square(src)
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	src.AddThread(stitchgo.MustThread("blue"))
	square(src)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(got.Threadlist); got != 2 {
		t.Fatalf("threadlist length: got %d, want 2", got)
	}
	if got := got.CountColorChanges(); got != 1 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 1", got)
	}
	if got := got.CountStitchCommands(stitchgo.Stitch); got != 10 {
		t.Fatalf("STITCH count: got %d, want 10", got)
	}
}

func TestNearestPaletteIndexIsStable(t *testing.T) {
	a := nearestPaletteIndex(stitchgo.MustThread("red"))
	b := nearestPaletteIndex(stitchgo.MustThread("red"))
	if a != b {
		t.Fatalf("palette lookup not deterministic: %d vs %d", a, b)
	}
}
