package exp

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

func TestRoundTripWithColorChangesAndJumps(t *testing.T) {
	src := stitchgo.NewPattern()
	src.AddThread(stitchgo.MustThread("red"))
	square(src)
	src.MoveAbs(50, 50)
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
	if got := len(got.Threadlist); got != 0 {
		t.Fatalf("threadlist length: got %d, want 0", got)
	}
	if got := got.CountColorChanges(); got != 1 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 1", got)
	}
	if got := got.CountStitchCommands(stitchgo.Jump); got != 1 {
		t.Fatalf("JUMP count: got %d, want 1", got)
	}
	if got := got.CountStitchCommands(stitchgo.Stitch); got != 10 {
		t.Fatalf("STITCH count: got %d, want 10", got)
	}
}

func TestLongStitchIsSplitUnderMaxDelta(t *testing.T) {
	src := stitchgo.NewPattern()
	src.StitchAbs(0, 0)
	src.StitchAbs(300, 0)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := got.CountStitchCommands(stitchgo.Stitch); n < 3 {
		t.Fatalf("expected the 300-unit run split into at least 3 stitches, got %d", n)
	}
}
