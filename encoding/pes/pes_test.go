package pes

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

func TestRoundTripDefaultVersion(t *testing.T) {
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
	if got.Metadata["version"] != DefaultVersion {
		t.Fatalf("version: got %q, want %q", got.Metadata["version"], DefaultVersion)
	}
	if got := len(got.Threadlist); got != 2 {
		t.Fatalf("threadlist length: got %d, want 2", got)
	}
	if got := got.CountColorChanges(); got != 1 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 1", got)
	}
}

func TestSixTVersionPreservesStop(t *testing.T) {
	src := stitchgo.NewPattern()
	square(src)
	src.Stop()
	square(src)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{Version: "6t"}); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := got.CountStitchCommands(stitchgo.Stop); got != 1 {
		t.Fatalf("STOP count under 6t-equivalent version: got %d, want 1", got)
	}
}

func TestRejectsMalformedVersionString(t *testing.T) {
	src := stitchgo.NewPattern()
	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{Version: "bad"}); err == nil {
		t.Fatal("expected error for malformed version string")
	}
}
