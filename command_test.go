package stitchgo

import "testing"

func TestTagIsStitchLike(t *testing.T) {
	for _, tag := range []Tag{Stitch, Jump, Move, SequinEject, LongStitch, AlternatingStitch} {
		if !tag.IsStitchLike() {
			t.Errorf("%s: expected stitch-like", tag)
		}
	}
	for _, tag := range []Tag{ColorChange, Stop, End, MatrixReset} {
		if tag.IsStitchLike() {
			t.Errorf("%s: expected not stitch-like", tag)
		}
	}
}

func TestTagIsAuthoringOnly(t *testing.T) {
	for _, tag := range []Tag{MatrixTranslate, MatrixScale, MatrixRotate, MatrixReset, Translate,
		EnableTieOn, EnableTieOff, DisableTieOn, DisableTieOff,
		ContingencyLongStitch, ContingencySequin} {
		if !tag.IsAuthoringOnly() {
			t.Errorf("%s: expected authoring-only", tag)
		}
	}
	for _, tag := range []Tag{Stitch, ColorChange, Stop, End, NeedleSet} {
		if tag.IsAuthoringOnly() {
			t.Errorf("%s: expected not authoring-only", tag)
		}
	}
}

func TestTagStringUnknown(t *testing.T) {
	if got := Tag(200).String(); got == "" {
		t.Fatal("expected non-empty fallback string")
	}
}
