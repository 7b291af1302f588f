package transcode

import (
	"testing"

	"github.com/cpjet64/stitchgo"
)

func addSquare(p *stitchgo.Pattern) {
	for _, pt := range [][2]float64{{0, 0}, {0, 100}, {100, 100}, {100, 0}, {0, 0}} {
		p.StitchAbs(pt[0], pt[1])
	}
}

// Leading/trailing COLOR_BREAK runs around a single square absorb
// entirely: they never materialize a COLOR_CHANGE of their own.
func TestTranscodeBookendAbsorption(t *testing.T) {
	src := stitchgo.NewPattern()
	for i := 0; i < 4; i++ {
		src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	}
	addSquare(src)
	src.AddThread(stitchgo.MustThread("red"))
	for i := 0; i < 4; i++ {
		src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	}

	out, err := Transcode(src, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(out.Threadlist); got != 1 {
		t.Fatalf("threadlist length: got %d, want 1", got)
	}
	if got := out.CountColorChanges(); got != 0 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 0", got)
	}
}

// Two squares, two thread declarations, with a run of four internal
// COLOR_BREAKs between the two squares -- each internal
// break materializes independently (they are not bookends, since
// stitches occur both before the whole run and after it).
func TestTranscodeMultipleInternalBreaks(t *testing.T) {
	src := stitchgo.NewPattern()
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	addSquare(src)
	src.AddThread(stitchgo.MustThread("red"))
	for i := 0; i < 4; i++ {
		src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	}
	addSquare(src)
	src.AddThread(stitchgo.MustThread("green"))
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})

	out, err := Transcode(src, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	if got := out.CountColorChanges(); got != 4 {
		t.Fatalf("COLOR_CHANGE count: got %d, want 4", got)
	}
	if got := len(out.Threadlist); got != 5 {
		t.Fatalf("threadlist length: got %d, want 5", got)
	}
}

// NEEDLE_SET mode emits one NEEDLE_SET per section, including the
// first, so its count matches the threadlist length exactly rather
// than length-1.
func TestTranscodeNeedleSetProfile(t *testing.T) {
	src := stitchgo.NewPattern()
	src.AddThread(stitchgo.MustThread("red"))
	addSquare(src)
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	src.AddThread(stitchgo.MustThread("green"))
	addSquare(src)
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	src.AddThread(stitchgo.MustThread("blue"))
	addSquare(src)

	profile := DefaultProfile()
	profile.ThreadChangeCommand = ThreadChangeNeedleSet
	out, err := Transcode(src, profile)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.CountStitchCommands(stitchgo.NeedleSet), len(out.Threadlist); got != want {
		t.Fatalf("NEEDLE_SET count %d != threadlist length %d", got, want)
	}
}

func TestTranscodeSplitsLongStitches(t *testing.T) {
	src := stitchgo.NewPattern()
	src.StitchAbs(0, 0)
	src.StitchAbs(300, 0)

	profile := DefaultProfile()
	profile.MaxStitch = 100
	out, err := Transcode(src, profile)
	if err != nil {
		t.Fatal(err)
	}
	n := out.CountStitchCommands(stitchgo.Stitch)
	if n < 3 {
		t.Fatalf("expected at least 3 stitches after splitting a 300-unit run at max 100, got %d", n)
	}
	last := out.Stitches[len(out.Stitches)-2] // before terminal END
	if last.X != 300 || last.Y != 0 {
		t.Fatalf("split run did not end at target: got (%v,%v)", last.X, last.Y)
	}
}

func TestTranscodeFullJumpSplitsIntoMaxSizedSteps(t *testing.T) {
	src := stitchgo.NewPattern()
	src.Append(stitchgo.Command{X: 0, Y: 0, T: stitchgo.Jump})
	src.Append(stitchgo.Command{X: 970, Y: 0, T: stitchgo.Jump})

	profile := DefaultProfile()
	profile.MaxJump = 100
	profile.FullJump = true
	out, err := Transcode(src, profile)
	if err != nil {
		t.Fatal(err)
	}
	var prevX float64
	for _, c := range out.Stitches {
		if c.T != stitchgo.Jump {
			continue
		}
		d := c.X - prevX
		if d > profile.MaxJump+1e-9 {
			t.Fatalf("jump step %v exceeds MaxJump %v", d, profile.MaxJump)
		}
		prevX = c.X
	}
	if prevX != 970 {
		t.Fatalf("final jump position: got %v, want 970", prevX)
	}
}

func TestTranscodeDropsAuthoringOnlyTags(t *testing.T) {
	src := stitchgo.NewPattern()
	src.Append(stitchgo.Command{T: stitchgo.MatrixRotate, X: 45})
	src.StitchAbs(10, 0)
	out, err := Transcode(src, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range out.Stitches {
		if c.T.IsAuthoringOnly() {
			t.Fatalf("authoring-only tag %s leaked into transcoded output", c.T)
		}
	}
}

func TestTranscodeToSelfIsIdempotent(t *testing.T) {
	src := stitchgo.NewPattern()
	src.AddThread(stitchgo.MustThread("red"))
	addSquare(src)
	src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
	src.AddThread(stitchgo.MustThread("blue"))
	addSquare(src)

	once, err := Transcode(src, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	if once.Len() == 0 {
		t.Fatal("transcode produced an empty pattern")
	}
	twice, err := Transcode(once, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	if !once.Equal(twice) {
		t.Fatalf("transcoding a normalized pattern again changed it")
	}
}

func TestMatrixRotateComposesAcrossTwoCommands(t *testing.T) {
	src := stitchgo.NewPattern()
	src.Append(stitchgo.Command{T: stitchgo.MatrixRotate, X: 45})
	src.Append(stitchgo.Command{T: stitchgo.MatrixRotate, X: 45})
	src.StitchAbs(100, 0)

	out, err := Transcode(src, DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	// two 45 degree rotations about the origin compose to 90 degrees:
	// (100,0) -> (0,100).
	got := out.Stitches[0]
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 100) {
		t.Fatalf("composed rotation: got (%v,%v), want (0,100)", got.X, got.Y)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}
