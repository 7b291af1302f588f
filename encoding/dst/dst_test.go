package dst

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cpjet64/stitchgo"
)

func square(p *stitchgo.Pattern) {
	for _, pt := range [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}} {
		p.StitchAbs(pt[0], pt[1])
	}
}

// A 16-color x 5-stitch pattern round trips through DST with an empty
// threadlist, 15 COLOR_CHANGE, 80 STITCH, and identical first/last
// stitch positions.
func TestRoundTripSixteenColors(t *testing.T) {
	src := stitchgo.NewPattern()
	for i := 0; i < 16; i++ {
		if i > 0 {
			src.Append(stitchgo.Command{T: stitchgo.ColorBreak})
		}
		src.AddThread(stitchgo.MustThread("red"))
		square(src)
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, stitchgo.Options{}))

	got, err := Read(&buf, stitchgo.Options{})
	require.NoError(t, err)
	require.Empty(t, got.Threadlist, "DST carries no palette")
	require.Equal(t, 15, got.CountColorChanges())
	require.Equal(t, 80, got.CountStitchCommands(stitchgo.Stitch))

	first := got.Stitches[0]
	var last stitchgo.Command
	for _, c := range got.Stitches {
		if c.T.IsStitchLike() {
			last = c
		}
	}
	require.Equal(t, first.X, last.X)
	require.Equal(t, first.Y, last.Y)
}

func TestHeaderRoundTripsMetadata(t *testing.T) {
	src := stitchgo.NewPattern()
	src.Metadata["LA"] = "sample"
	src.StitchAbs(1, 1)

	var buf bytes.Buffer
	if err := Write(&buf, src, stitchgo.Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() < headerSize {
		t.Fatalf("output shorter than header: %d bytes", buf.Len())
	}
	got, err := Read(bytes.NewReader(buf.Bytes()), stitchgo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["LA"] != "sample" {
		t.Fatalf("LA metadata: got %q, want %q", got.Metadata["LA"], "sample")
	}
}

// Options.MaxStitch overrides Profile's default max stitch length on a
// single Write call, without touching any other DST pattern.
func TestWriteOptionsOverrideMaxStitch(t *testing.T) {
	src := stitchgo.NewPattern()
	src.AddThread(stitchgo.MustThread("red"))
	src.StitchAbs(100, 0)

	var defaultBuf bytes.Buffer
	require.NoError(t, Write(&defaultBuf, src, stitchgo.Options{}))
	defaultGot, err := Read(&defaultBuf, stitchgo.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, defaultGot.CountStitchCommands(stitchgo.Stitch),
		"a 100-unit stitch fits in one record at the default max_stitch")

	maxStitch := 10.0
	var overrideBuf bytes.Buffer
	require.NoError(t, Write(&overrideBuf, src, stitchgo.Options{MaxStitch: &maxStitch}))
	overrideGot, err := Read(&overrideBuf, stitchgo.Options{})
	require.NoError(t, err)
	records := overrideGot.CountStitchCommands(stitchgo.Stitch) + overrideGot.CountStitchCommands(stitchgo.Jump)
	require.Greater(t, records, 1,
		"a 100-unit stitch must split into multiple records once max_stitch is overridden to 10")
}

func TestShortHeaderErrors(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 10)), stitchgo.Options{})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}
