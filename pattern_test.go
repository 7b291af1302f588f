package stitchgo

import "testing"

func square() []Point {
	return []Point{{0, 0}, {0, 100}, {100, 100}, {100, 0}, {0, 0}}
}

func TestAddBlockCounts(t *testing.T) {
	p := NewPattern()
	p.AddBlock(square(), MustThread("red"))
	if got := p.CountStitchCommands(Stitch); got != 5 {
		t.Fatalf("got %d stitches, want 5", got)
	}
	if got := p.CountThreads(); got != 1 {
		t.Fatalf("got %d threads, want 1", got)
	}
}

func TestPatternCopyIsIndependent(t *testing.T) {
	p := NewPattern()
	p.AddBlock(square(), MustThread("red"))
	cp := p.Copy()
	cp.StitchAbs(999, 999)
	if p.Len() == cp.Len() {
		t.Fatalf("copy shared backing array with original")
	}
}

func TestPatternEqual(t *testing.T) {
	a := NewPattern()
	a.AddBlock(square(), MustThread("red"))
	b := NewPattern()
	b.AddBlock(square(), MustThread("red"))
	if !a.Equal(b) {
		t.Fatalf("equivalent patterns compared unequal")
	}
	b.StitchAbs(1, 1)
	if a.Equal(b) {
		t.Fatalf("differing patterns compared equal")
	}
}

func TestPatternEqualIgnoresThreadMetadata(t *testing.T) {
	a := NewPattern()
	a.AddThread(Thread{R: 255, G: 0, B: 0, Name: "red", Catalog: "1147"})
	b := NewPattern()
	b.AddThread(Thread{R: 255, G: 0, B: 0, Name: "scarlet", Catalog: "1183"})
	if !a.Equal(b) {
		t.Fatalf("patterns with same thread RGB but differing name/catalog compared unequal")
	}
	b.Threadlist[0].B = 1
	if a.Equal(b) {
		t.Fatalf("patterns with differing thread RGB compared equal")
	}
}

func TestPatternMergeDropsInterveningEnd(t *testing.T) {
	a := NewPattern()
	a.StitchAbs(0, 0)
	a.Append(Command{T: End})
	b := NewPattern()
	b.StitchAbs(1, 1)
	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("merge should drop a's END before appending b: got %d commands", a.Len())
	}
	if a.Stitches[1].X != 1 {
		t.Fatalf("merge did not append b's stitches")
	}
}

func TestChecksumStableAndSensitive(t *testing.T) {
	a := NewPattern()
	a.AddBlock(square(), MustThread("red"))
	b := NewPattern()
	b.AddBlock(square(), MustThread("red"))
	if a.Checksum() != b.Checksum() {
		t.Fatalf("equal patterns should checksum equal")
	}
	b.StitchAbs(5, 5)
	if a.Checksum() == b.Checksum() {
		t.Fatalf("differing patterns should checksum differently")
	}
}

func TestStitchRelUsesLastPosition(t *testing.T) {
	p := NewPattern()
	p.StitchAbs(10, 10)
	p.StitchRel(5, -5)
	last := p.Stitches[len(p.Stitches)-1]
	if last.X != 15 || last.Y != 5 {
		t.Fatalf("relative stitch: got (%v,%v), want (15,5)", last.X, last.Y)
	}
}
