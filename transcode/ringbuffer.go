package transcode

import (
	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/circular"
)

// commandRing is a growable circular queue of commands, used by
// InterpolateFrameEject to hold the pending leading JUMP/MOVE run while it
// scans forward for the matching trailing run, without reslicing the
// stitch list on every push. Capacity growth reuses circular.NextExp2
// to pick the next power-of-two size.
type commandRing struct {
	buf  []stitchgo.Command
	head int
	n    int
}

func newCommandRing() *commandRing {
	return &commandRing{buf: make([]stitchgo.Command, 4)}
}

func (r *commandRing) Len() int { return r.n }

func (r *commandRing) Reset() { r.head, r.n = 0, 0 }

func (r *commandRing) Push(c stitchgo.Command) {
	if r.n == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.n)%len(r.buf)] = c
	r.n++
}

func (r *commandRing) At(i int) stitchgo.Command {
	return r.buf[(r.head+i)%len(r.buf)]
}

func (r *commandRing) grow() {
	next := make([]stitchgo.Command, circular.NextExp2(len(r.buf)))
	for i := 0; i < r.n; i++ {
		next[i] = r.At(i)
	}
	r.buf = next
	r.head = 0
}
