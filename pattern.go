package stitchgo

import (
	"encoding/binary"
	"math"

	"blainsmith.com/go/seahash"
)

// Pattern is an ordered sequence of commands, an ordered list of threads, a
// mapping of string-keyed metadata, and a list of auxiliary extras (unknown
// blobs preserved from a read). The stitch sequence is append-only during
// authoring -- Transcode produces a new, independently-owned Pattern rather
// than mutating its input.
type Pattern struct {
	Stitches   []Command
	Threadlist []Thread
	Metadata   map[string]string
	Extras     [][]byte

	x, y float64 // last authored position, for the *Rel family of calls.
}

// NewPattern returns an empty Pattern ready for authoring.
func NewPattern() *Pattern {
	return &Pattern{Metadata: make(map[string]string)}
}

// Append adds a raw command to the stitch stream and, if it carries a
// position, updates the pattern's notion of "current position" for the next
// *Rel call.
func (p *Pattern) Append(cmd Command) {
	p.Stitches = append(p.Stitches, cmd)
	if cmd.T.IsStitchLike() {
		p.x, p.y = cmd.X, cmd.Y
	}
}

// StitchAbs appends a STITCH at an absolute position.
func (p *Pattern) StitchAbs(x, y float64) {
	p.Append(Command{X: x, Y: y, T: Stitch})
}

// StitchRel appends a STITCH offset from the current position.
func (p *Pattern) StitchRel(dx, dy float64) {
	p.StitchAbs(p.x+dx, p.y+dy)
}

// MoveAbs appends a MOVE (needle-up travel) at an absolute position.
func (p *Pattern) MoveAbs(x, y float64) {
	p.Append(Command{X: x, Y: y, T: Move})
}

// MoveRel appends a MOVE offset from the current position.
func (p *Pattern) MoveRel(dx, dy float64) {
	p.MoveAbs(p.x+dx, p.y+dy)
}

// JumpAbs appends a JUMP at an absolute position.
func (p *Pattern) JumpAbs(x, y float64) {
	p.Append(Command{X: x, Y: y, T: Jump})
}

// JumpRel appends a JUMP offset from the current position.
func (p *Pattern) JumpRel(dx, dy float64) {
	p.JumpAbs(p.x+dx, p.y+dy)
}

// Stop appends a STOP command at the current position.
func (p *Pattern) Stop() {
	p.Append(Command{X: p.x, Y: p.y, T: Stop})
}

// AddThread appends t to the threadlist.
func (p *Pattern) AddThread(t Thread) {
	p.Threadlist = append(p.Threadlist, t)
}

// AddColor is a convenience wrapper that parses a name or hex string via
// NewThread and appends it to the threadlist. It panics on a malformed
// color, matching the "authors spell colors right or fail loudly at
// authoring time" posture of the rest of this API.
func (p *Pattern) AddColor(nameOrHex string) {
	p.AddThread(MustThread(nameOrHex))
}

// AddBlock emits a COLOR_BREAK, appends thread to the threadlist, then
// stitches each point in order. This is the one-call convenience form of
// "start a new color section."
func (p *Pattern) AddBlock(points []Point, thread Thread) {
	p.Append(Command{T: ColorBreak})
	p.AddThread(thread)
	for _, pt := range points {
		p.StitchAbs(pt.X, pt.Y)
	}
}

// CountStitchCommands returns the number of commands in the stream tagged
// tag.
func (p *Pattern) CountStitchCommands(tag Tag) int {
	n := 0
	for _, c := range p.Stitches {
		if c.T == tag {
			n++
		}
	}
	return n
}

// CountThreads returns the number of entries in the threadlist.
func (p *Pattern) CountThreads() int {
	return len(p.Threadlist)
}

// CountColorChanges returns the number of COLOR_CHANGE commands in the
// stream.
func (p *Pattern) CountColorChanges() int {
	return p.CountStitchCommands(ColorChange)
}

// Len returns the number of commands in the stitch stream.
func (p *Pattern) Len() int {
	return len(p.Stitches)
}

// Copy returns a deep copy of p.
func (p *Pattern) Copy() *Pattern {
	cp := &Pattern{
		Stitches:   append([]Command(nil), p.Stitches...),
		Threadlist: append([]Thread(nil), p.Threadlist...),
		Metadata:   make(map[string]string, len(p.Metadata)),
		x:          p.x,
		y:          p.y,
	}
	for _, extra := range p.Extras {
		cp.Extras = append(cp.Extras, append([]byte(nil), extra...))
	}
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return cp
}

// Merge appends other's stitches and threads onto p, in place, and returns
// p. If p's stitch stream ends in an END command, that END is dropped
// before the concatenation, so the merged stream ends in END exactly when
// other's does.
func (p *Pattern) Merge(other *Pattern) *Pattern {
	if n := len(p.Stitches); n > 0 && p.Stitches[n-1].T == End {
		p.Stitches = p.Stitches[:n-1]
	}
	p.Stitches = append(p.Stitches, other.Stitches...)
	p.Threadlist = append(p.Threadlist, other.Threadlist...)
	if len(other.Stitches) > 0 {
		last := other.Stitches[len(other.Stitches)-1]
		if last.T.IsStitchLike() {
			p.x, p.y = last.X, last.Y
		}
	}
	return p
}

// Equal reports whether p and other have identical stitch streams,
// threadlists, and metadata. Identity is ignored: two independently built
// patterns with the same content compare equal.
func (p *Pattern) Equal(other *Pattern) bool {
	if other == nil {
		return false
	}
	if len(p.Stitches) != len(other.Stitches) {
		return false
	}
	for i, c := range p.Stitches {
		if c != other.Stitches[i] {
			return false
		}
	}
	if len(p.Threadlist) != len(other.Threadlist) {
		return false
	}
	for i, t := range p.Threadlist {
		if !t.Equal(other.Threadlist[i]) {
			return false
		}
	}
	if len(p.Metadata) != len(other.Metadata) {
		return false
	}
	for k, v := range p.Metadata {
		if other.Metadata[k] != v {
			return false
		}
	}
	return true
}

// Checksum returns a content hash of the pattern's stitches, threadlist,
// and metadata, suitable for cheap equality pre-checks and round-trip
// comparisons across a write/read cycle. It does not claim cryptographic
// properties.
func (p *Pattern) Checksum() uint64 {
	h := seahash.New()
	var buf [17]byte
	for _, c := range p.Stitches {
		binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(c.X))
		binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(c.Y))
		buf[16] = byte(c.T)
		_, _ = h.Write(buf[:])
	}
	for _, t := range p.Threadlist {
		_, _ = h.Write([]byte{t.R, t.G, t.B})
	}
	keys := sortedMetadataKeys(p.Metadata)
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte(p.Metadata[k]))
	}
	return h.Sum64()
}
