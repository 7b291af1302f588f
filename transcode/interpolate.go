package transcode

import (
	"math"

	"github.com/cpjet64/stitchgo"
)

// isBoundaryTag reports whether t marks a color-section boundary for the
// purposes of threadlist reconciliation. COLOR_BREAK (authoring-only) and
// COLOR_CHANGE (machine-level) are treated identically here: both mean
// "a new color section starts here."
func isBoundaryTag(t stitchgo.Tag) bool {
	return t == stitchgo.ColorChange || t == stitchgo.ColorBreak
}

// goldenRatioConjugate steps hue around the color wheel so successive
// padding threads are visually distinct instead of clustering, the same
// trick used for auto-generated category-10-style palettes.
const goldenRatioConjugate = 0.618033988749895

// paletteThread returns a deterministic, visually spread pseudo-random
// thread for index i, used to pad a short threadlist. It is not
// cryptographic and not seeded from external randomness, so a given
// pattern always pads the same way.
func paletteThread(i int) stitchgo.Thread {
	hue := math.Mod(float64(i)*goldenRatioConjugate, 1.0)
	r, g, b := hsvToRGB(hue, 0.65, 0.95)
	return stitchgo.Thread{R: r, G: g, B: b, Name: "auto"}
}

// PaletteThread exposes paletteThread's deterministic hue-stepped
// generator to codecs that need to synthesize a built-in factory palette
// of their own (e.g. JEF's index-addressed color table).
func PaletteThread(i int) stitchgo.Thread {
	return paletteThread(i)
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

// FixColorCount pads or truncates p's threadlist, in place, so its length
// matches the number of color sections implied by its boundary markers:
// count(COLOR_CHANGE)+count(COLOR_BREAK)+1 for COLOR_CHANGE/STOP-style
// destinations, or that boundary count (but at least 1) for
// NEEDLE_SET-style ones (pass needleStyle=true in that case).
func FixColorCount(p *stitchgo.Pattern, needleStyle bool) {
	boundaries := 0
	for _, c := range p.Stitches {
		if isBoundaryTag(c.T) {
			boundaries++
		}
	}
	target := boundaries + 1
	if needleStyle {
		target = boundaries
		if target == 0 {
			target = 1
		}
	}
	fixColorCountTo(p, target)
}

// fixColorCountTo is FixColorCount with an already-known target length,
// used internally by Transcode (which tracks the real section count as
// it walks the stream rather than re-deriving it from output tags that
// may be STOP rather than COLOR_CHANGE in ThreadChangeStop mode).
func fixColorCountTo(p *stitchgo.Pattern, target int) {
	switch {
	case len(p.Threadlist) > target:
		p.Threadlist = p.Threadlist[:target]
	case len(p.Threadlist) < target:
		for i := len(p.Threadlist); i < target; i++ {
			p.Threadlist = append(p.Threadlist, paletteThread(i))
		}
	}
}

// InterpolateDuplicateColorAsStop converts, in place, each COLOR_CHANGE
// or COLOR_BREAK boundary whose two neighboring threads are RGB-equal
// into a STOP, collapsing the now-redundant duplicate thread out of the
// threadlist. No-op if the threadlist is empty.
func InterpolateDuplicateColorAsStop(p *stitchgo.Pattern) {
	if len(p.Threadlist) == 0 {
		return
	}
	threadPtr := 0
	for i := range p.Stitches {
		if !isBoundaryTag(p.Stitches[i].T) {
			continue
		}
		next := threadPtr + 1
		if next >= len(p.Threadlist) {
			continue
		}
		if p.Threadlist[threadPtr].Equal(p.Threadlist[next]) {
			p.Stitches[i].T = stitchgo.Stop
			p.Threadlist = append(p.Threadlist[:next], p.Threadlist[next+1:]...)
			// threadPtr stays put: the section on both sides of this
			// boundary now shares the same (un-duplicated) thread.
			continue
		}
		threadPtr = next
	}
}

// InterpolateStopAsDuplicateColor is the inverse of
// InterpolateDuplicateColorAsStop: each STOP becomes a COLOR_CHANGE and
// the threadlist grows by duplicating the thread in effect at that point.
// A STOP always duplicates; it never takes over a thread declared after
// it. No-op if the threadlist is empty.
func InterpolateStopAsDuplicateColor(p *stitchgo.Pattern) {
	if len(p.Threadlist) == 0 {
		return
	}
	threadPtr := 0
	for i := range p.Stitches {
		switch {
		case p.Stitches[i].T == stitchgo.Stop:
			p.Stitches[i].T = stitchgo.ColorChange
			dup := p.Threadlist[threadPtr]
			next := threadPtr + 1
			grown := make([]stitchgo.Thread, 0, len(p.Threadlist)+1)
			grown = append(grown, p.Threadlist[:next]...)
			grown = append(grown, dup)
			grown = append(grown, p.Threadlist[next:]...)
			p.Threadlist = grown
			threadPtr = next
		case isBoundaryTag(p.Stitches[i].T):
			if threadPtr+1 < len(p.Threadlist) {
				threadPtr++
			}
		}
	}
}

// InterpolateFrameEject collapses, in place, every cluster of the form
// "one or more JUMP/MOVE, one STOP, zero or more JUMP/MOVE" into a
// single FRAME_EJECT at the STOP's coordinate. A STOP with no JUMP/MOVE
// right before it is left unchanged. This is the inverse of a
// Transcoder lowering a FRAME_EJECT a destination doesn't support into
// exactly such a cluster.
func InterpolateFrameEject(p *stitchgo.Pattern) {
	out := make([]stitchgo.Command, 0, len(p.Stitches))
	lead := newCommandRing()
	isTravel := func(t stitchgo.Tag) bool { return t == stitchgo.Jump || t == stitchgo.Move }

	i := 0
	n := len(p.Stitches)
	for i < n {
		c := p.Stitches[i]
		if c.T != stitchgo.Stop && !isTravel(c.T) {
			out = append(out, c)
			i++
			continue
		}
		if c.T == stitchgo.Stop {
			// A bare STOP with no leading JUMP/MOVE is a plain machine
			// pause, not a frame-eject cluster -- it must survive
			// unchanged.
			out = append(out, c)
			i++
			continue
		}
		lead.Reset()
		j := i
		for j < n && isTravel(p.Stitches[j].T) {
			lead.Push(p.Stitches[j])
			j++
		}
		if j < n && p.Stitches[j].T == stitchgo.Stop {
			stop := p.Stitches[j]
			k := j + 1
			for k < n && isTravel(p.Stitches[k].T) {
				k++
			}
			out = append(out, stitchgo.Command{X: stop.X, Y: stop.Y, T: stitchgo.FrameEject})
			i = k
			continue
		}
		// No STOP follows the travel run: not a frame-eject cluster,
		// pass the run through unchanged.
		for x := 0; x < lead.Len(); x++ {
			out = append(out, lead.At(x))
		}
		i = j
	}
	p.Stitches = out
}
