package transcode

import (
	"math"

	"v.io/x/lib/vlog"

	"github.com/cpjet64/stitchgo"
)

// Transcode normalizes src for profile and returns a new, independent
// Pattern; src is never mutated. The result satisfies: no authoring-only
// tag remains, every STITCH/JUMP/MOVE is split to respect
// MaxStitch/MaxJump (SEW_TO and SEQUIN_EJECT are emitted unsplit),
// every color-section boundary is materialized the way
// profile.ThreadChangeCommand says, and the threadlist length matches
// the realized section count.
func Transcode(src *stitchgo.Pattern, profile Profile) (*stitchgo.Pattern, error) {
	vlog.VI(2).Infof("transcode: %d source commands, maxStitch=%v maxJump=%v threadChange=%v",
		len(src.Stitches), profile.MaxStitch, profile.MaxJump, profile.ThreadChangeCommand)
	t := &transcoder{
		src:              src,
		profile:          profile,
		out:              stitchgo.NewPattern(),
		matrix:           stitchgo.Identity(),
		longStitchPolicy: profile.LongStitchContingency,
		sequinPolicy:     profile.SequinContingency,
	}
	t.out.Metadata = make(map[string]string, len(src.Metadata))
	for k, v := range src.Metadata {
		t.out.Metadata[k] = v
	}
	for _, e := range src.Extras {
		t.out.Extras = append(t.out.Extras, append([]byte(nil), e...))
	}
	t.firstStitch, t.lastStitch = stitchLikeBounds(src.Stitches)
	t.openSection(true)
	for t.i = 0; t.i < len(src.Stitches); t.i++ {
		if err := t.step(); err != nil {
			return nil, err
		}
	}
	t.closeFinalTieOff()
	if len(t.out.Stitches) == 0 || t.out.Stitches[len(t.out.Stitches)-1].T != stitchgo.End {
		t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.End})
	}
	t.out.Threadlist = append([]stitchgo.Thread(nil), src.Threadlist...)
	fixColorCountTo(t.out, t.nextThreadIdx)
	if err := t.checkPostConditions(); err != nil {
		return nil, err
	}
	return t.out, nil
}

// stitchLikeBounds returns the index of the first and last stitch-like
// command in cmds, or (-1, -1) if there are none.
func stitchLikeBounds(cmds []stitchgo.Command) (first, last int) {
	first, last = -1, -1
	for i, c := range cmds {
		if c.T.IsStitchLike() {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

type transcoder struct {
	src     *stitchgo.Pattern
	profile Profile
	out     *stitchgo.Pattern

	matrix stitchgo.Matrix
	curX   float64
	curY   float64

	i                int
	firstStitch      int
	lastStitch       int
	nextThreadIdx    int
	longStitchPolicy LongStitchContingency
	sequinPolicy     SequinContingency
	tieOnActive      TieMode
	tieOffActive     TieMode
}

func (t *transcoder) isBookend(idx int) bool {
	if t.firstStitch == -1 {
		return true
	}
	return idx < t.firstStitch || idx > t.lastStitch
}

// openSection materializes the start of a color section: a NEEDLE_SET if
// the profile uses that mode (emitted even for the first section), then
// a tie-on if active.
func (t *transcoder) openSection(first bool) {
	tieOn := t.tieOnActive
	if tieOn == TiesNone {
		tieOn = t.profile.TieOn
	}
	if t.profile.ThreadChangeCommand == ThreadChangeNeedleSet {
		idx := t.nextThreadIdx
		if t.profile.NeedleCount > 0 {
			idx = idx % t.profile.NeedleCount
		}
		t.out.Append(stitchgo.Command{X: float64(idx), T: stitchgo.NeedleSet})
	}
	t.nextThreadIdx++
	t.emitTie(tieOn)
	_ = first
}

// closeSection materializes the end of the prior section: an optional
// tie-off, an optional explicit TRIM, then the boundary command itself
// (COLOR_CHANGE or STOP, depending on the profile; nothing for
// NEEDLE_SET mode, whose boundary marker is the next openSection's
// NEEDLE_SET).
func (t *transcoder) closeSection() {
	tieOff := t.tieOffActive
	if tieOff == TiesNone {
		tieOff = t.profile.TieOff
	}
	t.emitTie(tieOff)
	if t.profile.ExplicitTrim {
		t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.Trim})
	}
	switch t.profile.ThreadChangeCommand {
	case ThreadChangeStop:
		t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.Stop})
	case ThreadChangeNeedleSet:
		// boundary is the following openSection's NEEDLE_SET.
	default:
		t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.ColorChange})
	}
}

// closeFinalTieOff applies a tie-off at the very end of the stream, if
// the profile wants one and the pattern ends with actual stitching.
func (t *transcoder) closeFinalTieOff() {
	if t.firstStitch == -1 {
		return
	}
	tieOff := t.tieOffActive
	if tieOff == TiesNone {
		tieOff = t.profile.TieOff
	}
	t.emitTie(tieOff)
}

// emitTie inserts three small out-and-back stitch pairs (six stitches,
// each pair returning to the current position) for
// TiesThreeSmall/TiesAll, or nothing for TiesNone.
func (t *transcoder) emitTie(mode TieMode) {
	if mode == TiesNone {
		return
	}
	const step = 0.4
	offsets := [][2]float64{{step, 0}, {-step, step}, {step, -step}}
	for _, o := range offsets {
		t.out.Append(stitchgo.Command{X: t.curX + o[0], Y: t.curY + o[1], T: stitchgo.Stitch})
		t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.Stitch})
	}
}

func (t *transcoder) transformed(x, y float64) (float64, float64) {
	tx, ty := x+t.profile.Translate.X, y+t.profile.Translate.Y
	nx, ny := t.matrix.PointInMatrixSpace(tx, ty)
	if t.profile.Round {
		nx, ny = math.Round(nx), math.Round(ny)
	}
	return nx, ny
}

func (t *transcoder) step() error {
	c := t.src.Stitches[t.i]
	switch c.T {
	case stitchgo.MatrixTranslate, stitchgo.Translate:
		t.matrix.PostTranslate(c.X, c.Y)
	case stitchgo.MatrixScale:
		t.matrix.PostScale(c.X, c.Y, 0, 0)
	case stitchgo.MatrixRotate:
		t.matrix.PostRotateOrigin(c.X)
	case stitchgo.MatrixReset:
		t.matrix.Reset()
	case stitchgo.EnableTieOn:
		t.tieOnActive = TiesThreeSmall
	case stitchgo.DisableTieOn:
		t.tieOnActive = TiesNone
	case stitchgo.EnableTieOff:
		t.tieOffActive = TiesThreeSmall
	case stitchgo.DisableTieOff:
		t.tieOffActive = TiesNone
	case stitchgo.ContingencyLongStitch:
		t.longStitchPolicy = LongStitchContingency(int(c.X))
	case stitchgo.ContingencySequin:
		t.sequinPolicy = SequinContingency(int(c.X))
	case stitchgo.ColorBreak, stitchgo.ColorChange:
		if !t.isBookend(t.i) {
			t.closeSection()
			t.openSection(false)
		}
	case stitchgo.End:
		// A terminal END is synthesized by Transcode itself; any
		// embedded END in the source stream is redundant.
	case stitchgo.Stop:
		if t.profile.SupportsStop {
			t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.Stop})
		} else {
			t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.ColorChange})
		}
	case stitchgo.FrameEject:
		nx, ny := t.transformed(c.X, c.Y)
		if t.profile.SupportsFrameEject {
			t.out.Append(stitchgo.Command{X: nx, Y: ny, T: stitchgo.FrameEject})
		} else {
			t.out.Append(stitchgo.Command{X: nx, Y: ny, T: stitchgo.Jump})
			t.out.Append(stitchgo.Command{X: nx, Y: ny, T: stitchgo.Stop})
			t.out.Append(stitchgo.Command{X: t.curX, Y: t.curY, T: stitchgo.Jump})
		}
	case stitchgo.Slow, stitchgo.Fast:
		if t.profile.WritesSpeeds {
			t.out.Append(c)
		}
	case stitchgo.SequinMode:
		if !t.profile.StripSequins {
			t.out.Append(c)
		}
	case stitchgo.SequinEject:
		nx, ny := t.transformed(c.X, c.Y)
		if t.profile.StripSequins {
			switch t.policyOrDefault(t.sequinPolicy) {
			case SequinAsJump:
				t.emitStitchLike(stitchgo.Jump, nx, ny)
			case SequinAsStitch:
				t.emitStitchLike(stitchgo.Stitch, nx, ny)
			}
		} else {
			t.emitStitchLike(stitchgo.SequinEject, nx, ny)
		}
	case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch:
		nx, ny := t.transformed(c.X, c.Y)
		t.emitLongStitch(nx, ny, t.profile.MaxStitch)
	case stitchgo.Jump, stitchgo.Move:
		nx, ny := t.transformed(c.X, c.Y)
		t.emitLongJump(c.T, nx, ny, t.profile.MaxJump)
	case stitchgo.SewTo:
		nx, ny := t.transformed(c.X, c.Y)
		t.emitStitchLike(stitchgo.SewTo, nx, ny)
	case stitchgo.NeedleSet:
		idx := int(c.X)
		if t.profile.NeedleCount > 0 {
			idx = idx % t.profile.NeedleCount
		}
		t.out.Append(stitchgo.Command{X: float64(idx), T: stitchgo.NeedleSet})
	default:
		t.out.Append(c)
	}
	return nil
}

func (t *transcoder) policyOrDefault(p SequinContingency) SequinContingency { return p }

func (t *transcoder) emitStitchLike(tag stitchgo.Tag, x, y float64) {
	t.out.Append(stitchgo.Command{X: x, Y: y, T: tag})
	t.curX, t.curY = x, y
}

// emitLongStitch walks from the current position to (x,y), splitting
// into equal segments no longer than max (0 meaning unlimited); the
// active LongStitchContingency decides which tag the intermediate
// points carry.
func (t *transcoder) emitLongStitch(x, y, max float64) {
	if max <= 0 {
		t.emitStitchLike(stitchgo.Stitch, x, y)
		return
	}
	dx, dy := x-t.curX, y-t.curY
	dist := math.Hypot(dx, dy)
	if dist <= max {
		t.emitStitchLike(stitchgo.Stitch, x, y)
		return
	}
	steps := int(math.Ceil(dist / max))
	switch t.longStitchPolicy {
	case LongStitchSewTo:
		startX, startY := t.curX, t.curY
		for s := 1; s < steps; s++ {
			frac := float64(s) / float64(steps)
			t.emitStitchLike(stitchgo.SewTo, startX+dx*frac, startY+dy*frac)
		}
		t.emitStitchLike(stitchgo.Stitch, x, y)
	case LongStitchJumpNeedle:
		startX, startY := t.curX, t.curY
		for s := 1; s < steps; s++ {
			frac := float64(s) / float64(steps)
			t.emitStitchLike(stitchgo.Jump, startX+dx*frac, startY+dy*frac)
		}
		t.emitStitchLike(stitchgo.Stitch, x, y)
	default:
		startX, startY := t.curX, t.curY
		for s := 1; s <= steps; s++ {
			frac := float64(s) / float64(steps)
			t.emitStitchLike(stitchgo.Stitch, startX+dx*frac, startY+dy*frac)
		}
	}
}

// emitLongJump is emitLongStitch's analogue for JUMP/MOVE: it always
// splits into several steps of at most max (no contingency; travel
// commands don't sew, so there's nothing to fall back to), honoring
// FullJump for how those steps are sized.
func (t *transcoder) emitLongJump(tag stitchgo.Tag, x, y, max float64) {
	if max <= 0 {
		t.emitStitchLike(tag, x, y)
		return
	}
	dx, dy := x-t.curX, y-t.curY
	dist := math.Hypot(dx, dy)
	if dist <= max {
		t.emitStitchLike(tag, x, y)
		return
	}
	steps := int(math.Ceil(dist / max))
	startX, startY := t.curX, t.curY
	if t.profile.FullJump {
		ux, uy := dx/dist, dy/dist
		for s := 1; s < steps; s++ {
			t.emitStitchLike(tag, startX+ux*max*float64(s), startY+uy*max*float64(s))
		}
		t.emitStitchLike(tag, x, y)
		return
	}
	for s := 1; s <= steps; s++ {
		frac := float64(s) / float64(steps)
		t.emitStitchLike(tag, startX+dx*frac, startY+dy*frac)
	}
}

func (t *transcoder) checkPostConditions() error {
	for _, c := range t.out.Stitches {
		if c.T.IsAuthoringOnly() {
			return stitchgo.ErrInvariant("transcode: authoring-only tag %s leaked into output", c.T)
		}
	}
	// t.nextThreadIdx counts sections opened (openSection runs exactly
	// once per section, including the first), which equals the
	// threadlist length every ThreadChangeCommand mode needs.
	want := t.nextThreadIdx
	if len(t.out.Threadlist) != want {
		return stitchgo.ErrInvariant("transcode: threadlist length %d does not match section count %d", len(t.out.Threadlist), want)
	}
	return nil
}
