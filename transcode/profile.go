// Package transcode normalizes an authored Pattern for a specific
// destination format: folding matrix transforms into coordinates,
// splitting over-length stitches, inserting tie stitches, reconciling
// color-section boundaries against the threadlist, and applying whatever
// contingency a destination format needs for features it can't represent
// directly.
package transcode

import "github.com/cpjet64/stitchgo"

// ThreadChangeCommand selects how the Transcoder materializes a color
// section boundary in the output stream.
type ThreadChangeCommand int

const (
	// ThreadChangeColorChange emits COLOR_CHANGE between sections (not
	// before the first). Threadlist length settles to section count.
	ThreadChangeColorChange ThreadChangeCommand = iota
	// ThreadChangeStop emits STOP between sections instead of
	// COLOR_CHANGE, for machines that address needles by pausing rather
	// than by an explicit color-change signal.
	ThreadChangeStop
	// ThreadChangeNeedleSet emits NEEDLE_SET at the start of every
	// section, including the first. Threadlist length settles to
	// section count exactly (no -1), since there is no "implicit first
	// color" the way COLOR_CHANGE/STOP mode has.
	ThreadChangeNeedleSet
)

// TieMode controls whether and how tie stitches are inserted at a color
// section boundary.
type TieMode int

const (
	// TiesNone inserts no tie stitches.
	TiesNone TieMode = iota
	// TiesThreeSmall inserts three small out-and-back stitch pairs
	// around the current position (six stitches in all).
	TiesThreeSmall
	// TiesAll is equivalent to TiesThreeSmall in this implementation;
	// kept distinct because some destination profiles refer to it by
	// this name even though the stitch pattern they want is the same.
	TiesAll
)

// LongStitchContingency controls how a stitch longer than a profile's
// MaxStitch is emitted. The stitch is always split into equal steps no
// longer than MaxStitch; the contingency decides which command the
// intermediate points of that split carry.
type LongStitchContingency int

const (
	// LongStitchNone emits every step of the split as a STITCH.
	LongStitchNone LongStitchContingency = iota
	// LongStitchJumpNeedle replaces the run with JUMPs to the target
	// followed by a single in-place STITCH, so the needle only actually
	// fires once at the destination.
	LongStitchJumpNeedle
	// LongStitchSewTo marks intermediate points with SEW_TO instead of
	// STITCH, for formats with a native "travel while sewing" command.
	LongStitchSewTo
)

// SequinContingency controls how SEQUIN_EJECT commands are handled for a
// destination that doesn't support sequins.
type SequinContingency int

const (
	// SequinRemove drops SEQUIN_EJECT commands entirely.
	SequinRemove SequinContingency = iota
	// SequinAsJump rewrites SEQUIN_EJECT as JUMP.
	SequinAsJump
	// SequinAsStitch rewrites SEQUIN_EJECT as STITCH.
	SequinAsStitch
)

// Profile describes the limits and encoding policy of one destination
// format. The zero value is not generally useful; use DefaultProfile and
// override the fields a given format cares about.
type Profile struct {
	// MaxStitch is the longest a single STITCH may be before it must be
	// split into several. 0 means no limit.
	MaxStitch float64
	// MaxJump is the longest a single JUMP may be before it must be
	// split. 0 means no limit.
	MaxJump float64
	// FullJump, if true, makes each split jump consume the full MaxJump
	// distance (so a jump splits into as many MaxJump-sized steps as
	// needed, with a shorter remainder last); if false, the jump is
	// split into equal-length steps instead.
	FullJump bool
	// Round, if true, rounds every emitted coordinate to the nearest
	// integer (destination formats with integer-only coordinate fields).
	Round bool
	// NeedleCount bounds NEEDLE_SET's payload via modulo. 0 disables the
	// bound (payload passed through as given).
	NeedleCount int
	// ThreadChangeCommand selects how section boundaries materialize.
	ThreadChangeCommand ThreadChangeCommand
	// Translate is added to every coordinate before any other transform
	// is applied, as if an implicit TRANSLATE command preceded the
	// stream.
	Translate stitchgo.Point
	// TieOn controls tie stitches inserted at the start of a section.
	TieOn TieMode
	// TieOff controls tie stitches inserted at the end of a section.
	TieOff TieMode
	// StripSequins, if true, applies SequinContingency to SEQUIN_EJECT
	// and drops SEQUIN_MODE entirely.
	StripSequins bool
	// SequinContingency selects the replacement for a stripped
	// SEQUIN_EJECT.
	SequinContingency SequinContingency
	// ExplicitTrim, if true, inserts a TRIM command at every section
	// boundary (in addition to, not instead of, TieOff).
	ExplicitTrim bool
	// LongStitchContingency selects which command the intermediate
	// points of a split over-length stitch carry. A
	// CONTINGENCY_LONG_STITCH command in the stream overrides it from
	// that point on.
	LongStitchContingency LongStitchContingency
	// WritesSpeeds, if false, drops SLOW/FAST commands.
	WritesSpeeds bool
	// SupportsStop, if false, lowers an authored STOP (one not
	// synthesized for a color-section boundary) into a COLOR_CHANGE at
	// the current position. No thread is added to the threadlist for
	// it, so each lowered STOP is one COLOR_CHANGE more than the
	// threadlist's section count accounts for.
	SupportsStop bool
	// SupportsFrameEject, if false, lowers a FRAME_EJECT into a
	// JUMP-out/STOP/JUMP-back cluster at the same coordinate.
	SupportsFrameEject bool
}

// DefaultProfile returns a permissive baseline: no length limits, no
// rounding, COLOR_CHANGE for section boundaries, no ties, STOP and
// FRAME_EJECT passed through, speeds written. Format packages start from
// this and override what they need.
func DefaultProfile() Profile {
	return Profile{
		ThreadChangeCommand: ThreadChangeColorChange,
		WritesSpeeds:        true,
		SupportsStop:        true,
		SupportsFrameEject:  true,
	}
}
