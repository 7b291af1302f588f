// Package stitchgo provides the core data model for reading, writing, and
// transforming machine-embroidery designs: a typed command stream (Pattern),
// an affine transform (Matrix), thread colors (Thread), and the catalog that
// dispatches to concrete binary codecs by file extension.
package stitchgo

import "fmt"

// Tag is a command in the closed embroidery command vocabulary. Every
// Command in a Pattern's stitch stream carries one Tag.
//
// Tags partition into:
//   - stitch-like (carry an absolute position): Stitch, Jump,
//     Move, SequinEject, LongStitch, AlternatingStitch.
//   - color control: ColorChange, ColorBreak, NeedleSet, Stop.
//   - thread control: Trim, TieOn, TieOff, SequinMode.
//   - structural: End, SewTo, FrameEject, Slow, Fast.
//   - authoring-only transforms, consumed by the Transcoder and never
//     emitted by a writer: MatrixTranslate, MatrixScale, MatrixRotate,
//     MatrixReset, Translate, EnableTieOn, EnableTieOff, DisableTieOn,
//     DisableTieOff, ContingencyLongStitch, ContingencySequin.
//
// Go has no tagged-union type to split these into separate types;
// instead IsAuthoringOnly partitions the single enum, and the
// Transcoder's output post-conditions guarantee that no authoring-only
// tag ever reaches a codec (see transcode.Transcode).
type Tag uint8

const (
	// Stitch-like commands. Coordinates are absolute position.
	Stitch Tag = iota
	Jump
	Move
	SequinEject
	LongStitch
	AlternatingStitch

	// Color control.
	ColorChange
	ColorBreak
	NeedleSet
	Stop

	// Thread control.
	Trim
	TieOn
	TieOff
	SequinMode

	// Structural.
	End
	SewTo
	FrameEject
	Slow
	Fast

	// Authoring-only transforms: consumed by the Transcoder, never emitted.
	MatrixTranslate
	MatrixScale
	MatrixRotate
	MatrixReset
	Translate
	EnableTieOn
	EnableTieOff
	DisableTieOn
	DisableTieOff
	ContingencyLongStitch
	ContingencySequin

	tagCount
)

var tagNames = [tagCount]string{
	Stitch:                "STITCH",
	Jump:                  "JUMP",
	Move:                  "MOVE",
	SequinEject:           "SEQUIN_EJECT",
	LongStitch:            "LONG_STITCH",
	AlternatingStitch:     "ALTERNATING_STITCH",
	ColorChange:           "COLOR_CHANGE",
	ColorBreak:            "COLOR_BREAK",
	NeedleSet:             "NEEDLE_SET",
	Stop:                  "STOP",
	Trim:                  "TRIM",
	TieOn:                 "TIE_ON",
	TieOff:                "TIE_OFF",
	SequinMode:            "SEQUIN_MODE",
	End:                   "END",
	SewTo:                 "SEW_TO",
	FrameEject:            "FRAME_EJECT",
	Slow:                  "SLOW",
	Fast:                  "FAST",
	MatrixTranslate:       "MATRIX_TRANSLATE",
	MatrixScale:           "MATRIX_SCALE",
	MatrixRotate:          "MATRIX_ROTATE",
	MatrixReset:           "MATRIX_RESET",
	Translate:             "TRANSLATE",
	EnableTieOn:           "ENABLE_TIE_ON",
	EnableTieOff:          "ENABLE_TIE_OFF",
	DisableTieOn:          "DISABLE_TIE_ON",
	DisableTieOff:         "DISABLE_TIE_OFF",
	ContingencyLongStitch: "CONTINGENCY_LONG_STITCH",
	ContingencySequin:     "CONTINGENCY_SEQUIN",
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if t >= tagCount {
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
	return tagNames[t]
}

// IsStitchLike reports whether t carries an absolute position in its
// coordinate fields, as opposed to a control payload.
func (t Tag) IsStitchLike() bool {
	switch t {
	case Stitch, Jump, Move, SequinEject, LongStitch, AlternatingStitch:
		return true
	default:
		return false
	}
}

// IsAuthoringOnly reports whether t is consumed by the Transcoder and must
// never appear in a normalized or encoded command stream.
func (t Tag) IsAuthoringOnly() bool {
	switch t {
	case MatrixTranslate, MatrixScale, MatrixRotate, MatrixReset, Translate,
		EnableTieOn, EnableTieOff, DisableTieOn, DisableTieOff,
		ContingencyLongStitch, ContingencySequin:
		return true
	default:
		return false
	}
}

// Command is a single entry in a Pattern's stitch stream: a position
// (meaningful for stitch-like tags) or a control payload (meaningful for
// everything else), paired with its Tag.
type Command struct {
	X, Y float64
	T    Tag
}

// Point is a bare 2D coordinate, used by Pattern.AddBlock.
type Point struct {
	X, Y float64
}
