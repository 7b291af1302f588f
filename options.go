package stitchgo

// Options carries per-call overrides for a format's Read/Write entry
// points: the subset of the destination profile a caller can tune
// without reaching into package transcode directly (the Transcoder
// profile options), plus whatever extra a given format needs beyond
// that (PES's Version). Every field is optional; the zero value changes
// nothing, and a codec merges only the fields a caller actually set on
// top of its own fixed profile.
type Options struct {
	// MaxStitch, if non-nil, overrides the destination's longest single
	// STITCH before it must be split.
	MaxStitch *float64
	// MaxJump, if non-nil, overrides the destination's longest single
	// JUMP before it must be split.
	MaxJump *float64
	// FullJump, if non-nil, overrides whether a split jump consumes the
	// full MaxJump per step rather than splitting evenly.
	FullJump *bool
	// Round, if non-nil, overrides whether emitted coordinates are
	// rounded to the nearest integer.
	Round *bool
	// ExplicitTrim, if non-nil, overrides whether a TRIM command is
	// inserted at every section boundary.
	ExplicitTrim *bool
	// StripSequins, if non-nil, overrides whether SEQUIN_EJECT and
	// SEQUIN_MODE are stripped for destinations without sequin support.
	StripSequins *bool
	// WritesSpeeds, if non-nil, overrides whether SLOW/FAST commands
	// are written at all.
	WritesSpeeds *bool

	// Version is PES's per-codec extra: the wire version string
	// ("#PES0001".."#PES0060", or a short form like "6t"). Every other
	// format ignores it.
	Version string
}
