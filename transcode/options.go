package transcode

import "github.com/cpjet64/stitchgo"

// ApplyOptions returns a copy of base with every non-nil field of opts
// overlaid on top, for a codec threading a caller-supplied
// stitchgo.Options through its own fixed Profile. Fields opts leaves nil
// keep base's value.
func ApplyOptions(base Profile, opts stitchgo.Options) Profile {
	p := base
	if opts.MaxStitch != nil {
		p.MaxStitch = *opts.MaxStitch
	}
	if opts.MaxJump != nil {
		p.MaxJump = *opts.MaxJump
	}
	if opts.FullJump != nil {
		p.FullJump = *opts.FullJump
	}
	if opts.Round != nil {
		p.Round = *opts.Round
	}
	if opts.ExplicitTrim != nil {
		p.ExplicitTrim = *opts.ExplicitTrim
	}
	if opts.StripSequins != nil {
		p.StripSequins = *opts.StripSequins
	}
	if opts.WritesSpeeds != nil {
		p.WritesSpeeds = *opts.WritesSpeeds
	}
	return p
}
