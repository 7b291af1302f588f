// Package u01 reads and writes Barudan U01: a DST-like 3-byte record
// stream, but with NEEDLE_SET native -- records carry a needle index
// directly rather than a color-change marker, and the format has no
// embedded threadlist.
package u01

import (
	"bufio"
	"io"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const (
	ctrlStitch = 0x01
	ctrlJump   = 0x02
	ctrlEnd    = 0x80
	// ctrlNeedleSetBase marks a needle-select record: its control byte
	// is ctrlNeedleSetBase plus the needle index, which keeps it above
	// ctrlStitch and ctrlJump; the sum must stay below ctrlEnd (see
	// MaxNeedle).
	ctrlNeedleSetBase = 0x10
)

// MaxDelta is the largest per-axis, per-record signed delta this
// codec's 3-byte record shape can carry.
const MaxDelta = 121

// MaxNeedle is the highest needle index a control byte can carry
// alongside ctrlNeedleSetBase before colliding with ctrlEnd.
const MaxNeedle = 0x80 - ctrlNeedleSetBase - 1

// Profile returns the Transcoder profile U01's writer runs first:
// NEEDLE_SET thread-change mode (one record per color section,
// including the first, carrying the needle index instead of a
// COLOR_CHANGE), and the same max_stitch/max_jump ceiling as DST.
func Profile() transcode.Profile {
	p := transcode.DefaultProfile()
	p.MaxStitch = MaxDelta
	p.MaxJump = MaxDelta
	p.Round = true
	p.LongStitchContingency = transcode.LongStitchJumpNeedle
	p.NeedleCount = MaxNeedle + 1
	p.ThreadChangeCommand = transcode.ThreadChangeNeedleSet
	p.SupportsStop = false
	p.SupportsFrameEject = false
	return p
}

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "u01",
		Name:        "Barudan U01",
		Description: "Barudan embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Read decodes a U01 byte stream into a Pattern. The threadlist is
// always empty; needle-select records carry a NEEDLE_SET command whose
// X field holds the needle index, matching how the Transcoder emits
// NEEDLE_SET in NeedleSet mode. opts is unused: U01's reader has no
// per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	p := stitchgo.NewPattern()
	var x, y float64
	rec := make([]byte, 3)
	for {
		if _, err := io.ReadFull(br, rec); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, stitchgo.ErrParse("u01: truncated stitch record: %v", err)
		}
		dx, dy, ctrl := int8(rec[0]), int8(rec[1]), rec[2]
		x += float64(dx)
		y += float64(dy)
		switch {
		case ctrl == ctrlEnd:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
			return p, nil
		case ctrl == ctrlJump:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Jump})
		case ctrl == ctrlStitch:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
		case ctrl >= ctrlNeedleSetBase && ctrl < ctrlEnd:
			needle := float64(ctrl - ctrlNeedleSetBase)
			p.Append(stitchgo.Command{X: needle, Y: 0, T: stitchgo.NeedleSet})
		default:
			return nil, stitchgo.ErrParse("u01: unrecognized control byte 0x%02x", ctrl)
		}
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as U01.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}
	var x, y float64
	for _, c := range norm.Stitches {
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			if err := writeRecord(w, c.X-x, c.Y-y, ctrlStitch); err != nil {
				return err
			}
			x, y = c.X, c.Y
		case stitchgo.Jump, stitchgo.Move, stitchgo.FrameEject:
			if err := writeRecord(w, c.X-x, c.Y-y, ctrlJump); err != nil {
				return err
			}
			x, y = c.X, c.Y
		case stitchgo.NeedleSet:
			needle := int(c.X)
			if needle < 0 || needle > MaxNeedle {
				return stitchgo.ErrInvariant("u01: needle index %d exceeds encodable range 0-%d", needle, MaxNeedle)
			}
			// A needle-select record carries no coordinate delta; the
			// needle index travels in the control byte, not the x/y
			// fields, so position tracking is untouched here.
			if err := writeRecord(w, 0, 0, ctrlNeedleSetBase+byte(needle)); err != nil {
				return err
			}
		case stitchgo.ColorChange, stitchgo.Stop:
			if err := writeRecord(w, 0, 0, ctrlNeedleSetBase); err != nil {
				return err
			}
		case stitchgo.End:
			if err := writeRecord(w, c.X-x, c.Y-y, ctrlEnd); err != nil {
				return err
			}
			x, y = c.X, c.Y
		default:
			continue
		}
	}
	return nil
}

func writeRecord(w io.Writer, dx, dy float64, ctrl byte) error {
	if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
		return stitchgo.ErrInvariant("u01: delta (%v,%v) exceeds encodable range +-%d after transcoding", dx, dy, MaxDelta)
	}
	_, err := w.Write([]byte{byte(int8(round(dx))), byte(int8(round(dy))), ctrl})
	return err
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
