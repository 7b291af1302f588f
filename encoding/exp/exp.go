// Package exp reads and writes Melco/Bernina EXP: a headerless stream of
// 2-byte signed stitch deltas with escape-pair control records and no
// embedded thread palette.
package exp

import (
	"bufio"
	"io"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const escape = 0x80

const (
	ctrlColorChange = 0x01
	ctrlJump        = 0x02
	ctrlEnd         = 0x80
)

// MaxDelta bounds a single unescaped stitch record's per-axis magnitude.
const MaxDelta = 127

// Profile returns the Transcoder profile EXP's writer runs first:
// max_stitch/max_jump of 127 (the largest delta a plain, non-escaped
// record can carry), even splitting for anything longer, and no native
// STOP or FRAME_EJECT -- EXP's only control records are COLOR_CHANGE and
// JUMP.
func Profile() transcode.Profile {
	p := transcode.DefaultProfile()
	p.MaxStitch = MaxDelta
	p.MaxJump = MaxDelta
	p.Round = true
	p.LongStitchContingency = transcode.LongStitchNone
	p.SupportsStop = false
	p.SupportsFrameEject = false
	return p
}

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "exp",
		Name:        "Melco EXP",
		Description: "Melco/Bernina expanded embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Read decodes an EXP byte stream into a Pattern. The returned
// threadlist is always empty; EXP carries no palette. opts is unused:
// EXP's reader has no per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	p := stitchgo.NewPattern()
	var x, y float64

	for {
		b0, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stitchgo.ErrParse("exp: read error: %v", err)
		}
		if b0 == escape {
			ctrl, err := br.ReadByte()
			if err != nil {
				return nil, stitchgo.ErrParse("exp: truncated control pair: %v", err)
			}
			switch ctrl {
			case ctrlColorChange:
				p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
			case ctrlJump:
				dx, dy, err := readDelta(br)
				if err != nil {
					return nil, err
				}
				x += dx
				y += dy
				p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Jump})
			case ctrlEnd:
				p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
				return p, nil
			default:
				return nil, stitchgo.ErrParse("exp: unrecognized control byte 0x%02x", ctrl)
			}
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return nil, err
		}
		dx, dy, err := readDelta(br)
		if err != nil {
			return nil, err
		}
		x += dx
		y += dy
		p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

func readDelta(br *bufio.Reader) (dx, dy float64, err error) {
	bx, err := br.ReadByte()
	if err != nil {
		return 0, 0, stitchgo.ErrParse("exp: truncated x delta: %v", err)
	}
	by, err := br.ReadByte()
	if err != nil {
		return 0, 0, stitchgo.ErrParse("exp: truncated y delta: %v", err)
	}
	return float64(int8(bx)), float64(int8(by)), nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as EXP.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var x, y float64
	for _, c := range norm.Stitches {
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			if err := writeDelta(bw, c.X-x, c.Y-y); err != nil {
				return err
			}
		case stitchgo.Jump, stitchgo.Move:
			if err := bw.WriteByte(escape); err != nil {
				return err
			}
			if err := bw.WriteByte(ctrlJump); err != nil {
				return err
			}
			if err := writeDelta(bw, c.X-x, c.Y-y); err != nil {
				return err
			}
		case stitchgo.ColorChange, stitchgo.Stop, stitchgo.NeedleSet:
			if err := bw.WriteByte(escape); err != nil {
				return err
			}
			if err := bw.WriteByte(ctrlColorChange); err != nil {
				return err
			}
			continue // escape-pair control record carries no coordinate delta
		case stitchgo.FrameEject:
			if err := bw.WriteByte(escape); err != nil {
				return err
			}
			if err := bw.WriteByte(ctrlJump); err != nil {
				return err
			}
			if err := writeDelta(bw, c.X-x, c.Y-y); err != nil {
				return err
			}
		case stitchgo.End:
			if err := bw.WriteByte(escape); err != nil {
				return err
			}
			if err := bw.WriteByte(ctrlEnd); err != nil {
				return err
			}
			return bw.Flush()
		default:
			continue
		}
		x, y = c.X, c.Y
	}
	return bw.Flush()
}

func writeDelta(bw *bufio.Writer, dx, dy float64) error {
	if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
		return stitchgo.ErrInvariant("exp: delta (%v,%v) exceeds encodable range +-%d after transcoding", dx, dy, MaxDelta)
	}
	if err := bw.WriteByte(byte(int8(round(dx)))); err != nil {
		return err
	}
	return bw.WriteByte(byte(int8(round(dy))))
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
