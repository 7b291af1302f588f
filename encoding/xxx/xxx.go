// Package xxx reads and writes Singer XXX: two-byte stitch deltas with a
// long-form escape for large moves, and a trailing palette block keyed
// by an offset recorded in the header.
package xxx

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const (
	ctrlColorChange = 0x80
	ctrlJump        = 0x81
	ctrlEnd         = 0x82
	longFormEscape  = 0x83
)

// MaxDelta is the longest stitch the Transcoder passes to the writer
// unsplit. A per-axis delta outside the plain two-byte record's
// shortFormMin..127 range is written with the longFormEscape (int16)
// record instead.
const MaxDelta = 32000

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "xxx",
		Name:        "Singer XXX",
		Description: "Singer embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Profile returns the Transcoder profile XXX's writer runs first. Jumps
// are capped at the plain short-form range: the wire format has no
// escape form following the JUMP control byte, only following a bare
// stitch record, so a long jump must be split rather than escaped.
func Profile() transcode.Profile {
	p := transcode.DefaultProfile()
	p.MaxStitch = MaxDelta
	p.MaxJump = -shortFormMin
	p.Round = true
	p.LongStitchContingency = transcode.LongStitchNone
	p.SupportsStop = false
	p.SupportsFrameEject = false
	return p
}

type header struct {
	paletteOffset uint32
	stitchOffset  uint32
}

// Read decodes an XXX byte stream: an 8-byte offset header, the stitch
// stream (up to paletteOffset), then a trailing fixed-size-record
// palette block. opts is unused: XXX's reader has no per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, stitchgo.ErrParse("xxx: read error: %v", err)
	}
	if len(all) < 8 {
		return nil, stitchgo.ErrParse("xxx: short header")
	}
	h := header{
		stitchOffset:  binary.LittleEndian.Uint32(all[0:4]),
		paletteOffset: binary.LittleEndian.Uint32(all[4:8]),
	}
	if int(h.stitchOffset) > len(all) || int(h.paletteOffset) > len(all) {
		return nil, stitchgo.ErrParse("xxx: offset header points past end of file")
	}

	p := stitchgo.NewPattern()
	if h.paletteOffset > h.stitchOffset {
		threads, err := readPalette(all[h.paletteOffset:])
		if err != nil {
			return nil, err
		}
		for _, th := range threads {
			p.AddThread(th)
		}
	}

	body := bufio.NewReader(bytes.NewReader(all[h.stitchOffset:h.paletteOffset]))
	var x, y float64
	for {
		b0, err := body.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stitchgo.ErrParse("xxx: read error: %v", err)
		}
		switch b0 {
		case ctrlColorChange:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
		case ctrlEnd:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
			return p, nil
		case ctrlJump:
			dx, dy, err := readDelta(body)
			if err != nil {
				return nil, err
			}
			x += dx
			y += dy
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Jump})
		case longFormEscape:
			dx, dy, err := readLongDelta(body)
			if err != nil {
				return nil, err
			}
			x += dx
			y += dy
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
		default:
			if err := body.UnreadByte(); err != nil {
				return nil, err
			}
			dx, dy, err := readDelta(body)
			if err != nil {
				return nil, err
			}
			x += dx
			y += dy
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
		}
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

func readDelta(br *bufio.Reader) (float64, float64, error) {
	bx, err := br.ReadByte()
	if err != nil {
		return 0, 0, stitchgo.ErrParse("xxx: truncated x delta: %v", err)
	}
	by, err := br.ReadByte()
	if err != nil {
		return 0, 0, stitchgo.ErrParse("xxx: truncated y delta: %v", err)
	}
	return float64(int8(bx)), float64(int8(by)), nil
}

func readLongDelta(br *bufio.Reader) (float64, float64, error) {
	var buf [4]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, 0, stitchgo.ErrParse("xxx: truncated long-form escape: %v", err)
	}
	dx := int16(binary.LittleEndian.Uint16(buf[0:2]))
	dy := int16(binary.LittleEndian.Uint16(buf[2:4]))
	return float64(dx), float64(dy), nil
}

func readPalette(b []byte) ([]stitchgo.Thread, error) {
	const recordSize = 3
	if len(b)%recordSize != 0 {
		return nil, stitchgo.ErrParse("xxx: trailing palette block is not a multiple of %d bytes", recordSize)
	}
	out := make([]stitchgo.Thread, len(b)/recordSize)
	for i := range out {
		out[i] = stitchgo.Thread{R: b[i*recordSize], G: b[i*recordSize+1], B: b[i*recordSize+2]}
	}
	return out, nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as XXX.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}

	body, err := encodeBody(norm)
	if err != nil {
		return err
	}
	palette := encodePalette(norm.Threadlist)

	stitchOffset := uint32(8)
	paletteOffset := stitchOffset + uint32(len(body))

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], stitchOffset)
	binary.LittleEndian.PutUint32(hdr[4:8], paletteOffset)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err = w.Write(palette)
	return err
}

func encodeBody(p *stitchgo.Pattern) ([]byte, error) {
	var out []byte
	var x, y float64
	for _, c := range p.Stitches {
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			b, err := encodeDelta(c.X-x, c.Y-y)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case stitchgo.Jump, stitchgo.Move, stitchgo.FrameEject:
			dx, dy := c.X-x, c.Y-y
			rdx, rdy := round(dx), round(dy)
			if rdx < shortFormMin || rdx > 127 || rdy < shortFormMin || rdy > 127 {
				return nil, stitchgo.ErrInvariant("xxx: jump delta (%v,%v) exceeds the format's escape-free jump range after transcoding", dx, dy)
			}
			out = append(out, ctrlJump, byte(int8(rdx)), byte(int8(rdy)))
		case stitchgo.ColorChange, stitchgo.Stop, stitchgo.NeedleSet:
			out = append(out, ctrlColorChange)
			continue
		case stitchgo.End:
			out = append(out, ctrlEnd)
			return out, nil
		default:
			continue
		}
		x, y = c.X, c.Y
	}
	out = append(out, ctrlEnd)
	return out, nil
}

// shortFormMin is the lowest per-axis delta the plain two-byte record
// can carry: low enough to leave bytes 0x80-0x83 (the control/escape
// bytes) unused by any negative short-form encoding.
const shortFormMin = -124

func encodeDelta(dx, dy float64) ([]byte, error) {
	rdx, rdy := round(dx), round(dy)
	if rdx >= shortFormMin && rdx <= 127 && rdy >= shortFormMin && rdy <= 127 {
		return []byte{byte(int8(rdx)), byte(int8(rdy))}, nil
	}
	if rdx < -32768 || rdx > 32767 || rdy < -32768 || rdy > 32767 {
		return nil, stitchgo.ErrInvariant("xxx: delta (%v,%v) exceeds long-form encodable range after transcoding", dx, dy)
	}
	out := make([]byte, 5)
	out[0] = longFormEscape
	binary.LittleEndian.PutUint16(out[1:3], uint16(int16(rdx)))
	binary.LittleEndian.PutUint16(out[3:5], uint16(int16(rdy)))
	return out, nil
}

func encodePalette(threads []stitchgo.Thread) []byte {
	out := make([]byte, len(threads)*3)
	for i, th := range threads {
		out[i*3] = th.R
		out[i*3+1] = th.G
		out[i*3+2] = th.B
	}
	return out
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
