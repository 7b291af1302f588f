// Package vp3 reads and writes Husqvarna/Viking VP3: a sequence of
// length-prefixed blocks, one per color section, each carrying an
// embedded RGB+name thread followed by its own delta-encoded stitches
// with an escape form for long runs.
package vp3

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const longStitchEscape = 0x7F

// MaxDelta is the largest delta a plain VP3 stitch record carries before
// the writer must fall back to the long-stitch escape form.
const MaxDelta = 124

// Profile returns the Transcoder profile VP3's writer runs first.
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
		Extension:   "vp3",
		Name:        "Husqvarna Viking VP3",
		Description: "Husqvarna/Viking block-structured embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Read decodes a VP3 byte stream into a Pattern, one block per color
// section. Each block contributes its thread to the pattern's
// threadlist and a COLOR_CHANGE between sections (never before the
// first). opts is unused: VP3's reader has no per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	var blockCount uint32
	if err := binary.Read(br, binary.LittleEndian, &blockCount); err != nil {
		return nil, stitchgo.ErrParse("vp3: short block count: %v", err)
	}
	p := stitchgo.NewPattern()
	var x, y float64
	for b := uint32(0); b < blockCount; b++ {
		th, err := readThread(br)
		if err != nil {
			return nil, err
		}
		p.AddThread(th)
		if b > 0 {
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
		}

		var blockLen uint32
		if err := binary.Read(br, binary.LittleEndian, &blockLen); err != nil {
			return nil, stitchgo.ErrParse("vp3: block %d: short length prefix: %v", b, err)
		}
		body := make([]byte, blockLen)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, stitchgo.ErrParse("vp3: block %d: short body: %v", b, err)
		}
		x, y, err = decodeBlock(p, body, x, y)
		if err != nil {
			return nil, err
		}
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

func readThread(r io.Reader) (stitchgo.Thread, error) {
	var rgb [3]byte
	if _, err := io.ReadFull(r, rgb[:]); err != nil {
		return stitchgo.Thread{}, stitchgo.ErrParse("vp3: short thread RGB: %v", err)
	}
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return stitchgo.Thread{}, stitchgo.ErrParse("vp3: short thread name length: %v", err)
	}
	name := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := io.ReadFull(r, name); err != nil {
			return stitchgo.Thread{}, stitchgo.ErrParse("vp3: short thread name: %v", err)
		}
	}
	return stitchgo.Thread{R: rgb[0], G: rgb[1], B: rgb[2], Name: string(name)}, nil
}

func decodeBlock(p *stitchgo.Pattern, body []byte, x, y float64) (float64, float64, error) {
	i := 0
	for i < len(body) {
		bx := int8(body[i])
		i++
		if i >= len(body) {
			return x, y, stitchgo.ErrParse("vp3: dangling x delta at block end")
		}
		var dx, dy float64
		if bx == longStitchEscape {
			if i+4 > len(body) {
				return x, y, stitchgo.ErrParse("vp3: truncated long-stitch escape")
			}
			dx = float64(int16(binary.LittleEndian.Uint16(body[i : i+2])))
			dy = float64(int16(binary.LittleEndian.Uint16(body[i+2 : i+4])))
			i += 4
		} else {
			by := int8(body[i])
			i++
			dx, dy = float64(bx), float64(by)
		}
		x += dx
		y += dy
		p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
	}
	return x, y, nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as VP3.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}

	sections := splitSections(norm)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(sections))); err != nil {
		return err
	}
	for _, sec := range sections {
		if err := writeThread(w, sec.thread); err != nil {
			return err
		}
		body, err := encodeBlock(sec.cmds)
		if err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	return nil
}

type section struct {
	thread stitchgo.Thread
	cmds   []stitchgo.Command
}

func splitSections(p *stitchgo.Pattern) []section {
	var out []section
	threadIdx := 0
	cur := section{}
	if len(p.Threadlist) > 0 {
		cur.thread = p.Threadlist[0]
		threadIdx = 1
	}
	for _, c := range p.Stitches {
		switch c.T {
		case stitchgo.ColorChange, stitchgo.Stop, stitchgo.NeedleSet:
			out = append(out, cur)
			cur = section{}
			if threadIdx < len(p.Threadlist) {
				cur.thread = p.Threadlist[threadIdx]
				threadIdx++
			}
		case stitchgo.End:
		default:
			if c.T.IsStitchLike() || c.T == stitchgo.Jump || c.T == stitchgo.Move {
				cur.cmds = append(cur.cmds, c)
			}
		}
	}
	out = append(out, cur)
	return out
}

func writeThread(w io.Writer, th stitchgo.Thread) error {
	if _, err := w.Write([]byte{th.R, th.G, th.B}); err != nil {
		return err
	}
	name := []byte(th.Name)
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	_, err := w.Write(name)
	return err
}

func encodeBlock(cmds []stitchgo.Command) ([]byte, error) {
	var x, y float64
	var out []byte
	for _, c := range cmds {
		dx, dy := c.X-x, c.Y-y
		if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
			rdx, rdy := round(dx), round(dy)
			if rdx < -32768 || rdx > 32767 || rdy < -32768 || rdy > 32767 {
				return nil, stitchgo.ErrInvariant("vp3: delta (%v,%v) exceeds long-stitch escape range after transcoding", dx, dy)
			}
			out = append(out, longStitchEscape)
			var buf [4]byte
			binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(rdx)))
			binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(rdy)))
			out = append(out, buf[:]...)
		} else {
			out = append(out, byte(int8(round(dx))), byte(int8(round(dy))))
		}
		x, y = c.X, c.Y
	}
	return out, nil
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
