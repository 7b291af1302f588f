// Package pec reads and writes Brother PEC, the inner stitch section
// used standalone or wrapped by PES: a small built-in palette referenced
// by index, and two-byte delta records with a 12-bit signed extension
// form for deltas past +-63.
package pec

import (
	"bufio"
	"io"
	"sync"

	farm "github.com/dgryski/go-farm"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const (
	ctrlColorChange = 0xFE
	ctrlStop        = 0xFD
	ctrlEnd         = 0xFF
	extensionFlag   = 0x80
	shortRange      = 63
	// The extension form's first byte carries extensionFlag in its top
	// bit and the high nibble of a 12-bit two's-complement field (sign
	// in bit 3) in its low bits; that field carries +-2047.
	longRange = 2047
)

// Profile returns the Transcoder profile PEC's writer runs first.
func Profile() transcode.Profile {
	p := transcode.DefaultProfile()
	p.MaxStitch = longRange
	p.MaxJump = longRange
	p.Round = true
	p.LongStitchContingency = transcode.LongStitchNone
	p.SupportsStop = false
	p.SupportsFrameEject = false
	return p
}

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "pec",
		Name:        "Brother PEC",
		Description: "Brother embroidery stitch file (inner PEC section)",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Palette is Brother's built-in, index-addressed factory palette.
var Palette = buildPalette()

func buildPalette() []stitchgo.Thread {
	out := make([]stitchgo.Thread, 65)
	for i := range out {
		out[i] = transcode.PaletteThread(i)
	}
	return out
}

// nearestPaletteIndexCache memoizes nearestPaletteIndex by a farm hash of
// the thread's RGB bytes, so repeated colors across a large pattern skip
// the linear palette scan.
var nearestPaletteIndexCache sync.Map // map[uint64]byte

func nearestPaletteIndex(th stitchgo.Thread) byte {
	key := farm.Hash64([]byte{th.R, th.G, th.B})
	if v, ok := nearestPaletteIndexCache.Load(key); ok {
		return v.(byte)
	}
	best, bestDist := 0, -1
	for i, c := range Palette {
		dr, dg, db := int(c.R)-int(th.R), int(c.G)-int(th.G), int(c.B)-int(th.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	idx := byte(best)
	nearestPaletteIndexCache.Store(key, idx)
	return idx
}

// ReadColorIndexes reads a leading palette-index list of the given count
// (PES stores this count in its header; standalone PEC callers supply
// it however they tracked it). Exported so encoding/pes can share it.
func ReadColorIndexes(r io.Reader, count int) ([]stitchgo.Thread, error) {
	out := make([]stitchgo.Thread, count)
	buf := make([]byte, count)
	if count > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, stitchgo.ErrParse("pec: short color index list: %v", err)
		}
	}
	for i, idx := range buf {
		if int(idx) < len(Palette) {
			out[i] = Palette[idx]
		} else {
			out[i] = transcode.PaletteThread(int(idx))
		}
	}
	return out, nil
}

// WriteColorIndexes writes the palette-index form of threads, for
// PES's shared header section.
func WriteColorIndexes(w io.Writer, threads []stitchgo.Thread) error {
	buf := make([]byte, len(threads))
	for i, th := range threads {
		buf[i] = nearestPaletteIndex(th)
	}
	_, err := w.Write(buf)
	return err
}

// Read decodes a standalone PEC stitch stream into a Pattern. The
// threadlist is left empty: raw PEC read this way has no enclosing PES
// header to supply a palette (encoding/pes reads that palette itself and
// passes it to ReadStitches). opts is unused: PEC's reader has no
// per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	return ReadStitches(r, nil)
}

// ReadStitches decodes the stitch body only, attaching the given
// pre-resolved threadlist (supplied by encoding/pes, which reads the
// palette from its own header before delegating here).
func ReadStitches(r io.Reader, threads []stitchgo.Thread) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	p := stitchgo.NewPattern()
	for _, th := range threads {
		p.AddThread(th)
	}
	var x, y float64
	for {
		b0, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stitchgo.ErrParse("pec: read error: %v", err)
		}
		if b0 == ctrlColorChange {
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
			continue
		}
		if b0 == ctrlStop {
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stop})
			continue
		}
		if b0 == ctrlEnd {
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
			return p, nil
		}
		dx, err := decodeAxis(br, b0)
		if err != nil {
			return nil, err
		}
		b1, err := br.ReadByte()
		if err != nil {
			return nil, stitchgo.ErrParse("pec: truncated stitch record: %v", err)
		}
		dy, err := decodeAxis(br, b1)
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

func decodeAxis(br *bufio.Reader, first byte) (float64, error) {
	if first&extensionFlag == 0 {
		v := int(first & 0x7F)
		if v > shortRange {
			v -= 128
		}
		return float64(v), nil
	}
	second, err := br.ReadByte()
	if err != nil {
		return 0, stitchgo.ErrParse("pec: truncated 12-bit extension: %v", err)
	}
	v := (int(first&0x0F) << 8) | int(second)
	if first&0x08 != 0 {
		v -= 1 << 12
	}
	return float64(v), nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes its stitch body as PEC (no header; encoding/pes supplies
// the wrapping header and its own call to WriteColorIndexes for the
// palette).
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}
	return WriteStitches(norm, w)
}

// WriteStitches encodes only the stitch body (no palette), for callers
// that already ran the Transcoder and manage their own header/palette.
func WriteStitches(norm *stitchgo.Pattern, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var x, y float64
	for _, c := range norm.Stitches {
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			if err := writeAxisPair(bw, c.X-x, c.Y-y); err != nil {
				return err
			}
		case stitchgo.Jump, stitchgo.Move, stitchgo.FrameEject:
			if err := writeAxisPair(bw, c.X-x, c.Y-y); err != nil {
				return err
			}
		case stitchgo.ColorChange, stitchgo.NeedleSet:
			if err := bw.WriteByte(ctrlColorChange); err != nil {
				return err
			}
			continue
		case stitchgo.Stop:
			if err := bw.WriteByte(ctrlStop); err != nil {
				return err
			}
			continue
		case stitchgo.End:
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

func writeAxisPair(bw *bufio.Writer, dx, dy float64) error {
	a, err := encodeAxis(dx)
	if err != nil {
		return err
	}
	b, err := encodeAxis(dy)
	if err != nil {
		return err
	}
	if _, err := bw.Write(a); err != nil {
		return err
	}
	_, err = bw.Write(b)
	return err
}

func encodeAxis(delta float64) ([]byte, error) {
	v := round(delta)
	if v >= -(shortRange+1) && v <= shortRange {
		return []byte{byte(v & 0x7F)}, nil
	}
	if v < -longRange || v > longRange {
		return nil, stitchgo.ErrInvariant("pec: delta %v exceeds 12-bit encodable range +-%d after transcoding", delta, longRange)
	}
	u := v
	if v < 0 {
		u = v + (1 << 12)
	}
	hi := byte((u>>8)&0x0F) | extensionFlag
	if v < 0 {
		hi |= 0x08
	}
	lo := byte(u & 0xFF)
	return []byte{hi, lo}, nil
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
