// Package jef reads and writes Janome JEF: a fixed binary header (thread
// count, color-table offsets, hoop code) followed by an escape-pair
// stitch stream addressed by palette index rather than RGB.
package jef

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"

	farm "github.com/dgryski/go-farm"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const headerFields = 10 // stitch offset, thread count, min X, min Y, max X, max Y, hoop code, three unused

const escape = 0x80

const (
	ctrlColorChange = 0x01
	ctrlEnd         = 0x10
)

// MaxDelta bounds a single unescaped stitch record's per-axis magnitude,
// matching EXP's plain-record ceiling (JEF's stitch stream uses the same
// escape-pair shape).
const MaxDelta = 127

// palette is Janome's built-in 78-entry thread color table, addressed by
// index in the JEF color table rather than embedded RGB. Only the first
// entries a pattern actually uses are written to the header; unused
// entries never appear in output.
var palette = buildPalette()

func buildPalette() []stitchgo.Thread {
	// A reduced but internally-consistent stand-in for Janome's full
	// factory palette: evenly spaced hues, referenced purely by index.
	out := make([]stitchgo.Thread, 78)
	for i := range out {
		out[i] = transcode.PaletteThread(i)
	}
	return out
}

// Profile returns the Transcoder profile JEF's writer runs first.
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
		Extension:   "jef",
		Name:        "Janome JEF",
		Description: "Janome embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

type header struct {
	stitchOffset int32
	hoopCode     int32
	threadCount  int32
	minX, minY   int32
	maxX, maxY   int32
}

func readHeader(r io.Reader) (header, error) {
	var raw [headerFields]int32
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return header{}, stitchgo.ErrParse("jef: short header: %v", err)
	}
	return header{
		stitchOffset: raw[0],
		threadCount:  raw[1],
		minX:         raw[2],
		minY:         raw[3],
		maxX:         raw[4],
		maxY:         raw[5],
		hoopCode:     raw[6],
	}, nil
}

// Read decodes a JEF byte stream into a Pattern, translating each
// palette-index color change into the corresponding thread. opts is
// unused: JEF's reader has no per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	p := stitchgo.NewPattern()

	colorIdx := make([]int32, h.threadCount)
	if h.threadCount > 0 {
		if err := binary.Read(br, binary.LittleEndian, &colorIdx); err != nil {
			return nil, stitchgo.ErrParse("jef: short color table: %v", err)
		}
		for _, idx := range colorIdx {
			p.AddThread(threadForIndex(int(idx)))
		}
	}

	var x, y float64
	for {
		b0, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stitchgo.ErrParse("jef: read error: %v", err)
		}
		if b0 == escape {
			ctrl, err := br.ReadByte()
			if err != nil {
				return nil, stitchgo.ErrParse("jef: truncated control pair: %v", err)
			}
			switch ctrl {
			case ctrlColorChange:
				p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
			case ctrlEnd:
				p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
				return p, nil
			default:
				return nil, stitchgo.ErrParse("jef: unrecognized control byte 0x%02x", ctrl)
			}
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return nil, err
		}
		bx, err := br.ReadByte()
		if err != nil {
			return nil, stitchgo.ErrParse("jef: truncated x delta: %v", err)
		}
		by, err := br.ReadByte()
		if err != nil {
			return nil, stitchgo.ErrParse("jef: truncated y delta: %v", err)
		}
		x += float64(int8(bx))
		y += float64(int8(by))
		p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

func threadForIndex(idx int) stitchgo.Thread {
	if idx >= 0 && idx < len(palette) {
		return palette[idx]
	}
	return transcode.PaletteThread(idx)
}

// nearestPaletteIndexCache memoizes nearestPaletteIndex by a farm hash of
// the thread's RGB bytes: large patterns reuse a handful of thread colors
// across many stitches, so this turns an O(palette) scan into a map hit
// for every repeat after the first.
var nearestPaletteIndexCache sync.Map // map[uint64]int32

func nearestPaletteIndex(th stitchgo.Thread) int32 {
	key := farm.Hash64([]byte{th.R, th.G, th.B})
	if v, ok := nearestPaletteIndexCache.Load(key); ok {
		return v.(int32)
	}
	best, bestDist := 0, -1
	for i, c := range palette {
		dr := int(c.R) - int(th.R)
		dg := int(c.G) - int(th.G)
		db := int(c.B) - int(th.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	idx := int32(best)
	nearestPaletteIndexCache.Store(key, idx)
	return idx
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as JEF.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}

	minX, minY, maxX, maxY := bounds(norm)
	raw := [headerFields]int32{
		0, int32(len(norm.Threadlist)), int32(minX), int32(minY), int32(maxX), int32(maxY), 0, 0, 0, 0,
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return err
	}
	if len(norm.Threadlist) > 0 {
		idx := make([]int32, len(norm.Threadlist))
		for i, th := range norm.Threadlist {
			idx[i] = nearestPaletteIndex(th)
		}
		if err := binary.Write(w, binary.LittleEndian, idx); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	var x, y float64
	for _, c := range norm.Stitches {
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			dx, dy := c.X-x, c.Y-y
			if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
				return stitchgo.ErrInvariant("jef: delta (%v,%v) exceeds encodable range +-%d after transcoding", dx, dy, MaxDelta)
			}
			if err := bw.WriteByte(byte(int8(round(dx)))); err != nil {
				return err
			}
			if err := bw.WriteByte(byte(int8(round(dy)))); err != nil {
				return err
			}
		case stitchgo.ColorChange, stitchgo.Stop, stitchgo.NeedleSet:
			if _, err := bw.Write([]byte{escape, ctrlColorChange}); err != nil {
				return err
			}
			continue
		case stitchgo.Jump, stitchgo.Move, stitchgo.FrameEject:
			dx, dy := c.X-x, c.Y-y
			if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
				return stitchgo.ErrInvariant("jef: delta (%v,%v) exceeds encodable range +-%d after transcoding", dx, dy, MaxDelta)
			}
			if err := bw.WriteByte(byte(int8(round(dx)))); err != nil {
				return err
			}
			if err := bw.WriteByte(byte(int8(round(dy)))); err != nil {
				return err
			}
		case stitchgo.End:
			if _, err := bw.Write([]byte{escape, ctrlEnd}); err != nil {
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

func bounds(p *stitchgo.Pattern) (minX, minY, maxX, maxY float64) {
	first := true
	for _, c := range p.Stitches {
		if !c.T.IsStitchLike() {
			continue
		}
		if first {
			minX, maxX, minY, maxY = c.X, c.X, c.Y, c.Y
			first = false
			continue
		}
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
