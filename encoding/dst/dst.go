// Package dst reads and writes Tajima DST: a 512-byte ASCII header
// followed by 3-byte stitch records (a signed delta per axis plus a
// one-hot control byte), with no embedded thread palette.
package dst

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/transcode"
)

const headerSize = 512

// Control-byte flags. Exactly one of Stitch/ColorChange/Jump/Sequin/End
// is set per record (a one-hot control byte, not the fully bit-packed
// ternary scheme some other Tajima-derived tools use).
const (
	ctrlStitch      = 0x01
	ctrlColorChange = 0x02
	ctrlJump        = 0x04
	ctrlSequin      = 0x08
	ctrlEnd         = 0x80
)

// MaxDelta is the largest per-axis, per-record signed delta this codec's
// record shape can carry; it sets the ceiling for Profile's MaxStitch.
const MaxDelta = 121

// Profile returns the Transcoder profile DST's writer runs before
// encoding: max_stitch/max_jump of 121 (per the format's long-established
// safe single-record distance), JUMP_NEEDLE contingency for anything
// longer, integer coordinates, and no native STOP or FRAME_EJECT (DST's
// only control records are COLOR_CHANGE, JUMP, SEQUIN, END).
func Profile() transcode.Profile {
	p := transcode.DefaultProfile()
	p.MaxStitch = MaxDelta
	p.MaxJump = MaxDelta
	p.Round = true
	p.LongStitchContingency = transcode.LongStitchJumpNeedle
	p.SupportsStop = false
	p.SupportsFrameEject = false
	return p
}

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "dst",
		Name:        "Tajima DST",
		Description: "Tajima embroidery stitch file",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Read decodes a DST byte stream into a Pattern. The returned threadlist
// is always empty; DST carries no palette. opts is unused: DST's reader
// has no per-call overrides.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, stitchgo.ErrParse("dst: short header: %v", errors.Wrap(err, "while reading DST header"))
	}
	p := stitchgo.NewPattern()
	p.Metadata = parseHeader(header)

	var x, y float64
	rec := make([]byte, 3)
	for {
		if _, err := io.ReadFull(br, rec); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, stitchgo.ErrParse("dst: truncated stitch record: %v", err)
		}
		dx, dy, ctrl := int8(rec[0]), int8(rec[1]), rec[2]
		x += float64(dx)
		y += float64(dy)
		switch {
		case ctrl&ctrlEnd != 0:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
			return p, nil
		case ctrl&ctrlColorChange != 0:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.ColorChange})
		case ctrl&ctrlJump != 0:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Jump})
		case ctrl&ctrlSequin != 0:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.SequinEject})
		default:
			p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.Stitch})
		}
	}
	p.Append(stitchgo.Command{X: x, Y: y, T: stitchgo.End})
	return p, nil
}

// Write normalizes p with Profile, overridden by any fields opts sets,
// and encodes it as DST.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(), opts))
	if err != nil {
		return err
	}
	stitchCount, colorCount, minX, minY, maxX, maxY := stats(norm)
	if _, err := w.Write(buildHeader(norm, stitchCount, colorCount, minX, minY, maxX, maxY)); err != nil {
		return err
	}

	var x, y float64
	for _, c := range norm.Stitches {
		var ctrl byte
		switch c.T {
		case stitchgo.Stitch, stitchgo.LongStitch, stitchgo.AlternatingStitch, stitchgo.SewTo:
			ctrl = ctrlStitch
		case stitchgo.ColorChange, stitchgo.Stop, stitchgo.NeedleSet:
			ctrl = ctrlColorChange
		case stitchgo.Jump, stitchgo.Move, stitchgo.FrameEject:
			ctrl = ctrlJump
		case stitchgo.SequinEject:
			ctrl = ctrlSequin
		case stitchgo.End:
			ctrl = ctrlEnd
		default:
			continue // TRIM, TIE_ON/OFF, SEQUIN_MODE, SLOW/FAST: no DST record.
		}
		dx := c.X - x
		dy := c.Y - y
		if dx > MaxDelta || dx < -MaxDelta || dy > MaxDelta || dy < -MaxDelta {
			return stitchgo.ErrInvariant("dst: delta (%v,%v) exceeds encodable range +-%d after transcoding", dx, dy, MaxDelta)
		}
		if _, err := w.Write([]byte{byte(int8(roundDelta(dx))), byte(int8(roundDelta(dy))), ctrl}); err != nil {
			return err
		}
		x, y = c.X, c.Y
	}
	return nil
}

func roundDelta(d float64) int {
	if d >= 0 {
		return int(d + 0.5)
	}
	return -int(-d + 0.5)
}

func stats(p *stitchgo.Pattern) (stitchCount, colorCount int, minX, minY, maxX, maxY float64) {
	var x, y float64
	first := true
	for _, c := range p.Stitches {
		if c.T.IsStitchLike() {
			x, y = c.X, c.Y
			stitchCount++
		}
		if c.T == stitchgo.ColorChange {
			colorCount++
		}
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return
}

func buildHeader(p *stitchgo.Pattern, stitchCount, colorCount int, minX, minY, maxX, maxY float64) []byte {
	label := p.Metadata["LA"]
	if label == "" {
		label = "stitchgo"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "LA:%-16s\r", truncate(label, 16))
	fmt.Fprintf(&b, "ST:%7d\r", stitchCount)
	fmt.Fprintf(&b, "CO:%3d\r", colorCount+1)
	fmt.Fprintf(&b, "+X:%5d\r", int(maxX))
	fmt.Fprintf(&b, "-X:%5d\r", int(-minX))
	fmt.Fprintf(&b, "+Y:%5d\r", int(maxY))
	fmt.Fprintf(&b, "-Y:%5d\r", int(-minY))
	fmt.Fprintf(&b, "AX:%+6d\r", int(maxX+minX))
	fmt.Fprintf(&b, "AY:%+6d\r", int(maxY+minY))
	fmt.Fprintf(&b, "MX:%+6d\r", 0)
	fmt.Fprintf(&b, "MY:%+6d\r", 0)
	fmt.Fprintf(&b, "PD:******\r")
	header := make([]byte, headerSize)
	copy(header, b.String())
	for i := b.Len(); i < headerSize; i++ {
		header[i] = ' '
	}
	header[headerSize-1] = 0x1a
	return header
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// parseHeader splits the first headerSize bytes into "KEY:VALUE" fields
// separated by \r, storing each as Metadata[KEY]=VALUE (trimmed).
func parseHeader(header []byte) map[string]string {
	m := make(map[string]string)
	for _, field := range strings.Split(string(header), "\r") {
		field = strings.TrimRight(field, " \x1a\x00")
		if field == "" {
			continue
		}
		idx := strings.IndexByte(field, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(field[:idx])
		val := strings.TrimSpace(field[idx+1:])
		if key != "" {
			m[key] = val
		}
	}
	return m
}
