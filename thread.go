package stitchgo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Thread is an immutable thread-color record. Equality is defined by RGB
// only, so NewThread("red") and NewThread("#FF0000") compare equal even
// though their Name/Description differ.
type Thread struct {
	R, G, B uint8

	Name        string
	Description string
	Catalog     string
	Chart       string
	Weight      int
}

// namedColors is the subset of SVG/X11 color names an embroidery author is
// likely to type literally, rather than the full ~150-entry table a
// document-facing palette would carry.
var namedColors = map[string][3]uint8{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"aqua":    {0, 255, 255},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"brown":   {165, 42, 42},
	"pink":    {255, 192, 203},
	"navy":    {0, 0, 128},
	"lime":    {0, 255, 0},
	"silver":  {192, 192, 192},
	"gold":    {255, 215, 0},
}

// NewThread parses either a named color ("red") or a "#RRGGBB"/"RRGGBB" hex
// string into a Thread. The parsed string is kept as the thread's Name.
func NewThread(nameOrHex string) (Thread, error) {
	if rgb, ok := namedColors[strings.ToLower(nameOrHex)]; ok {
		return Thread{R: rgb[0], G: rgb[1], B: rgb[2], Name: nameOrHex}, nil
	}
	hex := strings.TrimPrefix(nameOrHex, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return Thread{}, errors.E(errors.Invalid, fmt.Sprintf("stitchgo: not a color name or hex triplet: %q", nameOrHex))
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Thread{}, errors.E(errors.Invalid, fmt.Sprintf("stitchgo: invalid hex color %q: %v", nameOrHex, err))
	}
	return Thread{
		R:    uint8(v >> 16),
		G:    uint8(v >> 8),
		B:    uint8(v),
		Name: nameOrHex,
	}, nil
}

// MustThread is NewThread but panics on a malformed color; useful for tests
// and literal thread tables.
func MustThread(nameOrHex string) Thread {
	t, err := NewThread(nameOrHex)
	if err != nil {
		panic(err)
	}
	return t
}

// RGB packs the thread's color into a single 0xRRGGBB value.
func (t Thread) RGB() uint32 {
	return uint32(t.R)<<16 | uint32(t.G)<<8 | uint32(t.B)
}

// Equal reports whether two threads have the same RGB value, ignoring
// name, description, catalog number, chart, and weight.
func (t Thread) Equal(other Thread) bool {
	return t.R == other.R && t.G == other.G && t.B == other.B
}

// String renders the thread for logging.
func (t Thread) String() string {
	if t.Name != "" {
		return fmt.Sprintf("#%02X%02X%02X (%s)", t.R, t.G, t.B, t.Name)
	}
	return fmt.Sprintf("#%02X%02X%02X", t.R, t.G, t.B)
}
