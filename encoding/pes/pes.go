// Package pes reads and writes Brother PES: a header carrying a version
// string ("#PES0001".."#PES0060") and hoop metadata, wrapping an
// embedded PEC section for the actual stitch data.
package pes

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cpjet64/stitchgo"
	"github.com/cpjet64/stitchgo/encoding/pec"
	"github.com/cpjet64/stitchgo/transcode"
)

// DefaultVersion is the PES version string written when the caller
// doesn't specify one.
const DefaultVersion = "#PES0060"

// resolveVersion expands a short-form version name ("6t") to its full
// 8-byte header string, and falls back to DefaultVersion when version is
// empty.
func resolveVersion(version string) string {
	switch version {
	case "":
		return DefaultVersion
	case "6t":
		return "#PES0060"
	default:
		return version
	}
}

// versionSupportsStop reports whether this PES version preserves STOP
// commands natively rather than lowering them to COLOR_CHANGE. Per the
// format's own history, only the "6t"-era PEC section (the one embedded
// from PES version 0060 onward in this codec's numbering) does.
func versionSupportsStop(version string) bool {
	return version == "#PES0060"
}

// Profile returns the Transcoder profile PES's writer runs first,
// parameterized by version since STOP support depends on it.
func Profile(version string) transcode.Profile {
	p := pec.Profile()
	p.SupportsStop = versionSupportsStop(version)
	return p
}

func init() {
	stitchgo.Register(stitchgo.FormatDescriptor{
		Extension:   "pes",
		Name:        "Brother PES",
		Description: "Brother embroidery stitch file (PES wrapper over PEC)",
		Category:    "embroidery",
		ReadFunc:    Read,
		WriteFunc:   Write,
	})
}

// Read decodes a PES byte stream: the version header, the hoop name,
// the embedded palette, and then delegates the stitch body to PEC. opts
// is unused: the version is always taken from the file itself.
func Read(r io.Reader, _ stitchgo.Options) (*stitchgo.Pattern, error) {
	br := bufio.NewReader(r)
	version := make([]byte, 8)
	if _, err := io.ReadFull(br, version); err != nil {
		return nil, stitchgo.ErrParse("pes: short version header: %v", err)
	}

	var hoopLen uint16
	if err := binary.Read(br, binary.LittleEndian, &hoopLen); err != nil {
		return nil, stitchgo.ErrParse("pes: short hoop name length: %v", err)
	}
	hoop := make([]byte, hoopLen)
	if hoopLen > 0 {
		if _, err := io.ReadFull(br, hoop); err != nil {
			return nil, stitchgo.ErrParse("pes: short hoop name: %v", err)
		}
	}

	var colorCount uint16
	if err := binary.Read(br, binary.LittleEndian, &colorCount); err != nil {
		return nil, stitchgo.ErrParse("pes: short color count: %v", err)
	}
	threads, err := pec.ReadColorIndexes(br, int(colorCount))
	if err != nil {
		return nil, err
	}

	p, err := pec.ReadStitches(br, threads)
	if err != nil {
		return nil, err
	}
	p.Metadata["version"] = string(version)
	if hoopLen > 0 {
		p.Metadata["hoop"] = string(hoop)
	}
	return p, nil
}

// Write normalizes p with Profile, parameterized by opts.Version (which
// accepts the short form "6t" as well as a full "#PES00NN" string, and
// defaults to DefaultVersion), overridden by any other fields opts sets,
// and encodes it as PES.
func Write(w io.Writer, p *stitchgo.Pattern, opts stitchgo.Options) error {
	version := resolveVersion(opts.Version)
	if len(version) != 8 {
		return stitchgo.ErrInvariant("pes: version %q must be exactly 8 bytes (e.g. %q)", version, DefaultVersion)
	}

	norm, err := transcode.Transcode(p, transcode.ApplyOptions(Profile(version), opts))
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte(version)); err != nil {
		return err
	}
	hoop := []byte(p.Metadata["hoop"])
	if err := binary.Write(w, binary.LittleEndian, uint16(len(hoop))); err != nil {
		return err
	}
	if _, err := w.Write(hoop); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(norm.Threadlist))); err != nil {
		return err
	}
	if err := pec.WriteColorIndexes(w, norm.Threadlist); err != nil {
		return err
	}
	return pec.WriteStitches(norm, w)
}

// SupportedVersions lists the version strings this codec recognizes as
// valid PES headers, per the format's documented "#PES0001".."#PES0060"
// range.
func SupportedVersions() []string {
	out := make([]string, 60)
	for i := range out {
		out[i] = fmt.Sprintf("#PES%04d", i+1)
	}
	return out
}
