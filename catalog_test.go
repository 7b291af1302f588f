package stitchgo

import (
	"io"
	"testing"
)

func init() {
	Register(FormatDescriptor{
		Extension:   "tst",
		Name:        "test format",
		Description: "round-trips a single metadata marker, for catalog tests only",
		Category:    "test",
		ReadFunc: func(r io.Reader, opts Options) (*Pattern, error) {
			b, err := io.ReadAll(r)
			if err != nil {
				return nil, err
			}
			p := NewPattern()
			p.Metadata["payload"] = string(b)
			if opts.Version != "" {
				p.Metadata["version"] = opts.Version
			}
			return p, nil
		},
		WriteFunc: func(w io.Writer, p *Pattern, opts Options) error {
			_, err := w.Write([]byte(p.Metadata["payload"]))
			return err
		},
	})
}

func TestSupportedFormatsIncludesRegistered(t *testing.T) {
	found := false
	for _, d := range SupportedFormats() {
		if d.Extension == "tst" {
			found = true
		}
	}
	if !found {
		t.Fatal("registered test format missing from SupportedFormats")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/design.tst"
	p := NewPattern()
	p.Metadata["payload"] = "hello"
	if err := Write(p, path); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["payload"] != "hello" {
		t.Fatalf("got %q, want %q", got.Metadata["payload"], "hello")
	}
}

func TestReadWriteOptionsThreadThroughCatalog(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/design.tst"
	p := NewPattern()
	p.Metadata["payload"] = "hello"
	if err := Write(p, path); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path, Options{Version: "example-version"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["version"] != "example-version" {
		t.Fatalf("opts did not reach ReadFunc: got %q", got.Metadata["version"])
	}
}

func TestReadUnknownExtension(t *testing.T) {
	_, err := Read("design.nope-a-real-format")
	if err == nil {
		t.Fatal("expected error for unknown extension")
	}
}
