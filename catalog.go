package stitchgo

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

// FormatDescriptor describes one registered file format: its canonical
// extension, any recognized aliases, a human name and category, and the
// functions that turn bytes into a Pattern and back. Either direction may
// be nil, in which case Read or Write reports an I/O-unsupported error
// for that extension.
type FormatDescriptor struct {
	Extension   string
	Extensions  []string // recognized aliases for Extension, if any
	Name        string
	Description string
	Category    string
	ReadFunc    func(r io.Reader, opts Options) (*Pattern, error)
	WriteFunc   func(w io.Writer, p *Pattern, opts Options) error
}

// extNode adapts FormatDescriptor to llrb.Comparable so the registry can be
// kept as an ordered tree, walked in extension order by SupportedFormats.
// key holds the extension this particular node is indexed under: the
// descriptor's canonical Extension for the primary node, or one of its
// Extensions for an alias node.
type extNode struct {
	FormatDescriptor
	key string
}

func (n *extNode) Compare(other llrb.Comparable) int {
	return strings.Compare(n.key, other.(*extNode).key)
}

var registry = &llrb.Tree{}

// Register adds or replaces the descriptor for d.Extension, and indexes
// every entry in d.Extensions as an alias resolving to the same
// descriptor. Codec packages call this from an init func so importing
// them for side effect (or importing the root package's convenience
// subpackages) is enough to make them available through Read/Write.
func Register(d FormatDescriptor) {
	d.Extension = strings.ToLower(d.Extension)
	for i, alias := range d.Extensions {
		d.Extensions[i] = strings.ToLower(alias)
	}
	registry.Insert(&extNode{FormatDescriptor: d, key: d.Extension})
	for _, alias := range d.Extensions {
		registry.Insert(&extNode{FormatDescriptor: d, key: alias})
	}
	log.Debug.Printf("stitchgo: registered format %s (%s)", d.Extension, d.Name)
}

// lookup returns the descriptor for ext (without its leading dot), or
// false. ext may be a format's canonical extension or one of its aliases.
func lookup(ext string) (FormatDescriptor, bool) {
	ext = strings.ToLower(ext)
	probe := &extNode{key: ext}
	got := registry.Get(probe)
	if got == nil {
		return FormatDescriptor{}, false
	}
	return got.(*extNode).FormatDescriptor, true
}

// SupportedFormats returns the registered descriptors in extension order,
// one entry per format (alias nodes are not repeated).
func SupportedFormats() []FormatDescriptor {
	var out []FormatDescriptor
	registry.Do(func(c llrb.Comparable) bool {
		n := c.(*extNode)
		if n.key == n.Extension {
			out = append(out, n.FormatDescriptor)
		}
		return false
	})
	return out
}

// suggestExtension finds the registered extension closest to ext by
// Jaro-Winkler similarity, for use in "unknown extension, did you mean"
// error messages. Returns "" if the registry is empty.
func suggestExtension(ext string) string {
	best := ""
	var bestScore float64
	for _, d := range SupportedFormats() {
		score := matchr.JaroWinkler(ext, d.Extension, true)
		if score > bestScore {
			bestScore = score
			best = d.Extension
		}
	}
	return best
}

func extensionOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// optionsArg returns the first element of opts, or the zero Options if
// the caller passed none. Read and Write accept opts as a trailing
// variadic so existing callers that don't need per-call overrides keep
// calling them with no third argument.
func optionsArg(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

// Read opens path, dispatches on its extension to a registered format
// reader, and returns the decoded Pattern. The returned Pattern has not been
// passed through a Transcoder -- it carries whatever the format's reader
// produced, authoring-only tags included if the reader emits any. opts is
// optional; omit it to use each format's defaults.
func Read(path string, opts ...Options) (*Pattern, error) {
	ext := extensionOf(path)
	d, ok := lookup(ext)
	if !ok {
		if s := suggestExtension(ext); s != "" {
			return nil, ErrMissing("stitchgo: unknown extension %q for %s (did you mean %q?)", ext, path, s)
		}
		return nil, ErrMissing("stitchgo: unknown extension %q for %s", ext, path)
	}
	if d.ReadFunc == nil {
		return nil, ErrUnsupported("stitchgo: format %s has no reader", d.Name)
	}
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Kind == errors.NotExist {
			return nil, err
		}
		return nil, errors.E(errors.NotExist, err, path)
	}
	defer f.Close(ctx) // nolint: errcheck
	return d.ReadFunc(f.Reader(ctx), optionsArg(opts))
}

// Write encodes p using the format registered for path's extension and
// writes it to path, creating or truncating the file. opts is optional;
// omit it to use each format's defaults.
func Write(p *Pattern, path string, opts ...Options) error {
	ext := extensionOf(path)
	d, ok := lookup(ext)
	if !ok {
		if s := suggestExtension(ext); s != "" {
			return ErrMissing("stitchgo: unknown extension %q for %s (did you mean %q?)", ext, path, s)
		}
		return ErrMissing("stitchgo: unknown extension %q for %s", ext, path)
	}
	if d.WriteFunc == nil {
		return ErrUnsupported("stitchgo: format %s has no writer", d.Name)
	}
	ctx := vcontext.Background()
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(errors.Invalid, err, path)
	}
	if err := d.WriteFunc(f.Writer(ctx), p, optionsArg(opts)); err != nil {
		_ = f.Close(ctx)
		return err
	}
	return f.Close(ctx)
}
