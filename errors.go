package stitchgo

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Error taxonomy, expressed as github.com/grailbio/base/errors Kind
// values rather than bespoke sentinel errors:
//
//   - I/O-missing      -> errors.NotExist    (file absent, unknown extension)
//   - I/O-unsupported  -> errors.NotSupported (extension known, no reader/writer)
//   - parse            -> errors.Invalid     (malformed bytes, truncated record)
//   - invariant        -> errors.Precondition (internal; should be unreachable)
//
// Callers that need to distinguish these from each other (rather than just
// logging and propagating) can type-assert to *errors.Error and compare
// its Kind field.

// ErrMissing reports an I/O-missing error: the referenced file or extension
// does not exist.
func ErrMissing(format string, args ...interface{}) error {
	return errors.E(errors.NotExist, fmt.Sprintf(format, args...))
}

// ErrUnsupported reports an I/O-unsupported error: the extension is known
// to the catalog but has no reader or writer for the requested direction.
func ErrUnsupported(format string, args ...interface{}) error {
	return errors.E(errors.NotSupported, fmt.Sprintf(format, args...))
}

// ErrParse reports a parse error: the input bytes are malformed for the
// format being decoded.
func ErrParse(format string, args ...interface{}) error {
	return errors.E(errors.Invalid, fmt.Sprintf(format, args...))
}

// ErrInvariant reports an internal invariant violation -- a profile was
// violated by an author-supplied pattern after transcoding. This should be
// unreachable; it exists so a bug fails loudly instead of corrupting
// output silently.
func ErrInvariant(format string, args ...interface{}) error {
	return errors.E(errors.Precondition, fmt.Sprintf(format, args...))
}
