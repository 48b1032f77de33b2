package gbwt

import (
	"errors"

	cockroacherrors "github.com/cockroachdb/errors"
)

// ErrDuplicateDictionaryEntry is logged (never returned) when a
// Dictionary is built or appended to with two equal strings; both ids
// remain usable, but only the first wins on Find.
var ErrDuplicateDictionaryEntry = errors.New("gbwt: dictionary contains duplicate strings")

// ErrVersionMismatch is wrapped and returned by ReadMetadata when the
// stream's tag or version/flags combination does not pass Check.
var ErrVersionMismatch = errors.New("gbwt: metadata tag or version mismatch")

// ErrTruncatedStream is wrapped and returned by ReadRecordArray when
// the input ends before its header or data bytes have been fully read.
// The other Read functions wrap the underlying I/O error instead.
var ErrTruncatedStream = errors.New("gbwt: truncated stream")

func truncatedf(format string, args ...interface{}) error {
	return cockroacherrors.Wrapf(ErrTruncatedStream, format, args...)
}
