package songsync

import (
	"songsync/library"
	"songsync/meta"
	"songsync/retry"
	"songsync/txt"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, songsync.ErrInvalidLineBreak) {
//		fmt.Println("line break before the notes end")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var perr *songsync.ParseError
//	if errors.As(err, &perr) {
//		fmt.Printf("line %d: %v\n", perr.Line, perr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ParseError carries line and field context of a txt parse failure.
	ParseError = txt.ParseError
	// MetaError wraps sidecar errors with operation and path context.
	MetaError = meta.MetaError
	// LibraryError wraps library index errors with operation context.
	LibraryError = library.LibraryError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors exported from sub-packages.
var (
	// Txt parse taxonomy
	// ErrParse is the root of all song text parse errors.
	ErrParse = txt.ErrParse
	// ErrHeaders indicates a malformed header block.
	ErrHeaders = txt.ErrHeaders
	// ErrMissingRequiredHeader indicates TITLE or ARTIST is absent.
	ErrMissingRequiredHeader = txt.ErrMissingRequiredHeader
	// ErrTrack indicates a malformed track body line.
	ErrTrack = txt.ErrTrack
	// ErrInvalidChar indicates a character outside a field's permitted set.
	ErrInvalidChar = txt.ErrInvalidChar
	// ErrInvalidNote indicates an unparsable note line.
	ErrInvalidNote = txt.ErrInvalidNote
	// ErrInvalidLineBreak indicates an unparsable or misplaced line break.
	ErrInvalidLineBreak = txt.ErrInvalidLineBreak
	// ErrInvalidTrack indicates a structurally inconsistent body.
	ErrInvalidTrack = txt.ErrInvalidTrack

	// Metadata errors
	// ErrMetaFileTooNew indicates a sidecar written by a newer schema version.
	ErrMetaFileTooNew = meta.ErrMetaFileTooNew
	// ErrMetaCorrupt indicates an undecodable sidecar.
	ErrMetaCorrupt = meta.ErrMetaCorrupt
	// ErrInvalidCustomKey indicates a rejected custom data key.
	ErrInvalidCustomKey = meta.ErrInvalidCustomKey

	// Library errors
	// ErrNotFound indicates the song is not in the library index.
	ErrNotFound = library.ErrNotFound
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like retry.ErrSongNotFound.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
