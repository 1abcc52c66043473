package txt

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the parse error taxonomy. Each sentinel wraps its
// parent, so errors.Is(err, ErrParse) matches any parse failure while more
// specific sentinels narrow the match:
//
//	ErrParse
//	├── ErrHeaders
//	│   └── ErrMissingRequiredHeader
//	├── ErrTrack
//	│   └── ErrInvalidChar
//	│       ├── ErrInvalidNote
//	│       └── ErrInvalidLineBreak
//	└── ErrInvalidTrack
var (
	// ErrParse is the root of all song text parse errors.
	ErrParse = errors.New("txt: parse error")
	// ErrHeaders indicates a malformed header block.
	ErrHeaders = fmt.Errorf("invalid headers: %w", ErrParse)
	// ErrMissingRequiredHeader indicates TITLE or ARTIST is absent.
	ErrMissingRequiredHeader = fmt.Errorf("required header missing: %w", ErrHeaders)
	// ErrTrack indicates a malformed track body line.
	ErrTrack = fmt.Errorf("invalid track line: %w", ErrParse)
	// ErrInvalidChar indicates a character outside the permitted set for a field.
	ErrInvalidChar = fmt.Errorf("invalid character: %w", ErrTrack)
	// ErrInvalidNote indicates a note line that could not be parsed.
	ErrInvalidNote = fmt.Errorf("invalid note: %w", ErrInvalidChar)
	// ErrInvalidLineBreak indicates a line break that could not be parsed or
	// that starts before the notes preceding it have ended.
	ErrInvalidLineBreak = fmt.Errorf("invalid line break: %w", ErrInvalidChar)
	// ErrInvalidTrack indicates a structurally inconsistent body, e.g. an
	// empty track or a P2 section with no preceding P1.
	ErrInvalidTrack = fmt.Errorf("inconsistent track: %w", ErrParse)
)

// ParseError carries the location and field context of a parse failure.
// Use errors.As() to extract it and errors.Is() against the sentinels above
// to classify it:
//
//	var perr *txt.ParseError
//	if errors.As(err, &perr) {
//		fmt.Printf("line %d: %v\n", perr.Line, perr.Err)
//	}
type ParseError struct {
	// Line is the 1-based line number in the input, or 0 if not applicable.
	Line int
	// Field names the field being parsed ("start", "pitch", ...), if any.
	Field string
	// Char is the offending rune for character-set violations.
	Char rune
	// Msg describes the failure.
	Msg string
	// Err is the taxonomy sentinel this error belongs to.
	Err error
}

// Error returns a string representation of the parse error.
func (e *ParseError) Error() string {
	s := e.Err.Error()
	if e.Line > 0 {
		s = fmt.Sprintf("line %d: %s", e.Line, s)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Char != 0 {
		s += fmt.Sprintf(": %q", e.Char)
	}
	if e.Field != "" {
		s += " in " + e.Field
	}
	return s
}

// Unwrap returns the taxonomy sentinel for use with errors.Is() and errors.As().
func (e *ParseError) Unwrap() error { return e.Err }

func errHeaders(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...), Err: ErrHeaders}
}

func errRequiredHeader(key string) error {
	return &ParseError{Msg: key, Err: ErrMissingRequiredHeader}
}

func errTrack(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...), Err: ErrTrack}
}

func errChar(line int, field string, char rune) error {
	return &ParseError{Line: line, Field: field, Char: char, Err: ErrInvalidChar}
}

func errNote(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidNote}
}

func errLineBreak(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidLineBreak}
}

func errInvalidTrack(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidTrack}
}
