// Package txt parses, fixes and serializes karaoke song text files.
//
// A song text file is a header block of '#KEY:VALUE' lines followed by a
// stream of note, line-break and voice-marker lines, terminated by 'E'.
// Parsing is pure and never touches the file system; the parse, fix and
// serialize steps are safe to run concurrently on independent songs.
//
// The round-trip law: for input already in canonical (fixed) form,
// Parse followed by String reproduces the input byte for byte, including
// the newline style.
package txt

import "strings"

// SongTxt is the structured representation of one song text file.
type SongTxt struct {
	Headers *Headers
	Tracks  *Tracks

	newline string
}

// Parse parses a full song text file. The error, if any, unwraps to one of
// the package's sentinel errors and carries line context via *ParseError.
func Parse(s string) (*SongTxt, error) {
	nl := detectNewline(s)
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]numberedLine, len(raw))
	for i, text := range raw {
		lines[i] = numberedLine{no: i + 1, text: text}
	}

	headers, consumed, err := parseHeaders(lines)
	if err != nil {
		return nil, err
	}
	tracks, err := parseTracks(lines[consumed:])
	if err != nil {
		return nil, err
	}
	return &SongTxt{Headers: headers, Tracks: tracks, newline: nl}, nil
}

// ParseBytes decodes raw file content (UTF-8, optionally with a BOM, or
// legacy Windows-1252) and parses it.
func ParseBytes(data []byte) (*SongTxt, error) {
	s, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return Parse(s)
}

// TryParse parses s and reports success instead of returning an error.
// It never panics and no parse error escapes.
func TryParse(s string) (*SongTxt, bool) {
	t, err := Parse(s)
	if err != nil {
		return nil, false
	}
	return t, true
}

// Newline returns the newline style used for serialization.
func (t *SongTxt) Newline() string {
	if t.newline == "" {
		return "\n"
	}
	return t.newline
}

// SetNewline overrides the newline style ("\n" or "\r\n"). Anything else is
// ignored.
func (t *SongTxt) SetNewline(nl string) {
	if nl == "\n" || nl == "\r\n" {
		t.newline = nl
	}
}

// detectNewline returns the dominant newline style of s.
func detectNewline(s string) string {
	crlf := strings.Count(s, "\r\n")
	if crlf == 0 {
		return "\n"
	}
	lf := strings.Count(s, "\n") - crlf
	if crlf >= lf {
		return "\r\n"
	}
	return "\n"
}
