package txt

import "strings"

// lineKind classifies a raw input line by its leading character.
type lineKind int

const (
	lineBlank lineKind = iota
	lineHeader
	lineNote
	lineLineBreak
	lineVoice
	lineEnd
)

// classifyLine determines the record kind of a single line. Blank lines are
// recognized so callers can skip them; any other line whose leading character
// is outside the sigil set is a track parse error.
func classifyLine(l numberedLine) (lineKind, error) {
	if strings.TrimSpace(l.text) == "" {
		return lineBlank, nil
	}
	switch l.text[0] {
	case '#':
		return lineHeader, nil
	case ':', '*', 'F', 'R', 'G':
		return lineNote, nil
	case '-':
		return lineLineBreak, nil
	case 'P':
		return lineVoice, nil
	case 'E':
		return lineEnd, nil
	}
	return 0, errTrack(l.no, "unrecognized line %q", l.text)
}

// numberedLine pairs a line with its 1-based position in the input.
type numberedLine struct {
	no   int
	text string
}
