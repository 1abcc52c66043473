package txt

import (
	"log"
	"strconv"
	"strings"
	"unicode"
)

// NoteKind is the closed set of note kinds. The zero value is a regular note.
type NoteKind int8

const (
	// NoteRegular is a plain sung note (':').
	NoteRegular NoteKind = iota
	// NoteGolden is a bonus-scoring note ('*').
	NoteGolden
	// NoteFreestyle is an unscored note ('F').
	NoteFreestyle
	// NoteRap is a rap note ('R').
	NoteRap
	// NoteRapGolden is a bonus-scoring rap note ('G').
	NoteRapGolden
)

// Sigil returns the leading character identifying the note kind.
func (k NoteKind) Sigil() byte {
	switch k {
	case NoteRegular:
		return ':'
	case NoteGolden:
		return '*'
	case NoteFreestyle:
		return 'F'
	case NoteRap:
		return 'R'
	case NoteRapGolden:
		return 'G'
	}
	// Unreachable for values produced by this package.
	return ':'
}

// noteKindForSigil maps a sigil back to its note kind.
func noteKindForSigil(b byte) (NoteKind, bool) {
	switch b {
	case ':':
		return NoteRegular, true
	case '*':
		return NoteGolden, true
	case 'F':
		return NoteFreestyle, true
	case 'R':
		return NoteRap, true
	case 'G':
		return NoteRapGolden, true
	}
	return 0, false
}

// Note is a single sung syllable.
type Note struct {
	Kind   NoteKind
	Start  int
	Length int
	Pitch  int
	// Text is the syllable verbatim, including significant leading or
	// trailing whitespace beyond the single separator space.
	Text string
}

// End returns the first beat after the note.
func (n Note) End() int { return n.Start + n.Length }

// LineBreak separates two lines of a voice. The optional end beat is only
// present in relative-timing files.
type LineBreak struct {
	Start  int
	End    int
	HasEnd bool
}

// Line is an ordered run of notes, terminated by a line break on every line
// but the last of a voice.
type Line struct {
	Notes []Note
	Break *LineBreak
}

// Voice is one singer's track.
type Voice struct {
	Lines []Line
}

// Notes iterates over all notes of the voice in order.
func (v *Voice) Notes(yield func(*Note) bool) {
	for li := range v.Lines {
		for ni := range v.Lines[li].Notes {
			if !yield(&v.Lines[li].Notes[ni]) {
				return
			}
		}
	}
}

// Tracks is the full song body: one voice for solo songs, two for duets.
type Tracks struct {
	Voices []Voice
}

// IsDuet reports whether the body has more than one voice.
func (t *Tracks) IsDuet() bool { return len(t.Voices) > 1 }

// trackParser holds the cursor state while parsing the note stream.
type trackParser struct {
	voices    []Voice
	current   Line
	maxEnd    int // running maximum end beat of the current voice
	lastStart int // start beat of the most recent note
	explicit  bool
	ended     bool
}

// parseTracks parses the body lines following the header block.
func parseTracks(lines []numberedLine) (*Tracks, error) {
	p := &trackParser{}
	for i, l := range lines {
		kind, err := classifyLine(l)
		if err != nil {
			return nil, err
		}
		switch kind {
		case lineBlank:
			continue
		case lineHeader:
			return nil, errTrack(l.no, "header inside track body")
		case lineVoice:
			if err := p.startVoice(l); err != nil {
				return nil, err
			}
		case lineNote:
			note, err := parseNote(l)
			if err != nil {
				return nil, err
			}
			if err := p.addNote(l.no, note); err != nil {
				return nil, err
			}
		case lineLineBreak:
			lb, err := parseLineBreak(l)
			if err != nil {
				return nil, err
			}
			if err := p.addBreak(l.no, lb); err != nil {
				return nil, err
			}
		case lineEnd:
			p.flushLine()
			p.ended = true
		}
		if p.ended {
			for _, rest := range lines[i+1:] {
				if strings.TrimSpace(rest.text) != "" {
					log.Printf("songsync: line %d: ignoring content after end marker", rest.no)
					break
				}
			}
			break
		}
	}
	if !p.ended {
		log.Printf("songsync: missing end marker")
		p.flushLine()
	}
	tracks := &Tracks{Voices: p.voices}
	if err := tracks.validate(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// startVoice handles a P1/P2 marker line.
func (p *trackParser) startVoice(l numberedLine) error {
	marker := strings.TrimSpace(l.text)
	player, err := strconv.Atoi(strings.TrimPrefix(marker, "P"))
	if err != nil || player < 1 {
		return errTrack(l.no, "invalid voice marker %q", marker)
	}
	switch player {
	case 1:
		if p.explicit || len(p.voices) > 0 || len(p.current.Notes) > 0 {
			return errInvalidTrack(l.no, "P1 after the start of the track")
		}
		p.explicit = true
		p.voices = append(p.voices, Voice{})
	case 2:
		if !p.explicit || len(p.voices) != 1 {
			return errInvalidTrack(l.no, "P2 without preceding P1")
		}
		p.flushLine()
		p.voices = append(p.voices, Voice{})
		p.maxEnd = 0
		p.lastStart = 0
	default:
		return errInvalidTrack(l.no, "unsupported voice marker %q", marker)
	}
	return nil
}

func (p *trackParser) addNote(lineNo int, note Note) error {
	if len(p.voices) == 0 {
		// Solo song without an explicit P1 marker.
		p.voices = append(p.voices, Voice{})
	}
	if note.Start < p.lastStart {
		return errNote(lineNo, "note starts at beat %d before previous note at %d", note.Start, p.lastStart)
	}
	p.lastStart = note.Start
	if end := note.End(); end > p.maxEnd {
		p.maxEnd = end
	}
	p.current.Notes = append(p.current.Notes, note)
	return nil
}

func (p *trackParser) addBreak(lineNo int, lb LineBreak) error {
	if len(p.current.Notes) == 0 {
		return errLineBreak(lineNo, "line break without preceding notes")
	}
	if lb.Start < p.maxEnd {
		return errLineBreak(lineNo, "line break at beat %d before notes end at %d", lb.Start, p.maxEnd)
	}
	p.current.Break = &lb
	p.flushLine()
	return nil
}

// flushLine appends the current line to the current voice, if it has notes.
func (p *trackParser) flushLine() {
	if len(p.current.Notes) == 0 {
		return
	}
	v := &p.voices[len(p.voices)-1]
	v.Lines = append(v.Lines, p.current)
	p.current = Line{}
}

func (t *Tracks) validate() error {
	if len(t.Voices) == 0 {
		return errInvalidTrack(0, "track has no notes")
	}
	for i := range t.Voices {
		if len(t.Voices[i].Lines) == 0 {
			return errInvalidTrack(0, "voice %d has no notes", i+1)
		}
	}
	return nil
}

// parseNote parses a note line: sigil, start, duration, pitch and the
// verbatim syllable. Only the whitespace between the sigil and the numbers
// is normalized; the syllable keeps any significant whitespace after the
// single separator space.
func parseNote(l numberedLine) (Note, error) {
	kind, ok := noteKindForSigil(l.text[0])
	if !ok {
		return Note{}, errNote(l.no, "unknown note kind %q", l.text[0])
	}
	rest := l.text[1:]

	start, rest, err := scanInt(l.no, "start", rest)
	if err != nil {
		return Note{}, err
	}
	length, rest, err := scanInt(l.no, "duration", rest)
	if err != nil {
		return Note{}, err
	}
	pitch, rest, err := scanInt(l.no, "pitch", rest)
	if err != nil {
		return Note{}, err
	}

	if rest == "" || rest[0] != ' ' {
		return Note{}, errNote(l.no, "missing syllable")
	}
	text := rest[1:]
	if text == "" {
		return Note{}, errNote(l.no, "missing syllable")
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return Note{}, errChar(l.no, "syllable", r)
		}
	}
	return Note{Kind: kind, Start: start, Length: length, Pitch: pitch, Text: text}, nil
}

// parseLineBreak parses a '-' line with one mandatory and one optional beat.
func parseLineBreak(l numberedLine) (LineBreak, error) {
	rest := l.text[1:]
	start, rest, err := scanInt(l.no, "line break", rest)
	if err != nil {
		return LineBreak{}, err
	}
	if strings.TrimSpace(rest) == "" {
		return LineBreak{Start: start}, nil
	}
	end, rest, err := scanInt(l.no, "line break end", rest)
	if err != nil {
		return LineBreak{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return LineBreak{}, errLineBreak(l.no, "trailing content %q", rest)
	}
	return LineBreak{Start: start, End: end, HasEnd: true}, nil
}

// scanInt reads the next whitespace-delimited integer token. Any character
// other than digits (and a leading minus) is a character-set violation
// attributed to the named field.
func scanInt(lineNo int, field, s string) (int, string, error) {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i == len(s) {
		return 0, "", errNote(lineNo, "missing %s", field)
	}
	j := i
	for j < len(s) && s[j] != ' ' {
		j++
	}
	token := s[i:j]
	for k, r := range token {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '-' && k == 0 && len(token) > 1 {
			continue
		}
		return 0, "", errChar(lineNo, field, r)
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", errNote(lineNo, "invalid %s %q", field, token)
	}
	return n, s[j:], nil
}
