package txt

import (
	"log"
	"strings"
)

// FixResult reports what the fix pass changed.
type FixResult struct {
	// FixedMarks is the number of apostrophes and quotation marks replaced.
	FixedMarks int
	// BPMFactor is the factor the BPM and all beat values were scaled by
	// (1 if the BPM was already at or above MinBPM).
	BPMFactor int
}

// Fix applies the ordered set of idempotent corrections to the song:
// apostrophe unification, language-appropriate quotation marks, and
// BPM-too-low doubling with uniform beat scaling. Running Fix on its own
// output is a no-op.
func (t *SongTxt) Fix() FixResult {
	res := FixResult{BPMFactor: 1}
	res.FixedMarks = t.fixApostrophesAndQuotes()
	res.BPMFactor = t.fixLowBPM()
	return res
}

// quoteStyle is the opening/closing quotation mark pair for a language.
type quoteStyle struct {
	open  string
	close string
}

// narrowNBSP pads French quotation marks.
const narrowNBSP = "\u202f"

// quoteStyles maps lower-cased language names to their quotation marks.
// Languages not listed use genericQuotes.
var quoteStyles = map[string]quoteStyle{
	"german":    {"„", "“"},
	"austrian":  {"„", "“"},
	"czech":     {"„", "“"},
	"slovak":    {"„", "“"},
	"polish":    {"„", "”"},
	"hungarian": {"„", "”"},
	"romanian":  {"„", "”"},
	"dutch":     {"„", "”"},
	"french":    {"«" + narrowNBSP, narrowNBSP + "»"},
	"swedish":   {"”", "”"},
	"finnish":   {"”", "”"},
}

var genericQuotes = quoteStyle{"“", "”"}

func styleForLanguage(language string) quoteStyle {
	if style, ok := quoteStyles[strings.ToLower(language)]; ok {
		return style
	}
	return genericQuotes
}

// fixApostrophesAndQuotes walks the full syllable stream in voice order,
// replacing ambiguous apostrophe-like characters with a typographic
// apostrophe and quotation-mark variants with the language's opening or
// closing mark. A doubled apostrophe counts as one quotation mark. The
// opening/closing state alternates across the whole stream, continuing
// across voices of a duet.
func (t *SongTxt) fixApostrophesAndQuotes() int {
	f := &markFixer{style: styleForLanguage(t.Headers.Language)}
	for vi := range t.Tracks.Voices {
		for n := range t.Tracks.Voices[vi].Notes {
			n.Text = f.fixText(n.Text)
		}
	}
	if f.open {
		log.Printf("songsync: unbalanced quotation marks in %q", t.Headers.Title)
	}
	return f.fixed
}

// markFixer tracks the alternating quotation state across syllables.
type markFixer struct {
	style quoteStyle
	open  bool
	fixed int
}

func isApostropheLike(r rune) bool {
	return r == '\'' || r == '´' || r == '`'
}

func (f *markFixer) fixText(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r == '"' || isApostropheLike(r) }) {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			b.WriteString(f.nextMark())
		case isApostropheLike(r):
			if i+1 < len(runes) && runes[i+1] == r {
				// A doubled apostrophe is a quotation mark.
				b.WriteString(f.nextMark())
				i++
			} else {
				b.WriteRune('’')
				f.fixed++
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f *markFixer) nextMark() string {
	f.fixed++
	if f.open {
		f.open = false
		return f.style.close
	}
	f.open = true
	return f.style.open
}

// fixLowBPM doubles the BPM until it reaches MinBPM and multiplies every
// beat-valued field by the same factor so absolute timing is preserved.
// This is the only fix that changes numeric beat values.
func (t *SongTxt) fixLowBPM() int {
	factor := t.Headers.BPM.DoublingFactor()
	if factor == 1 {
		return 1
	}
	t.Headers.BPM *= BeatsPerMinute(factor)
	scaleFloat := func(f *float64) {
		if f != nil {
			*f *= float64(factor)
		}
	}
	scaleInt := func(n *int) {
		if n != nil {
			*n *= factor
		}
	}
	scaleFloat(t.Headers.Gap)
	scaleFloat(t.Headers.PreviewStart)
	scaleInt(t.Headers.MedleyStartBeat)
	scaleInt(t.Headers.MedleyEndBeat)
	for vi := range t.Tracks.Voices {
		voice := &t.Tracks.Voices[vi]
		for li := range voice.Lines {
			line := &voice.Lines[li]
			for ni := range line.Notes {
				line.Notes[ni].Start *= factor
				line.Notes[ni].Length *= factor
			}
			if line.Break != nil {
				line.Break.Start *= factor
				if line.Break.HasEnd {
					line.Break.End *= factor
				}
			}
		}
	}
	return factor
}
