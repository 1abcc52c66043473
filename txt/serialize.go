package txt

import (
	"strconv"
	"strings"
)

// String renders the song back to the line-oriented text format using the
// newline style detected on parse. For input already in canonical form the
// output is byte-identical to the input.
func (t *SongTxt) String() string {
	var b strings.Builder
	nl := t.Newline()
	t.Headers.write(&b, nl)
	duet := t.Tracks.IsDuet()
	for vi := range t.Tracks.Voices {
		if duet {
			b.WriteString("P")
			b.WriteString(strconv.Itoa(vi + 1))
			b.WriteString(nl)
		}
		writeVoice(&b, &t.Tracks.Voices[vi], nl)
	}
	b.WriteString("E")
	b.WriteString(nl)
	return b.String()
}

func writeVoice(b *strings.Builder, v *Voice, nl string) {
	for li := range v.Lines {
		line := &v.Lines[li]
		for _, n := range line.Notes {
			writeNote(b, n, nl)
		}
		if line.Break != nil {
			writeLineBreak(b, *line.Break, nl)
		}
	}
}

func writeNote(b *strings.Builder, n Note, nl string) {
	b.WriteByte(n.Kind.Sigil())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(n.Start))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(n.Length))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(n.Pitch))
	b.WriteByte(' ')
	b.WriteString(n.Text)
	b.WriteString(nl)
}

func writeLineBreak(b *strings.Builder, lb LineBreak, nl string) {
	b.WriteString("- ")
	b.WriteString(strconv.Itoa(lb.Start))
	if lb.HasEnd {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(lb.End))
	}
	b.WriteString(nl)
}
