package txt

import (
	"log"
	"strconv"
	"strings"
)

// Headers is the typed representation of the header block of a song text
// file. TITLE and ARTIST are mandatory; everything else is optional.
// Optional numeric fields are pointers so that an absent header can be told
// apart from a zero value. Unknown keys are preserved verbatim for
// round-trip serialization.
type Headers struct {
	Title  string
	Artist string

	Language string
	Edition  string
	Genre    string
	Creator  string
	Year     *int

	// MP3 and Audio name the local audio file (the format grew a second
	// spelling over time; both are kept so files round-trip).
	MP3   string
	Audio string
	// Video is the raw video header value. On the remote database this
	// value usually embeds a meta-tag string rather than a file name.
	Video    string
	VideoGap *float64
	Cover      string
	Background string

	AudioURL      string
	VideoURL      string
	CoverURL      string
	BackgroundURL string

	BPM BeatsPerMinute
	// Gap, PreviewStart and the medley markers are beat-valued and are
	// rescaled together with the note beats when the BPM is doubled.
	Gap             *float64
	PreviewStart    *float64
	MedleyStartBeat *int
	MedleyEndBeat   *int

	Relative bool

	// P1 and P2 are the duet singer names.
	P1 string
	P2 string

	Comment string

	// Encoding is the legacy ENCODING header if one was present. It is
	// consumed during decoding and never serialized back.
	Encoding string

	// MetaTags is the parsed view of the meta-tag string embedded in the
	// Video value, if any. The raw Video value stays authoritative for
	// serialization.
	MetaTags *MetaTags

	// Unknown holds unrecognized headers verbatim, in input order.
	Unknown []HeaderField
}

// HeaderField is a single raw key/value header pair.
type HeaderField struct {
	Key   string
	Value string
}

// parseHeaders consumes the header block prefix of lines and returns the
// parsed headers together with the number of lines consumed.
func parseHeaders(lines []numberedLine) (*Headers, int, error) {
	h := &Headers{}
	consumed := 0
	for _, l := range lines {
		kind, err := classifyLine(l)
		if err != nil {
			return nil, 0, err
		}
		if kind == lineBlank {
			consumed++
			continue
		}
		if kind != lineHeader {
			break
		}
		if err := h.setLine(l); err != nil {
			return nil, 0, err
		}
		consumed++
	}
	if h.Title == "" {
		return nil, 0, errRequiredHeader("TITLE")
	}
	if h.Artist == "" {
		return nil, 0, errRequiredHeader("ARTIST")
	}
	return h, consumed, nil
}

// setLine splits a single '#KEY:VALUE' line and dispatches to the typed field.
func (h *Headers) setLine(l numberedLine) error {
	body := l.text[1:]
	key, value, found := strings.Cut(body, ":")
	if !found {
		return errHeaders(l.no, "missing ':' in %q", l.text)
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	return h.set(key, value, l.no)
}

func (h *Headers) set(key, value string, lineNo int) error {
	switch key {
	case "TITLE":
		h.Title = value
	case "ARTIST":
		h.Artist = value
	case "LANGUAGE":
		h.Language = value
	case "EDITION":
		h.Edition = value
	case "GENRE":
		h.Genre = value
	case "CREATOR":
		h.Creator = value
	case "YEAR":
		year, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("songsync: line %d: ignoring unparsable YEAR %q", lineNo, value)
			return nil
		}
		h.Year = &year
	case "MP3":
		h.MP3 = value
	case "AUDIO":
		h.Audio = value
	case "VIDEO":
		h.Video = value
		if strings.ContainsRune(value, '=') {
			h.MetaTags = ParseMetaTags(value)
		}
	case "VIDEOGAP":
		f, err := parseHeaderFloat(key, value, lineNo)
		if err != nil {
			return err
		}
		h.VideoGap = &f
	case "COVER":
		h.Cover = value
	case "BACKGROUND":
		h.Background = value
	case "AUDIOURL":
		h.AudioURL = value
	case "VIDEOURL":
		h.VideoURL = value
	case "COVERURL":
		h.CoverURL = value
	case "BACKGROUNDURL":
		h.BackgroundURL = value
	case "BPM":
		f, err := parseHeaderFloat(key, value, lineNo)
		if err != nil {
			return err
		}
		if f <= 0 {
			return errHeaders(lineNo, "BPM must be positive, got %q", value)
		}
		h.BPM = BeatsPerMinute(f)
	case "GAP":
		f, err := parseHeaderFloat(key, value, lineNo)
		if err != nil {
			return err
		}
		h.Gap = &f
	case "PREVIEWSTART":
		f, err := parseHeaderFloat(key, value, lineNo)
		if err != nil {
			return err
		}
		h.PreviewStart = &f
	case "MEDLEYSTARTBEAT":
		n, err := parseHeaderInt(key, value, lineNo)
		if err != nil {
			return err
		}
		h.MedleyStartBeat = &n
	case "MEDLEYENDBEAT":
		n, err := parseHeaderInt(key, value, lineNo)
		if err != nil {
			return err
		}
		h.MedleyEndBeat = &n
	case "RELATIVE":
		h.Relative = strings.EqualFold(value, "YES") || strings.EqualFold(value, "TRUE")
	case "P1":
		h.P1 = value
	case "P2":
		h.P2 = value
	case "COMMENT":
		h.Comment = value
	case "ENCODING":
		// Decoding happened before parsing; remember the value but drop
		// the header on serialization.
		h.Encoding = value
	default:
		log.Printf("songsync: line %d: unknown header %q", lineNo, key)
		h.Unknown = append(h.Unknown, HeaderField{Key: key, Value: value})
	}
	return nil
}

// parseHeaderFloat parses a header number accepting both '.' and ',' as the
// decimal separator (a locale artifact of the source ecosystem).
func parseHeaderFloat(key, value string, lineNo int) (float64, error) {
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil {
		return 0, errHeaders(lineNo, "invalid number %q for %s", value, key)
	}
	return f, nil
}

func parseHeaderInt(key, value string, lineNo int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errHeaders(lineNo, "invalid integer %q for %s", value, key)
	}
	return n, nil
}

// write renders the headers in canonical key order, followed by unknown
// headers in their original order.
func (h *Headers) write(b *strings.Builder, nl string) {
	writeHeader := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteString("#")
		b.WriteString(key)
		b.WriteString(":")
		b.WriteString(value)
		b.WriteString(nl)
	}
	writeFloat := func(key string, f *float64) {
		if f != nil {
			writeHeader(key, formatFloat(*f))
		}
	}
	writeInt := func(key string, n *int) {
		if n != nil {
			writeHeader(key, strconv.Itoa(*n))
		}
	}

	writeHeader("TITLE", h.Title)
	writeHeader("ARTIST", h.Artist)
	writeHeader("LANGUAGE", h.Language)
	writeHeader("EDITION", h.Edition)
	writeHeader("GENRE", h.Genre)
	writeInt("YEAR", h.Year)
	writeHeader("CREATOR", h.Creator)
	writeHeader("MP3", h.MP3)
	writeHeader("AUDIO", h.Audio)
	writeHeader("AUDIOURL", h.AudioURL)
	writeHeader("VIDEO", h.Video)
	writeHeader("VIDEOURL", h.VideoURL)
	writeFloat("VIDEOGAP", h.VideoGap)
	writeHeader("COVER", h.Cover)
	writeHeader("COVERURL", h.CoverURL)
	writeHeader("BACKGROUND", h.Background)
	writeHeader("BACKGROUNDURL", h.BackgroundURL)
	if h.BPM.Valid() {
		writeHeader("BPM", h.BPM.String())
	}
	writeFloat("GAP", h.Gap)
	if h.Relative {
		writeHeader("RELATIVE", "YES")
	}
	writeFloat("PREVIEWSTART", h.PreviewStart)
	writeInt("MEDLEYSTARTBEAT", h.MedleyStartBeat)
	writeInt("MEDLEYENDBEAT", h.MedleyEndBeat)
	writeHeader("P1", h.P1)
	writeHeader("P2", h.P2)
	writeHeader("COMMENT", h.Comment)
	for _, f := range h.Unknown {
		writeHeader(f.Key, f.Value)
	}
}
