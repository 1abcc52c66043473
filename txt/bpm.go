package txt

import "strconv"

// MinBPM is the threshold below which a song's BPM is considered too low.
// The fixer repeatedly doubles the BPM (and rescales all beat values by the
// same factor) until it is at or above this value.
const MinBPM = 200.0

// BeatsPerMinute wraps the BPM header value. A value is valid only if it is
// strictly positive.
type BeatsPerMinute float64

// Valid reports whether the BPM is usable for beat/time conversions.
func (b BeatsPerMinute) Valid() bool { return b > 0 }

// BeatsToSecs converts a beat count to seconds. A beat is a quarter of a
// BPM unit, so beats/(bpm*4) gives minutes.
func (b BeatsPerMinute) BeatsToSecs(beats int) float64 {
	return float64(beats) / (float64(b) * 4) * 60
}

// SecsToBeats converts seconds to (fractional) beats.
func (b BeatsPerMinute) SecsToBeats(secs float64) float64 {
	return secs * float64(b) * 4 / 60
}

// DoublingFactor returns the power of two the BPM must be multiplied by to
// reach MinBPM. It returns 1 for BPM values already at or above the
// threshold, or for invalid values.
func (b BeatsPerMinute) DoublingFactor() int {
	if !b.Valid() {
		return 1
	}
	factor := 1
	for v := float64(b); v < MinBPM; v *= 2 {
		factor *= 2
	}
	return factor
}

// String renders the value the way the serializer writes it: a dot decimal
// separator and no trailing zeros.
func (b BeatsPerMinute) String() string { return formatFloat(float64(b)) }

// formatFloat renders a float with the minimal number of decimals.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
