package txt

import (
	"log"
	"strconv"
	"strings"
)

// MetaTags is the parsed form of the meta-tag mini-language embedded in the
// VIDEO header value: comma-separated key=value pairs carrying additional
// resource directives. Malformed pairs are logged and skipped; meta-tag
// parsing never fails.
type MetaTags struct {
	// Video and Audio are source ids for the media resources.
	Video string
	Audio string
	// Cover and Background describe remote images with optional
	// post-processing directives.
	Cover      *ImageMetaTags
	Background *ImageMetaTags
	// Player1 and Player2 are duet singer names.
	Player1 string
	Player2 string
	// Preview is the preview start in seconds.
	Preview *float64
	// Medley is the medley beat range.
	Medley *MedleyTag
}

// MedleyTag is an inclusive beat range.
type MedleyTag struct {
	Start int
	End   int
}

// ImageMetaTags describes a remote image plus the edits to apply after
// downloading it.
type ImageMetaTags struct {
	// Source is the image location without protocol.
	Source string
	// Protocol is the URL scheme, defaulting to https.
	Protocol string
	// Rotate is a rotation angle in degrees.
	Rotate *float64
	// Crop is the region to keep.
	Crop *CropRegion
	// Resize is the target size.
	Resize *ResizeTag
	// ContrastAuto requests automatic contrast; otherwise Contrast is an
	// optional explicit factor.
	ContrastAuto bool
	Contrast     *float64
}

// CropRegion is a crop rectangle in (left, upper, right, lower) form.
// The wire format encodes (left, upper, width, height); parsing converts.
type CropRegion struct {
	Left  int
	Upper int
	Right int
	Lower int
}

// ResizeTag is a target image size in pixels.
type ResizeTag struct {
	Width  int
	Height int
}

// SourceURL returns the full URL of the image.
func (t *ImageMetaTags) SourceURL() string {
	if strings.Contains(t.Source, "://") {
		return t.Source
	}
	protocol := t.Protocol
	if protocol == "" {
		protocol = "https"
	}
	return protocol + "://" + t.Source
}

// ParseMetaTags parses the meta-tag string of a VIDEO header value. Pairs
// with an unknown key, a missing handler prerequisite (e.g. co-rotate
// without co) or a malformed value are logged and ignored.
func ParseMetaTags(value string) *MetaTags {
	tags := &MetaTags{}
	for _, pair := range strings.Split(value, ",") {
		key, v, found := strings.Cut(pair, "=")
		if !found {
			log.Printf("songsync: ignoring meta tag without value: %q", pair)
			continue
		}
		tags.set(strings.TrimSpace(key), strings.TrimSpace(v))
	}
	return tags
}

func (t *MetaTags) set(key, value string) {
	switch key {
	case "v":
		t.Video = value
	case "a":
		t.Audio = value
	case "co":
		t.Cover = &ImageMetaTags{Source: unescapeMetaValue(value), Protocol: "https"}
	case "bg":
		t.Background = &ImageMetaTags{Source: unescapeMetaValue(value), Protocol: "https"}
	case "p1":
		t.Player1 = value
	case "p2":
		t.Player2 = value
	case "preview":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("songsync: ignoring meta tag preview=%q: not a number", value)
			return
		}
		t.Preview = &f
	case "medley":
		m, ok := parseMedleyTag(value)
		if !ok {
			log.Printf("songsync: ignoring meta tag medley=%q: want start-end", value)
			return
		}
		t.Medley = m
	default:
		image, imageKey, ok := t.imageFor(key)
		if !ok {
			log.Printf("songsync: ignoring unknown meta tag %q", key)
			return
		}
		if image == nil {
			log.Printf("songsync: ignoring meta tag %s=%q: no %s tag present", key, value, imageKey)
			return
		}
		image.set(key, value)
	}
}

// imageFor resolves a co-*/bg-* directive to the image it modifies. The
// second return is the prerequisite tag name, the third reports whether the
// key is an image directive at all.
func (t *MetaTags) imageFor(key string) (*ImageMetaTags, string, bool) {
	switch {
	case strings.HasPrefix(key, "co-"):
		return t.Cover, "co", true
	case strings.HasPrefix(key, "bg-"):
		return t.Background, "bg", true
	}
	return nil, "", false
}

func (img *ImageMetaTags) set(key, value string) {
	_, directive, _ := strings.Cut(key, "-")
	switch directive {
	case "protocol":
		img.Protocol = value
	case "rotate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("songsync: ignoring meta tag %s=%q: not a number", key, value)
			return
		}
		img.Rotate = &f
	case "crop":
		crop, ok := parseCropRegion(value)
		if !ok {
			log.Printf("songsync: ignoring meta tag %s=%q: want left-upper-width-height", key, value)
			return
		}
		img.Crop = crop
	case "resize":
		resize, ok := parseResizeTag(value)
		if !ok {
			log.Printf("songsync: ignoring meta tag %s=%q: want width-height", key, value)
			return
		}
		img.Resize = resize
	case "contrast":
		if value == "auto" {
			img.ContrastAuto = true
			return
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("songsync: ignoring meta tag %s=%q: not a number or auto", key, value)
			return
		}
		img.Contrast = &f
	default:
		log.Printf("songsync: ignoring unknown meta tag %q", key)
	}
}

// parseCropRegion converts the wire form left-upper-width-height into the
// (left, upper, right, lower) region used by image processing.
func parseCropRegion(value string) (*CropRegion, bool) {
	nums, ok := splitInts(value, 4)
	if !ok {
		return nil, false
	}
	left, upper, width, height := nums[0], nums[1], nums[2], nums[3]
	if width < 0 || height < 0 {
		return nil, false
	}
	return &CropRegion{Left: left, Upper: upper, Right: left + width, Lower: upper + height}, true
}

func parseResizeTag(value string) (*ResizeTag, bool) {
	if nums, ok := splitInts(value, 2); ok {
		return &ResizeTag{Width: nums[0], Height: nums[1]}, true
	}
	// A single number means a square target.
	if nums, ok := splitInts(value, 1); ok {
		return &ResizeTag{Width: nums[0], Height: nums[0]}, true
	}
	return nil, false
}

func parseMedleyTag(value string) (*MedleyTag, bool) {
	nums, ok := splitInts(value, 2)
	if !ok || nums[1] < nums[0] {
		return nil, false
	}
	return &MedleyTag{Start: nums[0], End: nums[1]}, true
}

// splitInts parses exactly n dash-separated integers. Values use '-' as the
// separator because ',' delimits the enclosing pairs.
func splitInts(value string, n int) ([]int, bool) {
	parts := strings.Split(value, "-")
	if len(parts) != n {
		return nil, false
	}
	nums := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

// unescapeMetaValue reverses the escaping applied to values that would
// otherwise collide with the pair separator.
func unescapeMetaValue(value string) string {
	value = strings.ReplaceAll(value, "%2C", ",")
	return strings.ReplaceAll(value, "%3D", "=")
}
