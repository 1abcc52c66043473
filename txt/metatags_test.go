package txt

import "testing"

func TestParseMetaTags_Full(t *testing.T) {
	tags := ParseMetaTags("v=abc123,a=def456," +
		"co=images.example.com/c.jpg,co-rotate=2.5,co-crop=10-20-300-400,co-resize=1920-1080,co-contrast=auto," +
		"bg=images.example.com/b.jpg,bg-protocol=http,bg-resize=640," +
		"p1=Alice,p2=Bob,preview=12.5,medley=100-200")

	if tags.Video != "abc123" {
		t.Errorf("Video = %q, want abc123", tags.Video)
	}
	if tags.Audio != "def456" {
		t.Errorf("Audio = %q, want def456", tags.Audio)
	}

	co := tags.Cover
	if co == nil {
		t.Fatal("Cover = nil, want image tags")
	}
	if co.Source != "images.example.com/c.jpg" {
		t.Errorf("Cover.Source = %q", co.Source)
	}
	if got := co.SourceURL(); got != "https://images.example.com/c.jpg" {
		t.Errorf("Cover.SourceURL() = %q, want https scheme", got)
	}
	if co.Rotate == nil || *co.Rotate != 2.5 {
		t.Errorf("Cover.Rotate = %v, want 2.5", co.Rotate)
	}
	if co.Crop == nil || *co.Crop != (CropRegion{Left: 10, Upper: 20, Right: 310, Lower: 420}) {
		t.Errorf("Cover.Crop = %+v, want left 10 upper 20 right 310 lower 420", co.Crop)
	}
	if co.Resize == nil || *co.Resize != (ResizeTag{Width: 1920, Height: 1080}) {
		t.Errorf("Cover.Resize = %+v, want 1920x1080", co.Resize)
	}
	if !co.ContrastAuto {
		t.Error("Cover.ContrastAuto = false, want true")
	}

	bg := tags.Background
	if bg == nil {
		t.Fatal("Background = nil, want image tags")
	}
	if got := bg.SourceURL(); got != "http://images.example.com/b.jpg" {
		t.Errorf("Background.SourceURL() = %q, want http scheme", got)
	}
	// A single resize number means a square target.
	if bg.Resize == nil || *bg.Resize != (ResizeTag{Width: 640, Height: 640}) {
		t.Errorf("Background.Resize = %+v, want 640x640", bg.Resize)
	}

	if tags.Player1 != "Alice" || tags.Player2 != "Bob" {
		t.Errorf("Players = %q/%q, want Alice/Bob", tags.Player1, tags.Player2)
	}
	if tags.Preview == nil || *tags.Preview != 12.5 {
		t.Errorf("Preview = %v, want 12.5", tags.Preview)
	}
	if tags.Medley == nil || *tags.Medley != (MedleyTag{Start: 100, End: 200}) {
		t.Errorf("Medley = %+v, want 100-200", tags.Medley)
	}
}

func TestParseMetaTags_MalformedPairsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T, tags *MetaTags)
	}{
		{
			"pair without value",
			"v=abc,novalue",
			func(t *testing.T, tags *MetaTags) {
				if tags.Video != "abc" {
					t.Errorf("Video = %q, want abc", tags.Video)
				}
			},
		},
		{
			"unknown key",
			"v=abc,zz=1",
			func(t *testing.T, tags *MetaTags) {
				if tags.Video != "abc" {
					t.Errorf("Video = %q, want abc", tags.Video)
				}
			},
		},
		{
			"image directive without image",
			"co-rotate=1.5",
			func(t *testing.T, tags *MetaTags) {
				if tags.Cover != nil {
					t.Errorf("Cover = %+v, want nil", tags.Cover)
				}
			},
		},
		{
			"bad crop arity",
			"co=x.jpg,co-crop=1-2-3",
			func(t *testing.T, tags *MetaTags) {
				if tags.Cover == nil || tags.Cover.Crop != nil {
					t.Errorf("Cover.Crop set for malformed value")
				}
			},
		},
		{
			"negative crop size",
			"co=x.jpg,co-crop=1-2--3-4",
			func(t *testing.T, tags *MetaTags) {
				if tags.Cover == nil || tags.Cover.Crop != nil {
					t.Errorf("Cover.Crop set for negative size")
				}
			},
		},
		{
			"medley end before start",
			"medley=200-100",
			func(t *testing.T, tags *MetaTags) {
				if tags.Medley != nil {
					t.Errorf("Medley = %+v, want nil", tags.Medley)
				}
			},
		},
		{
			"preview not a number",
			"preview=soon",
			func(t *testing.T, tags *MetaTags) {
				if tags.Preview != nil {
					t.Errorf("Preview = %v, want nil", tags.Preview)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := ParseMetaTags(tt.value)
			if tags == nil {
				t.Fatal("ParseMetaTags() = nil, parsing must never fail")
			}
			tt.check(t, tags)
		})
	}
}

func TestParseMetaTags_EscapedValues(t *testing.T) {
	tags := ParseMetaTags("co=host/a%2Cb%3Dc.jpg")
	if tags.Cover == nil {
		t.Fatal("Cover = nil, want image tags")
	}
	if got := tags.Cover.Source; got != "host/a,b=c.jpg" {
		t.Errorf("Source = %q, want unescaped %q", got, "host/a,b=c.jpg")
	}
}

func TestImageMetaTags_SourceURLWithScheme(t *testing.T) {
	img := &ImageMetaTags{Source: "https://host/x.jpg"}
	if got := img.SourceURL(); got != "https://host/x.jpg" {
		t.Errorf("SourceURL() = %q, want source unchanged", got)
	}
}
