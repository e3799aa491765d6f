package ffmpeg

import (
	"math"
	"reflect"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want FrameRate
	}{
		{"25", FrameRate{25, 1}},
		{"30/1", FrameRate{30, 1}},
		{"30000/1001", FrameRate{30000, 1001}},
		{"24000/1001", FrameRate{24000, 1001}},
	}
	for _, tt := range tests {
		got, err := ParseFrameRate(tt.in)
		if err != nil {
			t.Errorf("ParseFrameRate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFrameRate_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "30/", "/1001", "0/1", "25/0", "-25", "29.97"} {
		if _, err := ParseFrameRate(in); err == nil {
			t.Errorf("ParseFrameRate(%q) accepted an invalid rate", in)
		}
	}
}

func TestFrameRate_String(t *testing.T) {
	r := FrameRate{Num: 30000, Den: 1001}
	if got := r.String(); got != "30000/1001" {
		t.Fatalf("String() = %q, want 30000/1001", got)
	}
}

func TestFrameRate_Ratio(t *testing.T) {
	r := FrameRate{Num: 30000, Den: 1001}
	if got := r.Ratio(); math.Abs(got-29.97) > 0.01 {
		t.Errorf("Ratio() = %f, want ~29.97", got)
	}
	if got := (FrameRate{}).Ratio(); got != 0 {
		t.Errorf("zero value Ratio() = %f, want 0", got)
	}
}

func TestGetCodecSettings(t *testing.T) {
	mp4 := GetCodecSettings("mp4")
	if mp4.VideoCodec != "libx264" || mp4.PixelFormat != "yuv420p" {
		t.Errorf("mp4 settings = %+v", mp4)
	}
	if mp4.FileExtension != ".mp4" {
		t.Errorf("mp4 extension = %q, want .mp4", mp4.FileExtension)
	}

	// Unknown formats fall back to mp4.
	if got := GetCodecSettings("mkv"); !reflect.DeepEqual(got, mp4) {
		t.Errorf("unknown format settings = %+v, want the mp4 preset", got)
	}
}

func TestGetSupportedFormats(t *testing.T) {
	if got := GetSupportedFormats(); !reflect.DeepEqual(got, []string{"mp4"}) {
		t.Fatalf("GetSupportedFormats() = %v, want [mp4]", got)
	}
}

func TestGetOptimalThreadCount(t *testing.T) {
	if got := GetOptimalThreadCount(); got < 1 {
		t.Fatalf("GetOptimalThreadCount() = %d, want >= 1", got)
	}
}
