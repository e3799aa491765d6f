package overlay

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}},
		{"ffffff", color.RGBA{255, 255, 255, 255}},
		{"#000000", color.RGBA{0, 0, 0, 255}},
		{"#ff8040", color.RGBA{255, 128, 64, 255}},
		{"#FF8040", color.RGBA{255, 128, 64, 255}},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil {
			t.Errorf("ParseHexColor(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHexColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "#fff", "#fffffff", "#zzzzzz", "not a color", "#ffff-f"} {
		_, err := ParseHexColor(in)
		if err == nil {
			t.Errorf("ParseHexColor(%q) expected error", in)
			continue
		}
		if !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseHexColor(%q) error = %v, want ErrInvalidColor", in, err)
		}
	}
}

func TestParseHexColor_RoundTrip(t *testing.T) {
	for r := 0; r <= 255; r += 17 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 85 {
				want := color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
				got, err := ParseHexColor(HexString(want))
				if err != nil {
					t.Fatalf("round trip (%d,%d,%d) error = %v", r, g, b, err)
				}
				if got != want {
					t.Fatalf("round trip (%d,%d,%d) = %v", r, g, b, got)
				}
			}
		}
	}
}
