// Package types defines the public request surface of the overlay service.
package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Defaults applied by Validate when the corresponding field is absent.
const (
	DefaultFontScale = 1.0
	DefaultThickness = 2
	DefaultTextColor = "#ffffff"
	DefaultFont      = "arial.ttf"
)

// OverlayRequest describes one text-overlay job. Optional positions use
// pointers so that an explicit 0 can be told apart from an absent field.
type OverlayRequest struct {
	VideoURL  string  `json:"video_url"`
	Prompt    string  `json:"prompt"`
	PosX      *int    `json:"pos_x,omitempty"`
	PosY      *int    `json:"pos_y,omitempty"`
	FontScale float64 `json:"font_scale,omitempty"`
	Thickness *int    `json:"thickness,omitempty"`
	TextColor string  `json:"text_color,omitempty"`
	Font      string  `json:"font,omitempty"`
	MaxChars  *int    `json:"max_chars,omitempty"`
}

// Validate applies the documented defaults and rejects malformed requests.
// It performs no I/O; callers can rely on it running before any network or
// decode work starts.
func (r *OverlayRequest) Validate() error {
	if strings.TrimSpace(r.VideoURL) == "" {
		return errors.New("video_url is required")
	}
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	if r.FontScale == 0 {
		r.FontScale = DefaultFontScale
	}
	if r.FontScale < 0 {
		return errors.New("font_scale must be positive")
	}
	if r.Thickness == nil {
		d := DefaultThickness
		r.Thickness = &d
	}
	if *r.Thickness < 0 {
		return errors.New("thickness must be non-negative")
	}
	if r.TextColor == "" {
		r.TextColor = DefaultTextColor
	}
	if r.Font == "" {
		r.Font = DefaultFont
	}
	if r.MaxChars != nil && *r.MaxChars < 1 {
		return errors.New("max_chars must be positive")
	}
	return nil
}
