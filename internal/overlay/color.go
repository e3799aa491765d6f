package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidColor reports a malformed hex color string.
var ErrInvalidColor = errors.New("invalid hex color")

// ParseHexColor parses a 6-hex-digit color string with an optional leading
// '#' into an opaque RGBA value.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// HexString formats c as "#rrggbb", the inverse of ParseHexColor.
func HexString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
