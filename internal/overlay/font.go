package overlay

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ResolvedFont carries the face used for layout and drawing, and whether the
// requested font could not be loaded and the embedded fallback is in use.
type ResolvedFont struct {
	Face     font.Face
	Fallback bool

	ttf    *truetype.Font
	sizePx int
}

// systemFontDirs are searched after the configured font directory when the
// request names a font file rather than a path.
var systemFontDirs = []string{
	"/usr/share/fonts/truetype",
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"/Library/Fonts",
	"C:\\Windows\\Fonts",
}

// ResolveFont loads a TrueType/OpenType font by file name or path at the
// given pixel size. On any load failure it returns the embedded default face
// at its native size, so the pipeline always has a usable font. It never
// returns an error; callers can check Fallback to see which branch was taken.
func ResolveFont(nameOrPath string, sizePx int, fontDir string) ResolvedFont {
	if sizePx < 1 {
		sizePx = 1
	}

	for _, path := range candidatePaths(nameOrPath, fontDir) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		ttf, err := freetype.ParseFont(data)
		if err != nil {
			continue
		}
		return ResolvedFont{
			Face:   newTruetypeFace(ttf, sizePx),
			ttf:    ttf,
			sizePx: sizePx,
		}
	}

	return ResolvedFont{Face: basicfont.Face7x13, Fallback: true}
}

// NewFace returns a face independent of Face. Truetype faces cache glyph
// rasterizations and are not safe for concurrent use, so each overlay worker
// draws with its own. The fallback face is stateless and shared as-is.
func (r ResolvedFont) NewFace() font.Face {
	if r.ttf == nil {
		return r.Face
	}
	return newTruetypeFace(r.ttf, r.sizePx)
}

// At 72 DPI one point is one pixel, so Options.Size is the pixel size.
func newTruetypeFace(ttf *truetype.Font, sizePx int) font.Face {
	return truetype.NewFace(ttf, &truetype.Options{
		Size: float64(sizePx),
		DPI:  72,
	})
}

func candidatePaths(nameOrPath, fontDir string) []string {
	paths := []string{nameOrPath}
	if filepath.IsAbs(nameOrPath) || strings.ContainsAny(nameOrPath, `/\`) {
		// An explicit path is tried as given, nowhere else.
		return paths
	}
	if fontDir != "" {
		paths = append(paths, filepath.Join(fontDir, nameOrPath))
	}
	for _, dir := range systemFontDirs {
		paths = append(paths, filepath.Join(dir, nameOrPath))
	}
	return paths
}
