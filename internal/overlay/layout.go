package overlay

import (
	"math"

	"golang.org/x/image/font"

	"github.com/overlayd/overlayd/internal/config"
)

// Params collects everything the layout depends on besides the video
// dimensions.
type Params struct {
	Prompt    string
	MaxChars  int // <= 0 disables wrapping
	PosX      *int
	PosY      *int
	FontScale float64
	FontName  string
	FontDir   string
}

// Plan is the text layout for one job, computed once before any frame is
// processed and reused unchanged for every frame.
type Plan struct {
	Lines      []string
	Font       ResolvedFont
	LineWidths []int // tight bounding-box width per line, px
	LineHeight int   // ascent + descent, px
	Gap        int   // fixed inter-line gap, px
	BlockY     int   // top of the first line
	LineX      []int // left edge per line
}

// NewPlan computes the layout plan for the given frame dimensions. The result
// is deterministic for a given (params, width, height).
func NewPlan(p Params, frameWidth, frameHeight int) *Plan {
	sizePx := int(math.Round(p.FontScale * config.BaseFontSizePx))
	if sizePx < 1 {
		sizePx = 1
	}
	resolved := ResolveFont(p.FontName, sizePx, p.FontDir)

	lines := WrapLines(p.Prompt, p.MaxChars)

	metrics := resolved.Face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()

	widths := make([]int, len(lines))
	xs := make([]int, len(lines))
	for i, line := range lines {
		widths[i] = font.MeasureString(resolved.Face, line).Ceil()
		if p.PosX != nil {
			xs[i] = *p.PosX
		} else {
			xs[i] = (frameWidth - widths[i]) / 2
		}
	}

	var blockY int
	if p.PosY != nil {
		blockY = *p.PosY
	} else {
		total := len(lines)*lineHeight + (len(lines)-1)*config.LineGapPx
		blockY = frameHeight - total - config.BottomMarginPx
	}

	return &Plan{
		Lines:      lines,
		Font:       resolved,
		LineWidths: widths,
		LineHeight: lineHeight,
		Gap:        config.LineGapPx,
		BlockY:     blockY,
		LineX:      xs,
	}
}

// LineY returns the top edge of line i.
func (p *Plan) LineY(i int) int {
	return p.BlockY + i*(p.LineHeight+p.Gap)
}
