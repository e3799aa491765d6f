package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// strokeColor is the fixed outline color around each glyph.
var strokeColor = color.RGBA{A: 0xff}

// Engine draws a fixed layout plan onto frames. Apply never mutates its
// input, so frames can be processed in any order and on any worker; one
// Engine instance must not be shared between workers because it owns a
// glyph-caching face.
type Engine struct {
	plan   *Plan
	face   font.Face
	color  color.RGBA
	stroke int
}

// NewEngine creates an engine for one worker.
func NewEngine(plan *Plan, textColor color.RGBA, strokePx int) *Engine {
	if strokePx < 0 {
		strokePx = 0
	}
	return &Engine{
		plan:   plan,
		face:   plan.Font.NewFace(),
		color:  textColor,
		stroke: strokePx,
	}
}

// Apply returns a copy of frame with every plan line drawn at its computed
// position: a black outline of the configured stroke width around each glyph,
// filled with the text color. The output has identical dimensions and pixel
// layout; pixels outside the glyph and stroke footprints are bit-identical to
// the input.
func (e *Engine) Apply(frame *image.RGBA) *image.RGBA {
	out := &image.RGBA{
		Pix:    append([]uint8(nil), frame.Pix...),
		Stride: frame.Stride,
		Rect:   frame.Rect,
	}

	ascent := e.face.Metrics().Ascent
	for i, line := range e.plan.Lines {
		if line == "" {
			continue
		}
		x := e.plan.LineX[i]
		y := e.plan.LineY(i)
		dot := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + ascent}

		// The stroke is offset passes within the stroke radius; it grows the
		// glyph footprint without shifting the anchor.
		s := e.stroke
		for dy := -s; dy <= s; dy++ {
			for dx := -s; dx <= s; dx++ {
				if dx*dx+dy*dy > s*s || (dx == 0 && dy == 0) {
					continue
				}
				e.drawString(out, line, strokeColor, fixed.Point26_6{
					X: dot.X + fixed.I(dx),
					Y: dot.Y + fixed.I(dy),
				})
			}
		}
		e.drawString(out, line, e.color, dot)
	}
	return out
}

func (e *Engine) drawString(dst *image.RGBA, line string, col color.RGBA, dot fixed.Point26_6) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: e.face,
		Dot:  dot,
	}
	d.DrawString(line)
}
