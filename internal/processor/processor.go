// Package processor implements the transcode pipeline for one overlay job:
// open and inspect the source, compute the text layout once, then decode,
// overlay and re-encode every frame at the original geometry and frame rate.
package processor

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	ffmpegwrap "github.com/overlayd/overlayd/internal/ffmpeg"
	"github.com/overlayd/overlayd/internal/overlay"
)

var (
	// ErrUnreadableSource marks a local container that cannot be opened or
	// decoded.
	ErrUnreadableSource = errors.New("unreadable source video")
	// ErrEncodeFailure marks any failure writing or finalizing the output
	// stream. Partial output is deleted before it is returned.
	ErrEncodeFailure = errors.New("encode failure")
)

// Job describes one overlay transcode. The input path is a local temporary
// file owned by the job; it is deleted when Process returns, on every path.
type Job struct {
	InputPath  string
	OutputPath string

	Prompt    string
	MaxChars  int // <= 0: the prompt stays a single line
	PosX      *int
	PosY      *int
	FontScale float64
	StrokePx  int
	Color     color.RGBA
	FontName  string
}

// FrameSource is the decode end of the pipeline. ReadFrame returns io.EOF
// after the last frame.
type FrameSource interface {
	ReadFrame() (*image.RGBA, error)
	Close() error
}

// FrameSink is the encode end. It accepts frames strictly in presentation
// order.
type FrameSink interface {
	WriteFrame(*image.RGBA) error
	Close() error
	Abort()
}

// Transcoder runs overlay jobs. It is safe for concurrent use: every job
// owns its own streams and temporary paths.
type Transcoder struct {
	fontDir string
	workers int
	logger  *slog.Logger
}

// New creates a Transcoder. workers <= 0 selects the optimal count for the
// machine; workers == 1 disables per-frame parallelism entirely.
func New(fontDir string, workers int, logger *slog.Logger) *Transcoder {
	if workers <= 0 {
		workers = ffmpegwrap.GetOptimalThreadCount()
	}
	return &Transcoder{
		fontDir: fontDir,
		workers: workers,
		logger:  logger,
	}
}

// Process runs one job to completion: Open, Inspect, PlanLayout, OpenSink,
// Drain, Finalize. On success the encoded output is at job.OutputPath; on
// failure no partial output is left behind.
func (t *Transcoder) Process(ctx context.Context, job Job) error {
	defer os.Remove(job.InputPath)

	props, err := ffmpegwrap.ProbeStream(job.InputPath)
	if err != nil {
		return errors.Wrap(ErrUnreadableSource, err.Error())
	}

	plan := overlay.NewPlan(overlay.Params{
		Prompt:    job.Prompt,
		MaxChars:  job.MaxChars,
		PosX:      job.PosX,
		PosY:      job.PosY,
		FontScale: job.FontScale,
		FontName:  job.FontName,
		FontDir:   t.fontDir,
	}, props.Width, props.Height)
	if plan.Font.Fallback {
		t.logger.Warn("requested font unavailable, using embedded fallback",
			"font", job.FontName)
	}

	t.logger.Debug("transcode starting",
		"input", job.InputPath,
		"width", props.Width,
		"height", props.Height,
		"frame_rate", props.FrameRate.String(),
		"lines", len(plan.Lines),
		"workers", t.workers,
	)

	newEngine := func() *overlay.Engine {
		return overlay.NewEngine(plan, job.Color, job.StrokePx)
	}

	src := ffmpegwrap.NewDecoder(job.InputPath, props.Width, props.Height)
	defer src.Close()

	sink := ffmpegwrap.NewEncoder(job.OutputPath, props.Width, props.Height, props.FrameRate)

	frames, err := drainFrames(ctx, src, sink, newEngine, t.workers)
	if err != nil {
		sink.Abort()
		os.Remove(job.OutputPath)
		return err
	}
	if err := sink.Close(); err != nil {
		os.Remove(job.OutputPath)
		return errors.Wrap(ErrEncodeFailure, err.Error())
	}

	t.logger.Info("transcode complete",
		"output", job.OutputPath,
		"frames", frames,
		"frame_rate", props.FrameRate.String(),
	)
	return nil
}
