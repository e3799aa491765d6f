package processor

import (
	"context"
	"image"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/overlayd/overlayd/internal/overlay"
)

type indexedFrame struct {
	idx   int
	frame *image.RGBA
}

// drainFrames pumps every frame from src through the overlay engine into
// sink, preserving source order exactly: 1:1 frame correspondence, no drops,
// no duplicates. With workers > 1 the overlay runs on a bounded pool and an
// index-keyed buffer re-serializes results before the sink sees them.
// Returns the number of frames written.
func drainFrames(ctx context.Context, src FrameSource, sink FrameSink, newEngine func() *overlay.Engine, workers int) (int, error) {
	if workers <= 1 {
		return drainSequential(ctx, src, sink, newEngine())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan indexedFrame, workers)
	results := make(chan indexedFrame, workers)
	readErr := make(chan error, 1)

	go func() {
		defer close(jobs)
		for idx := 0; ; idx++ {
			frame, err := src.ReadFrame()
			if err == io.EOF {
				readErr <- nil
				return
			}
			if err != nil {
				readErr <- err
				return
			}
			select {
			case jobs <- indexedFrame{idx: idx, frame: frame}:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine := newEngine()
			for f := range jobs {
				results <- indexedFrame{idx: f.idx, frame: engine.Apply(f.frame)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Ordered writer: hold out-of-order results until their predecessors
	// have been written.
	pending := make(map[int]*image.RGBA, workers)
	next := 0
	var writeErr error
	for f := range results {
		if writeErr != nil {
			continue // keep draining so the workers can exit
		}
		pending[f.idx] = f.frame
		for {
			frame, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := sink.WriteFrame(frame); err != nil {
				writeErr = errors.Wrap(ErrEncodeFailure, err.Error())
				cancel()
				break
			}
			next++
		}
	}

	if writeErr != nil {
		return next, writeErr
	}
	if err := <-readErr; err != nil {
		return next, classifyReadError(err)
	}
	return next, nil
}

func drainSequential(ctx context.Context, src FrameSource, sink FrameSink, engine *overlay.Engine) (int, error) {
	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		frame, err := src.ReadFrame()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, classifyReadError(err)
		}
		if err := sink.WriteFrame(engine.Apply(frame)); err != nil {
			return count, errors.Wrap(ErrEncodeFailure, err.Error())
		}
		count++
	}
}

func classifyReadError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Wrap(ErrUnreadableSource, err.Error())
}
