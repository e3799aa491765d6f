package ffmpeg

import (
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Raw frames cross the pipe as packed 8-bit RGBA, which matches image.RGBA's
// pixel layout byte for byte, so no channel reordering happens in Go. The
// encoder converts to the output pixel format itself.
const rawPixelFormat = "rgba"

const bytesPerPixel = 4

// Decoder reads a video file as a sequence of RGBA frames. It drives one
// ffmpeg process writing rawvideo to a pipe.
type Decoder struct {
	width    int
	height   int
	frameLen int
	r        *io.PipeReader
	done     chan error
}

// NewDecoder starts decoding the input at the given geometry, which must
// match the probed stream properties.
func NewDecoder(inputPath string, width, height int) *Decoder {
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		err := ffmpeg.Input(inputPath).
			Output("pipe:", ffmpeg.KwArgs{
				"format":  "rawvideo",
				"pix_fmt": rawPixelFormat,
			}).
			WithOutput(pw).
			Run()
		pw.CloseWithError(err)
		done <- err
	}()

	return &Decoder{
		width:    width,
		height:   height,
		frameLen: width * height * bytesPerPixel,
		r:        pr,
		done:     done,
	}
}

// ReadFrame returns the next decoded frame, or io.EOF after the last one.
// Each frame is an independent buffer the caller owns.
func (d *Decoder) ReadFrame() (*image.RGBA, error) {
	buf := make([]byte, d.frameLen)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		switch err {
		case io.EOF:
			return nil, io.EOF
		case io.ErrUnexpectedEOF:
			return nil, errors.New("decode stream truncated mid-frame")
		default:
			return nil, errors.Wrap(err, "read frame")
		}
	}
	return &image.RGBA{
		Pix:    buf,
		Stride: d.width * bytesPerPixel,
		Rect:   image.Rect(0, 0, d.width, d.height),
	}, nil
}

// Close tears down the decode pipe. Closing before end of stream makes the
// ffmpeg process exit on its next write. Safe to call after EOF.
func (d *Decoder) Close() error {
	d.r.Close()
	<-d.done
	return nil
}

// Encoder writes RGBA frames to an H.264 mp4 file at fixed dimensions and
// frame rate. Frames must arrive in presentation order; the sink performs no
// reordering.
type Encoder struct {
	frameLen int
	w        *io.PipeWriter
	done     chan error
}

// NewEncoder starts an encode to outputPath. The stream carries no audio
// track: the rawvideo input has none to begin with.
func NewEncoder(outputPath string, width, height int, rate FrameRate) *Encoder {
	settings := GetCodecSettings("mp4")
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		outputArgs := ffmpeg.KwArgs{
			"c:v":     settings.VideoCodec,
			"pix_fmt": settings.PixelFormat,
			"format":  settings.ContainerFormat,
		}
		for k, v := range settings.EncoderArgs {
			outputArgs[k] = v
		}
		err := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
			"format":    "rawvideo",
			"pix_fmt":   rawPixelFormat,
			"s":         fmt.Sprintf("%dx%d", width, height),
			"framerate": rate.String(),
		}).
			Output(outputPath, outputArgs).
			OverWriteOutput().
			WithInput(pr).
			Run()
		// Unblocks a writer stuck in WriteFrame if the process died early.
		pr.CloseWithError(errors.Wrap(err, "encoder exited"))
		done <- err
	}()

	return &Encoder{
		frameLen: width * height * bytesPerPixel,
		w:        pw,
		done:     done,
	}
}

// WriteFrame submits one frame to the encoder.
func (e *Encoder) WriteFrame(frame *image.RGBA) error {
	if len(frame.Pix) != e.frameLen {
		return errors.Errorf("frame is %d bytes, encoder geometry needs %d", len(frame.Pix), e.frameLen)
	}
	if _, err := e.w.Write(frame.Pix); err != nil {
		return errors.Wrap(err, "write frame")
	}
	return nil
}

// Close flushes the stream and waits for the encoder process to finish. The
// output file is complete only after Close returns nil.
func (e *Encoder) Close() error {
	e.w.Close()
	if err := <-e.done; err != nil {
		return errors.Wrap(err, "finalize encode")
	}
	return nil
}

// Abort tears the encode down without flushing. The caller is expected to
// delete the partial output file.
func (e *Encoder) Abort() {
	e.w.CloseWithError(errors.New("encode aborted"))
	<-e.done
}
