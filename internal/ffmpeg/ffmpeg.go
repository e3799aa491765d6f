// Package ffmpeg wraps the ffmpeg toolchain: probing stream properties and
// moving raw frames in and out of containers over pipes.
package ffmpeg

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FrameRate is an exact rational frame rate as reported by ffprobe. Keeping
// the rational form lets 29.97fps sources round-trip without drift.
type FrameRate struct {
	Num int
	Den int
}

// ParseFrameRate parses ffprobe's r_frame_rate form, "30000/1001" or "25".
func ParseFrameRate(s string) (FrameRate, error) {
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return FrameRate{}, errors.Errorf("invalid frame rate %q", s)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return FrameRate{}, errors.Errorf("invalid frame rate %q", s)
	}
	if n <= 0 || d <= 0 {
		return FrameRate{}, errors.Errorf("invalid frame rate %q", s)
	}
	return FrameRate{Num: n, Den: d}, nil
}

func (r FrameRate) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Ratio returns the frame rate as frames per second.
func (r FrameRate) Ratio() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// StreamProperties describes the video stream of an input container. They are
// read once per job and preserved exactly in the output.
type StreamProperties struct {
	Width     int
	Height    int
	FrameRate FrameRate
	Duration  float64 // seconds, 0 if the container does not report one
	Codec     string
}

// ProbeStream extracts the video stream properties from a local file.
func ProbeStream(inputPath string) (*StreamProperties, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "error probing video")
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, errors.New("no streams found in video")
	}

	var videoStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		if codecType, _ := s["codec_type"].(string); codecType == "video" {
			videoStream = s
			break
		}
	}
	if videoStream == nil {
		return nil, errors.New("no video stream found")
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)
	if width <= 0 || height <= 0 {
		return nil, errors.New("video stream reports no dimensions")
	}

	rateStr, _ := videoStream["r_frame_rate"].(string)
	rate, err := ParseFrameRate(rateStr)
	if err != nil {
		return nil, errors.Wrap(err, "video stream frame rate")
	}

	props := &StreamProperties{
		Width:     int(width),
		Height:    int(height),
		FrameRate: rate,
	}
	props.Codec, _ = videoStream["codec_name"].(string)

	// Duration is informational only: try the stream, then the format.
	if durationStr, ok := videoStream["duration"].(string); ok {
		if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
			props.Duration = d
		}
	}
	if props.Duration == 0 {
		if format, ok := data["format"].(map[string]interface{}); ok {
			if durationStr, ok := format["duration"].(string); ok {
				if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
					props.Duration = d
				}
			}
		}
	}

	return props, nil
}

// CodecSettings describe one supported output format. The service encodes to
// a single fixed format chosen for broad playback compatibility.
type CodecSettings struct {
	VideoCodec      string
	PixelFormat     string
	ContainerFormat string
	FileExtension   string
	EncoderArgs     ffmpeg.KwArgs
}

var codecPresets = map[string]CodecSettings{
	"mp4": {
		VideoCodec:      "libx264",
		PixelFormat:     "yuv420p",
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderArgs: ffmpeg.KwArgs{
			"preset":   "fast",
			"movflags": "+faststart",
		},
	},
}

// GetCodecSettings returns the settings for an output format, defaulting to
// mp4 for unknown formats.
func GetCodecSettings(outputFormat string) CodecSettings {
	if settings, ok := codecPresets[outputFormat]; ok {
		return settings
	}
	return codecPresets["mp4"]
}

// GetSupportedFormats returns the supported output formats, sorted.
func GetSupportedFormats() []string {
	formats := maps.Keys(codecPresets)
	slices.Sort(formats)
	return formats
}

// GetOptimalThreadCount returns the worker count used when none is
// configured: 75% of available cores to prevent overload, minimum 1.
func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	return int(math.Max(1, float64(cpuCount)*0.75))
}
