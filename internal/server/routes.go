package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/overlayd/overlayd/internal/config"
	"github.com/overlayd/overlayd/internal/overlay"
	"github.com/overlayd/overlayd/internal/processor"
	"github.com/overlayd/overlayd/pkg/types"
)

const Version = "0.1.0"

func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/overlay", overlayHandler(cfg))

	return r
}

func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: Version,
			UptimeS: uptime,
		})
	}
}

// overlayHandler runs one job end to end: validate eagerly (before any I/O),
// download the source, transcode with the overlay, stream the result back,
// and clean up every transient artifact.
func overlayHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.OverlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if err := req.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}
		textColor, err := overlay.ParseHexColor(req.TextColor)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_COLOR")
			return
		}

		ctx := r.Context()

		inputPath, err := cfg.Fetcher.Download(ctx, req.VideoURL)
		if err != nil {
			cfg.Logger.Warn("source fetch failed", "url", req.VideoURL, "error", err)
			WriteError(w, http.StatusBadRequest, "could not download video", "SOURCE_FETCH_FAILED")
			return
		}

		maxChars := 0
		if req.MaxChars != nil {
			maxChars = *req.MaxChars
		}
		outputPath := filepath.Join(os.TempDir(), config.TempFilePrefix+"out_"+uuid.NewString()+".mp4")

		job := processor.Job{
			InputPath:  inputPath,
			OutputPath: outputPath,
			Prompt:     req.Prompt,
			MaxChars:   maxChars,
			PosX:       req.PosX,
			PosY:       req.PosY,
			FontScale:  req.FontScale,
			StrokePx:   *req.Thickness,
			Color:      textColor,
			FontName:   req.Font,
		}

		if err := cfg.Processor.Process(ctx, job); err != nil {
			cfg.Logger.Error("overlay job failed", "url", req.VideoURL, "error", err)
			writeProcessError(w, err)
			return
		}
		defer os.Remove(outputPath)

		serveVideo(w, cfg, outputPath)
	}
}

func writeProcessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, processor.ErrUnreadableSource):
		WriteError(w, http.StatusInternalServerError, "could not open video", "UNREADABLE_SOURCE")
	case errors.Is(err, processor.ErrEncodeFailure):
		WriteError(w, http.StatusInternalServerError, "could not encode video", "ENCODE_FAILED")
	default:
		WriteError(w, http.StatusInternalServerError, "overlay job failed", "INTERNAL_ERROR")
	}
}

func serveVideo(w http.ResponseWriter, cfg Config, path string) {
	f, err := os.Open(path)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "output file missing", "INTERNAL_ERROR")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="output.mp4"`)
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		cfg.Logger.Warn("response streaming interrupted", "error", err)
	}
}
