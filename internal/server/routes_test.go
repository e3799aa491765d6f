package server

import (
	"context"
	"encoding/json"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/overlayd/overlayd/internal/processor"
)

type fakeFetcher struct {
	calls int
	path  string
	err   error
}

func (f *fakeFetcher) Download(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeProcessor struct {
	calls  int
	job    processor.Job
	err    error
	output []byte
}

func (p *fakeProcessor) Process(ctx context.Context, job processor.Job) error {
	p.calls++
	p.job = job
	if p.err != nil {
		return p.err
	}
	return os.WriteFile(job.OutputPath, p.output, 0644)
}

func newTestRouter(fetcher *fakeFetcher, proc *fakeProcessor) http.Handler {
	return NewRouter(Config{
		Fetcher:   fetcher,
		Processor: proc,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartTime: time.Now(),
	})
}

func postOverlay(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/overlay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not JSON: %v", err)
	}
	return resp
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(&fakeFetcher{}, &fakeProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Version != Version {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestOverlayHandler_InvalidJSON(t *testing.T) {
	fetcher := &fakeFetcher{}
	router := newTestRouter(fetcher, &fakeProcessor{})

	rec := postOverlay(t, router, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "BAD_REQUEST" {
		t.Errorf("code = %q, want BAD_REQUEST", resp.Code)
	}
	if fetcher.calls != 0 {
		t.Error("fetcher called for a malformed request")
	}
}

func TestOverlayHandler_MissingPrompt(t *testing.T) {
	fetcher := &fakeFetcher{}
	router := newTestRouter(fetcher, &fakeProcessor{})

	rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", resp.Code)
	}
	if fetcher.calls != 0 {
		t.Error("fetcher called before validation passed")
	}
}

func TestOverlayHandler_InvalidColor(t *testing.T) {
	fetcher := &fakeFetcher{}
	router := newTestRouter(fetcher, &fakeProcessor{})

	rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4", "prompt": "hi", "text_color": "#zzzzzz"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "INVALID_COLOR" {
		t.Errorf("code = %q, want INVALID_COLOR", resp.Code)
	}
	if fetcher.calls != 0 {
		t.Error("fetcher called with an invalid color")
	}
}

func TestOverlayHandler_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	proc := &fakeProcessor{}
	router := newTestRouter(fetcher, proc)

	rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4", "prompt": "hi"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "SOURCE_FETCH_FAILED" {
		t.Errorf("code = %q, want SOURCE_FETCH_FAILED", resp.Code)
	}
	if proc.calls != 0 {
		t.Error("processor called after a failed fetch")
	}
}

func TestOverlayHandler_ProcessErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{processor.ErrUnreadableSource, "UNREADABLE_SOURCE"},
		{processor.ErrEncodeFailure, "ENCODE_FAILED"},
		{errors.New("something else"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		router := newTestRouter(&fakeFetcher{path: "/tmp/in.mp4"}, &fakeProcessor{err: errors.Wrap(tt.err, "details")})

		rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4", "prompt": "hi"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%v: status = %d, want 500", tt.err, rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != tt.code {
			t.Errorf("%v: code = %q, want %q", tt.err, resp.Code, tt.code)
		}
	}
}

func TestOverlayHandler_Success(t *testing.T) {
	video := []byte("encoded video bytes")
	proc := &fakeProcessor{output: video}
	router := newTestRouter(&fakeFetcher{path: filepath.Join(t.TempDir(), "in.mp4")}, proc)

	rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4", "prompt": "hello there", "max_chars": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="output.mp4"`) {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.String() != string(video) {
		t.Errorf("body = %q, want the encoded video", rec.Body.String())
	}
	if _, err := os.Stat(proc.job.OutputPath); !os.IsNotExist(err) {
		t.Errorf("output file %q not cleaned up", proc.job.OutputPath)
	}
}

func TestOverlayHandler_JobDefaults(t *testing.T) {
	proc := &fakeProcessor{output: []byte("v")}
	router := newTestRouter(&fakeFetcher{path: "/tmp/in-" + uuid.NewString() + ".mp4"}, proc)

	rec := postOverlay(t, router, `{"video_url": "http://example.com/a.mp4", "prompt": "hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	job := proc.job
	if job.StrokePx != 2 {
		t.Errorf("stroke = %d, want the default 2", job.StrokePx)
	}
	if job.FontScale != 1.0 {
		t.Errorf("font scale = %f, want 1.0", job.FontScale)
	}
	if job.FontName != "arial.ttf" {
		t.Errorf("font = %q, want arial.ttf", job.FontName)
	}
	if job.Color != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("color = %v, want opaque white", job.Color)
	}
	if job.MaxChars != 0 {
		t.Errorf("max chars = %d, want 0 when absent", job.MaxChars)
	}
	if job.PosX != nil || job.PosY != nil {
		t.Error("positions should stay nil when absent")
	}
	os.Remove(job.OutputPath)
}
