// Package fetch retrieves remote source videos into local temporary storage.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/overlayd/overlayd/internal/config"
)

// ErrSourceFetch marks a failure retrieving the source video: a network
// error, or a non-success status from the source host.
var ErrSourceFetch = errors.New("source fetch failed")

// StatusError reports a non-success HTTP status from the source host.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source returned HTTP %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrSourceFetch
}

// Fetcher downloads source videos with a bounded timeout. Each download gets
// a uniquely named file, so concurrent jobs never share paths.
type Fetcher struct {
	client *http.Client
	tmpDir string
	logger *slog.Logger
}

func New(tmpDir string, logger *slog.Logger) *Fetcher {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		tmpDir: tmpDir,
		logger: logger,
	}
}

// Download retrieves url into a temporary file and returns its path. The
// caller owns the file. Nothing is left on disk when an error is returned.
func (f *Fetcher) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(ErrSourceFetch, err.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrSourceFetch, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	path := filepath.Join(f.tmpDir, config.TempFilePrefix+"src_"+uuid.NewString()+".mp4")
	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		os.Remove(path)
		return "", errors.Wrap(ErrSourceFetch, err.Error())
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "close temp file")
	}

	f.logger.Debug("source downloaded", "url", url, "path", path, "bytes", written)
	return path, nil
}
