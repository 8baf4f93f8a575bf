package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	downloadTimeout  = 15 * time.Second
	maxImageBytes    = 20 << 20 // 20 MiB
	downloadAttempts = 3
	baseBackoff      = time.Second
)

// PermanentError marks a failure that must not be retried (missing or
// forbidden resource, non-image payload, unsupported format).
type PermanentError struct {
	Reason string
}

// Error implements the error interface.
func (e *PermanentError) Error() string { return e.Reason }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Downloader fetches one image and reports its content type.
type Downloader interface {
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPDownloader implements Downloader over net/http with a bounded
// per-request timeout.
type HTTPDownloader struct {
	client *http.Client
}

var _ Downloader = (*HTTPDownloader)(nil)

// NewHTTPDownloader creates a downloader with the default image timeout.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Download performs an HTTP GET for the image. 404/403 responses and
// non-image content types fail permanently; 5xx responses and transport
// errors are retryable.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", &PermanentError{Reason: fmt.Sprintf("invalid image url: %v", err)}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return nil, "", &PermanentError{Reason: fmt.Sprintf("image fetch returned %d", resp.StatusCode)}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, "", &PermanentError{Reason: fmt.Sprintf("image fetch returned %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", &PermanentError{Reason: fmt.Sprintf("not an image content type: %q", contentType)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}

	return data, contentType, nil
}

// withRetry runs fn up to attempts times with exponential backoff
// (1s, 2s, 4s). Permanent errors short-circuit.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := baseBackoff << (attempt - 2)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsPermanent(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
