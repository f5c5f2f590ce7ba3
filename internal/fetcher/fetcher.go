// Package fetcher materializes a resolved media URL into bytes, enforcing
// size and time bounds during the transfer.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/iconidentify/reelgrab/internal/config"
	"github.com/iconidentify/reelgrab/internal/domain"
)

// Fetcher performs bounded binary downloads of resolved video URLs.
type Fetcher struct {
	client  *http.Client
	cfg     config.DownloadConfig
	logger  *slog.Logger
	referer string
}

// New creates a new Fetcher.
func New(cfg config.DownloadConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:     cfg,
		logger:  slog.Default(),
		referer: "https://www.instagram.com/",
	}
}

// SetLogger sets the logger for download reporting.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	f.logger = logger
}

// Fetch GETs the asset at url and returns its raw bytes. The configured size
// bound is enforced while streaming: the transfer aborts with ErrTooLarge as
// soon as the limit is crossed, without buffering the full payload first.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Headers mimicking a generic browser video request
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Referer", f.referer)
	req.Header.Set("Accept", "video/webm,video/ogg,video/*;q=0.9,application/ogg;q=0.7,audio/*;q=0.6,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	maxBytes := f.cfg.MaxFileSizeBytes()

	// Fail early when the source announces a too-large payload.
	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: announced %d bytes, limit %d", domain.ErrTooLarge, resp.ContentLength, maxBytes)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	// Read one byte past the limit so an unannounced oversize stream is
	// detected mid-transfer rather than after buffering completes.
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if n > maxBytes {
		return nil, fmt.Errorf("%w: stream exceeded %d bytes", domain.ErrTooLarge, maxBytes)
	}

	f.logger.Debug("asset fetched",
		"bytes", n,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return buf.Bytes(), nil
}

// classifyStatus maps non-2xx responses to acquisition failure kinds.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", domain.ErrNotFound, code)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrPrivateContent, code)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", domain.ErrUnauthorized, code)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrNetwork, code)
	}
}

// classifyTransportError maps transport failures to Timeout or Network.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, err)
	}
	// net/http wraps client timeouts in url.Error with Timeout()=true.
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrNetwork, err)
}
