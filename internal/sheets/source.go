// Package sheets downloads a published spreadsheet as CSV text.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/logging"
)

// ErrNoURL is returned when neither a default nor an explicit URL is set.
var ErrNoURL = errors.New("sheet URL is not configured")

// ErrBadStatus wraps non-200 responses from the spreadsheet host.
var ErrBadStatus = errors.New("sheet source returned an error status")

// Source fetches CSV text over HTTP.
type Source struct {
	defaultURL string
	maxBytes   int64
	httpClient *http.Client
}

// NewSource creates a Source. maxBytes <= 0 disables the size limit.
func NewSource(defaultURL string, maxBytes int64, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Source{
		defaultURL: strings.TrimSpace(defaultURL),
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DefaultURL is the URL Fetch uses when none is given.
func (s *Source) DefaultURL() string { return s.defaultURL }

// Fetch downloads url, or the default URL when url is empty, and returns
// the body as text with any BOM removed and invalid UTF-8 replaced.
func (s *Source) Fetch(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		url = s.defaultURL
	}
	if url == "" {
		return "", ErrNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text, n, err := csvimport.ReadSheet(resp.Body, s.maxBytes)
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).Debug("sheet downloaded",
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
