package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

const DefaultDownloadTimeout = 30 * time.Second

var HTTPClient = NewHTTPClient(DefaultDownloadTimeout)

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

func DownloadFile(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	if client == nil {
		client = HTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// FilenameFromURL returns the last path segment of rawURL, or fallback.
func FilenameFromURL(rawURL, fallback string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
