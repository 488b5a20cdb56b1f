package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// ErrUnsupportedScheme is returned for URLs that are neither http nor https.
var ErrUnsupportedScheme = errors.New("artifact: unsupported url scheme")

// Downloader writes the content behind a URL to a local file.
type Downloader interface {
	Download(ctx context.Context, rawURL, dest string) error
}

// HTTPDownloader fetches over plain or TLS HTTP depending on the URL scheme.
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader returns a downloader using client, or a default client
// when nil.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPDownloader{Client: client}
}

// Download GETs rawURL into dest. The file is only created after a 200
// response; if copying the body fails the partial file is removed.
func (d *HTTPDownloader) Download(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}
