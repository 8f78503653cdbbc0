// Package media downloads article images for channel posts.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxImageBytes = 10 << 20
	downloadTimeout      = 15 * time.Second
	userAgent            = "Mozilla/5.0 (compatible; GoalWireBot/1.0)"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Downloader fetches images over HTTP with a size cap. A failed download is
// not fatal to the pipeline; posts fall back to text-only.
type Downloader struct {
	httpClient *http.Client
	maxBytes   int64
	log        zerolog.Logger
}

func NewDownloader(logger zerolog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		maxBytes:   defaultMaxImageBytes,
		log:        logger.With().Str("component", "media").Logger(),
	}
}

// Download fetches an image and returns its bytes. Non-image responses and
// oversized files are rejected.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty image URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") && !hasImageExtension(url) {
		return nil, fmt.Errorf("not an image: content type %q", contentType)
	}

	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("image exceeded %d byte limit", d.maxBytes)
	}

	d.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("Image downloaded")
	return data, nil
}

func hasImageExtension(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
