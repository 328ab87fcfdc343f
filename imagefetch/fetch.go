// Package imagefetch retrieves header images for documents and decodes their
// pixel dimensions. Fetching runs in the background; callers await the result
// when they reach the image's slot.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrStatus is returned for non-2xx HTTP responses.
var ErrStatus = errors.New("imagefetch: unexpected HTTP status")

// DefaultMaxBytes caps the size of a fetched image.
const DefaultMaxBytes = 16 << 20

// Fetcher returns the raw bytes of an image.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, src string) ([]byte, error) { return f(ctx, src) }

// HTTPFetcher fetches http(s) URLs.
type HTTPFetcher struct {
	Client   *http.Client // nil means http.DefaultClient
	MaxBytes int64        // 0 means DefaultMaxBytes
}

func (h HTTPFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("imagefetch: build request for %s: %w", src, err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagefetch: get %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, src, resp.StatusCode)
	}
	limit := h.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("imagefetch: read %s: %w", src, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("imagefetch: %s exceeds %d bytes", src, limit)
	}
	return data, nil
}

// FileFetcher reads local files; relative paths are resolved against BaseDir.
type FileFetcher struct {
	BaseDir string
}

func (f FileFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(p) && f.BaseDir != "" {
		p = filepath.Join(f.BaseDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("imagefetch: %w", err)
	}
	return data, nil
}

// Router dispatches on the source's scheme: http and https go to HTTP,
// everything else to File.
type Router struct {
	HTTP Fetcher
	File Fetcher
}

// NewRouter returns a Router with a default HTTP client and files relative to baseDir.
func NewRouter(baseDir string) Router {
	return Router{HTTP: HTTPFetcher{}, File: FileFetcher{BaseDir: baseDir}}
}

func (r Router) Fetch(ctx context.Context, src string) ([]byte, error) {
	if u, err := url.Parse(src); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if r.HTTP == nil {
				return nil, fmt.Errorf("imagefetch: no HTTP fetcher for %s", src)
			}
			return r.HTTP.Fetch(ctx, src)
		}
	}
	if r.File == nil {
		return nil, fmt.Errorf("imagefetch: no file fetcher for %s", src)
	}
	return r.File.Fetch(ctx, src)
}
