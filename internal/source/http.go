package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/models"
)

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "finratios/1.0 (+https://github.com/seenimoa/finratios)"

// maxBodySize caps a downloaded statement.
const maxBodySize = 32 << 20

// HTTPReader downloads statements over HTTP(S). Requests are rate limited
// and response bodies are cached by URL.
type HTTPReader struct {
	client  *http.Client
	limiter *infra.RateLimiter
	cache   *infra.Cache[[]byte]
}

// NewHTTPReader creates an HTTP reader. A nil client gets a default one
// with the given timeout.
func NewHTTPReader(client *http.Client, timeout time.Duration, limiter *infra.RateLimiter, cache *infra.Cache[[]byte]) *HTTPReader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if limiter == nil {
		limiter = infra.PerSecond(2)
	}
	if cache == nil {
		cache = infra.NewCache[[]byte](0)
	}
	return &HTTPReader{client: client, limiter: limiter, cache: cache}
}

// Read fetches id and decodes it by the extension of the URL path.
func (h *HTTPReader) Read(ctx context.Context, id string) (*models.RawStatement, error) {
	rawURL, fragment := splitFragment(id)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, readError(id, fmt.Errorf("parse url: %w", err))
	}
	ext := extension(u.Path)
	if !supportedExtension(ext) {
		return nil, readError(id, fmt.Errorf("%w: %q", ErrUnsupported, ext))
	}

	body, err := h.fetch(ctx, rawURL)
	if err != nil {
		return nil, readError(id, err)
	}
	raw, err := decode(id, ext, fragment, bytes.NewReader(body))
	if err != nil {
		return nil, readError(id, err)
	}
	return raw, nil
}

func (h *HTTPReader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if body, ok := h.cache.Get(rawURL); ok {
		return body, nil
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/csv, text/html, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	h.cache.Set(rawURL, body)
	return body, nil
}
