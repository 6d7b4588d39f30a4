package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/models"
)

// Router dispatches an identifier to the reader for its scheme.
type Router struct {
	file Reader
	gcs  Reader
	http Reader
	log  zerolog.Logger
}

// Option configures a Router.
type Option func(*routerOptions)

type routerOptions struct {
	httpClient *http.Client
	gcsOpener  ObjectOpener
	logger     *zerolog.Logger
}

// WithHTTPClient sets the client used for http(s) identifiers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *routerOptions) { o.httpClient = c }
}

// WithObjectOpener replaces the Cloud Storage client used for gs:// identifiers.
func WithObjectOpener(op ObjectOpener) Option {
	return func(o *routerOptions) { o.gcsOpener = op }
}

// WithLogger sets the logger; the global zerolog logger is used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(o *routerOptions) { o.logger = &l }
}

// New creates a Router from source settings. HTTP and GCS reads share one
// cache with cfg.CacheTTL seconds of lifetime.
func New(cfg config.SourceConfig, opts ...Option) *Router {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	cache := infra.NewCache[[]byte](cfg.CacheDuration())
	timeout := cfg.HTTPTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var gcs *GCSReader
	if o.gcsOpener != nil {
		gcs = NewGCSReaderWithOpener(o.gcsOpener, cache)
	} else {
		gcs = NewGCSReader(cfg.GCSCredentialsFile, cache)
	}

	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}

	return &Router{
		file: FileReader{},
		gcs:  gcs,
		http: NewHTTPReader(o.httpClient, timeout, infra.PerSecond(cfg.RateLimitPerSec), cache),
		log:  logger.With().Str("component", "source").Logger(),
	}
}

// Read loads id with the reader matching its scheme.
func (r *Router) Read(ctx context.Context, id string) (*models.RawStatement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ReadError{ID: id, Err: ErrNotFound}
	}

	start := time.Now()
	raw, err := r.route(id).Read(ctx, id)
	if err != nil {
		r.log.Debug().Err(err).Str("id", id).Msg("statement read failed")
		return nil, readError(id, err)
	}
	r.log.Debug().
		Str("id", id).
		Int("columns", len(raw.Columns)).
		Int("rows", len(raw.Rows)).
		Dur("took", time.Since(start)).
		Msg("statement read")
	return raw, nil
}

func (r *Router) route(id string) Reader {
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, GCSScheme):
		return r.gcs
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return r.http
	default:
		return r.file
	}
}

// Close releases clients held by the router.
func (r *Router) Close() error {
	if g, ok := r.gcs.(*GCSReader); ok {
		return g.Close()
	}
	return nil
}
