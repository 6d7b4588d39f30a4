// Package api provides the HTTP REST API server for finratios.
//
// It exposes endpoints to run ratio jobs, clean single statements, normalize
// metric names and inspect the output schema and effective configuration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/pipeline"
	"github.com/seenimoa/finratios/internal/ratio"
	"github.com/seenimoa/finratios/internal/sink"
	"github.com/seenimoa/finratios/internal/source"
	"github.com/seenimoa/finratios/internal/statement"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// WriterFactory opens the sink a ratio run writes to.
type WriterFactory func(ctx context.Context, cfg config.SinkConfig) (sink.Writer, error)

// Server is the HTTP API server.
type Server struct {
	router        chi.Router
	mu            sync.RWMutex // guards cfg
	cfg           *config.Config
	reader        source.Reader
	newWriter     WriterFactory
	persistConfig bool // PUT /api/v1/config writes the config file
	version       string
	log           zerolog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithWriterFactory replaces the sink built from the configuration.
func WithWriterFactory(f WriterFactory) Option {
	return func(s *Server) { s.newWriter = f }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithConfigPersistence makes configuration updates save to the config file.
func WithConfigPersistence(enabled bool) Option {
	return func(s *Server) { s.persistConfig = enabled }
}

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a configured API server with all routes and middleware.
// Statements are read through reader.
func NewServer(cfg *config.Config, reader source.Reader, opts ...Option) *Server {
	srv := &Server{
		cfg:    cfg,
		reader: reader,
		newWriter: func(ctx context.Context, cfg config.SinkConfig) (sink.Writer, error) {
			return sink.New(ctx, cfg, os.Stdout)
		},
		version: "dev",
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.log = srv.log.With().Str("component", "api").Logger()
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-done:
	}
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Ratios
		r.Get("/ratios/schema", s.handleSchema)
		r.Post("/ratios", s.handleRatios)

		// Statements
		r.Post("/statements/clean", s.handleClean)
		r.Post("/normalize", s.handleNormalize)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request with zerolog.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("took", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RatioRequest is the body for POST /api/v1/ratios. Empty fields fall back
// to the pipeline and sink configuration.
type RatioRequest struct {
	Company    string            `json:"company"`
	Year       int               `json:"year"`
	Statements map[string]string `json:"statements"` // "pl"/"bs"/"cf" -> identifier
	Mode       string            `json:"mode"`
	DryRun     bool              `json:"dry_run"`
}

// RatioResponse is the data of a finished ratio run.
type RatioResponse struct {
	RunID      string                                   `json:"run_id"`
	Company    string                                   `json:"company"`
	Year       int                                      `json:"year"`
	Empty      bool                                     `json:"empty"`
	Written    bool                                     `json:"written"`
	Records    []models.RatioRecord                     `json:"records"`
	Stats      map[models.StatementType]statement.Stats `json:"stats"`
	DurationMS int64                                    `json:"duration_ms"`
}

// SchemaResponse describes the ratio output and the columns it reads.
type SchemaResponse struct {
	Columns  []string            `json:"columns"`
	Required map[string][]string `json:"required"` // keyed by statement prefix
}

// CleanRequest is the body for POST /api/v1/statements/clean. Without an ID
// the statement resolves from the pipeline configuration for Company.
type CleanRequest struct {
	StatementType string `json:"statement_type"`
	Company       string `json:"company,omitempty"`
	ID            string `json:"id,omitempty"`
	Year          int    `json:"year,omitempty"` // when set, also pivot this year
}

// CleanResponse holds the long form of one statement.
type CleanResponse struct {
	StatementType models.StatementType  `json:"statement_type"`
	Records       []models.LongRecord   `json:"records"`
	Stats         statement.Stats       `json:"stats"`
	Years         []int                 `json:"years"`
	Pivot         *statement.PivotTable `json:"pivot,omitempty"`
}

// NormalizeRequest is the body for POST /api/v1/normalize.
type NormalizeRequest struct {
	Value         string `json:"value"`
	StatementType string `json:"statement_type,omitempty"` // empty strips no period token
	Header        bool   `json:"header"`
}

// NormalizeResponse pairs the input with its token.
type NormalizeResponse struct {
	Value string `json:"value"`
	Token string `json:"token"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	required := make(map[string][]string, len(models.StatementTypes))
	for t, cols := range ratio.RequiredColumns() {
		required[t.Prefix()] = cols
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: SchemaResponse{
			Columns:  models.RatioColumns(),
			Required: required,
		},
	})
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	var req RatioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := s.snapshotConfig()
	job, err := jobFromRequest(&cfg, req)
	if err != nil {
		writeError(w, requestStatus(err), err.Error())
		return
	}

	var writer sink.Writer
	if !job.DryRun {
		writer, err = s.newWriter(r.Context(), cfg.Sink)
		if err != nil {
			s.log.Error().Err(err).Msg("open sink")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer func() {
			if err := sink.Close(writer); err != nil {
				s.log.Warn().Err(err).Msg("close sink")
			}
		}()
	}

	p := pipeline.New(s.reader, writer, pipeline.Options{
		LenientSchema: !cfg.Ratio.StrictSchema,
		Logger:        &s.log,
	})
	res, err := p.Run(r.Context(), job)
	if err != nil {
		s.log.Error().Err(err).Str("company", job.Company).Int("year", job.Year).Msg("ratio run failed")
		writeError(w, statusFor(err), err.Error())
		return
	}

	records := res.Records
	if records == nil {
		records = []models.RatioRecord{}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: RatioResponse{
			RunID:      res.RunID,
			Company:    res.Company,
			Year:       res.Year,
			Empty:      res.Empty(),
			Written:    res.Written,
			Records:    records,
			Stats:      res.Stats,
			DurationMS: res.Duration.Milliseconds(),
		},
	})
}

// errStatementIDs rejects request-supplied statement identifiers when
// api.allow_statement_ids is off.
var errStatementIDs = errors.New("statement identifiers are resolved from the pipeline configuration; set api.allow_statement_ids to pass them in requests")

// requestStatus maps a request validation error to an HTTP status.
func requestStatus(err error) int {
	if errors.Is(err, errStatementIDs) {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// requestCompany returns the normalized company of a request, falling back
// to the configured one.
func requestCompany(cfg *config.Config, company string) (string, error) {
	if company == "" {
		company = cfg.Pipeline.Company
	}
	company = utils.NormalizeCompany(company)
	if !utils.IsValidCompany(company) {
		return "", fmt.Errorf("invalid company %q", company)
	}
	return company, nil
}

// jobFromRequest fills request gaps from the configuration.
func jobFromRequest(cfg *config.Config, req RatioRequest) (pipeline.Job, error) {
	company, err := requestCompany(cfg, req.Company)
	if err != nil {
		return pipeline.Job{}, err
	}

	year := req.Year
	if year == 0 {
		year = cfg.Pipeline.Year
	}

	modeName := req.Mode
	if modeName == "" {
		modeName = cfg.Sink.Mode
	}
	mode, err := sink.ParseMode(modeName)
	if err != nil {
		return pipeline.Job{}, err
	}

	for key := range req.Statements {
		if _, err := models.ParseStatementType(key); err != nil {
			return pipeline.Job{}, err
		}
	}
	if len(req.Statements) > 0 && !cfg.API.AllowStatementIDs {
		return pipeline.Job{}, errStatementIDs
	}

	return pipeline.Job{
		Company:    company,
		Year:       year,
		Statements: pipeline.ResolveStatements(cfg.Pipeline, company, req.Statements),
		Mode:       mode,
		DryRun:     req.DryRun,
	}, nil
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req CleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := models.ParseStatementType(req.StatementType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.snapshotConfig()
	id := req.ID
	if id != "" && !cfg.API.AllowStatementIDs {
		writeError(w, http.StatusForbidden, errStatementIDs.Error())
		return
	}
	if id == "" {
		company, err := requestCompany(&cfg, req.Company)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id = pipeline.ResolveStatements(cfg.Pipeline, company, nil)[t]
	}

	raw, err := s.reader.Read(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("read statement")
		writeError(w, statusFor(err), err.Error())
		return
	}
	records, stats, err := statement.Clean(t, raw)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := CleanResponse{
		StatementType: t,
		Records:       records,
		Stats:         stats,
		Years:         statement.Years(records),
	}
	if req.Year != 0 {
		pt, err := statement.Pivot(statement.FilterYear(records, req.Year), t.Prefix())
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		resp.Pivot = pt
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var n statement.Normalizer
	if req.StatementType != "" {
		t, err := models.ParseStatementType(req.StatementType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		n = statement.NewNormalizer(t)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: NormalizeResponse{
			Value: req.Value,
			Token: n.Normalize(req.Value, req.Header),
		},
	})
}

// statusFor maps a pipeline or statement error to an HTTP status.
func statusFor(err error) int {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == pipeline.StageValidate {
		return http.StatusBadRequest
	}
	var readErr *source.ReadError
	switch {
	case errors.As(err, &readErr):
		return http.StatusBadGateway
	case errors.Is(err, statement.ErrStructural), errors.Is(err, ratio.ErrSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
