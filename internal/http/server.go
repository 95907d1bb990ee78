// Package http serves the transaction API.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// TransactionService is what the handlers need from the service layer.
type TransactionService interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context) (core.Summary, error)
	Revision() uint64
	Ping(ctx context.Context) error
}

// Config tunes the server. Zero values fall back to defaults.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	SummaryCacheSize   int
	SummaryCacheTTL    time.Duration
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	svc       TransactionService
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	summaries *cache.LRU[uint64, core.Summary]
	caches    *cache.Manager

	stopCleanup  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and starts the background cleanup
// loops. Shutdown stops them.
func NewServer(cfg Config, svc TransactionService) *Server {
	if cfg.Logger == nil {
		cfg.Logger = applog.Discard()
	}
	if cfg.SummaryCacheSize <= 0 {
		cfg.SummaryCacheSize = 16
	}
	if cfg.SummaryCacheTTL <= 0 {
		cfg.SummaryCacheTTL = 5 * time.Minute
	}
	logger := cfg.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		svc:       svc,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:  security.NewDetector(cfg.Logger),
		summaries: cache.NewLRU[uint64, core.Summary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
		caches:    cache.NewManager(cfg.Logger),
	}
	s.tracer = trace.NewMiddleware(cfg.Logger, s.detector.ClientIP)
	s.caches.Register(s.summaries)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", s.handleList)
	mux.HandleFunc("POST /api/transactions", s.handleCreate)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	go s.caches.Run(ctx, time.Minute)

	return s
}

// chain wraps h, outermost first: CORS, trace, request logger, probe
// detection, security headers, rate limit.
func (s *Server) chain(h http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ClientIP, ratelimit.MutatingMethods, s.rateLimited)(h)
	secured := security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(limited)
	detected := s.detector.Middleware(secured)
	logged := applog.Middleware(s.logger, trace.RequestIDFromRequest)(detected)
	traced := s.tracer.Middleware(logged)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID},
	}).Handler(traced)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeMessage(w, r, http.StatusTooManyRequests, msgRateLimited)
}

// ListenAndServe runs until Shutdown; a clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the background loops and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopCleanup()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
