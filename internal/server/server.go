// Package server exposes the calculators, market data, chat proxy and
// scraper control over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/chat"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/listings"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/internal/scraper"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// ListingStore is the part of the listings database the API reads.
type ListingStore interface {
	Cities(ctx context.Context) ([]string, error)
	CityStats(ctx context.Context, city string) (listings.CityStats, error)
	Summary(ctx context.Context) ([]listings.CitySummary, error)
}

// Dependencies are the services behind the handlers. Nil services make
// their endpoints answer 503.
type Dependencies struct {
	Config   *config.Configuration
	Rates    *rates.Service
	Listings ListingStore
	Chat     *chat.Service
	Scraper  *scraper.Supervisor
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Version  string

	// RunContext bounds background work started by requests, such as scraper runs.
	RunContext context.Context
}

type handler struct {
	conf     *config.Configuration
	rates    *rates.Service
	listings ListingStore
	chat     *chat.Service
	scraper  *scraper.Supervisor
	metrics  *metrics.Metrics
	logger   *zap.Logger
	version  string
	runCtx   context.Context
	limiter  *RateLimiter
	now      func() time.Time
}

// NewHandler constructs the HTTP handler that serves the web UI and the API.
func NewHandler(deps Dependencies) http.Handler {
	h := newHandler(deps)
	return h.routes()
}

func newHandler(deps Dependencies) *handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	conf := deps.Config
	if conf == nil {
		conf = config.Default()
	}
	version := strings.TrimSpace(deps.Version)
	if version == "" {
		version = "dev"
	}
	runCtx := deps.RunContext
	if runCtx == nil {
		runCtx = context.Background()
	}

	h := &handler{
		conf:     conf,
		rates:    deps.Rates,
		listings: deps.Listings,
		chat:     deps.Chat,
		scraper:  deps.Scraper,
		metrics:  deps.Metrics,
		logger:   logger,
		version:  version,
		runCtx:   runCtx,
		now:      time.Now,
	}
	if rl := conf.Server.RateLimit; rl.Requests > 0 && rl.Window > 0 {
		h.limiter = NewRateLimiter(rl.Requests, rl.Window)
	}
	return h
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "/health", h.handleHealth)
	h.handle(mux, "/api", h.handleAPIStatus)
	h.handle(mux, "/api/version", h.handleVersion)

	h.handle(mux, "/api/mortgage", h.handleMortgage)
	h.handle(mux, "/api/mortgage/term", h.handleTerm)
	h.handle(mux, "/api/mortgage/accelerated", h.handleAccelerated)
	h.handle(mux, "/api/mortgage/schedule", h.handleSchedule)

	h.handle(mux, "/api/investment/projection", h.handleProjection)
	h.handle(mux, "/api/investment/suggestions", h.handleSuggestions)

	h.handle(mux, "/api/bank-offers", h.handleBankOffers)
	h.handle(mux, "/api/base-rate", h.handleBaseRate)
	h.handle(mux, "/api/exchange-rates", h.handleExchangeRates)

	h.handle(mux, "/api/otodom-stats/cities", h.handleCities)
	h.handle(mux, "/api/otodom-stats/stats", h.handleCityStats)
	h.handle(mux, "/api/otodom-stats/summary", h.handleCitySummary)

	chatHandler := http.Handler(http.HandlerFunc(h.handleChat))
	if h.limiter != nil {
		chatHandler = h.rateLimit(chatHandler)
	}
	mux.Handle("/api/ai-chat", h.instrument("/api/ai-chat", chatHandler))

	h.handle(mux, "/api/scraper/status", h.handleScraperStatus)
	h.handle(mux, "/api/scraper/run", h.handleScraperRun)
	h.handle(mux, "/api/otodom-analyzer", h.handleAnalyzerStatus)

	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}

	// Static assets (web UI); "/" doubles as the platform health check.
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	h.handle(mux, "/", h.handleRoot(http.FileServer(http.FS(sub))))

	return h.cors(h.limitBody(mux))
}

func (h *handler) handle(mux *http.ServeMux, route string, fn http.HandlerFunc) {
	mux.Handle(route, h.instrument(route, fn))
}

func (h *handler) handleRoot(files http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && !strings.Contains(r.Header.Get("Accept"), "text/html") {
			if !allowMethod(w, r, http.MethodGet) {
				return
			}
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		files.ServeHTTP(w, r)
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// decodeJSON reads the request body into v and answers the client itself
// when that fails.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any, op string) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit), op)
	case errors.Is(err, io.EOF):
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body is required", op)
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
	}
	return false
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		fields := []zap.Field{zap.String("op", op), zap.Int("status", status), zap.String("error", msg)}
		if status >= http.StatusInternalServerError {
			h.logger.Warn("request failed", fields...)
		} else {
			h.logger.Debug("request rejected", fields...)
		}
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Warn("failed to encode response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}

// Server runs the HTTP listener until its context is cancelled.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New wraps handler in an http.Server configured from conf.
func New(conf config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	shutdownTimeout := conf.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              conf.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       conf.ReadTimeout,
			WriteTimeout:      conf.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("op", "server.Serve"),
			zap.String("address", listener.Addr().String()),
		)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", zap.String("op", "server.Serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
