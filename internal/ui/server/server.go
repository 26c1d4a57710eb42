package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"repograph/internal/core/app"
	"repograph/internal/core/config"
	"repograph/internal/shared/util"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes analyses over HTTP. API routes are rate limited per client
// address; /health and /metrics are not.
type Server struct {
	analyzer *app.Analyzer
	health   *app.HealthService
	cfg      config.Server
	version  string
	limiters *util.LimiterRegistry
	router   *mux.Router
	server   *http.Server
}

func New(analyzer *app.Analyzer, cfg config.Server, version string) *Server {
	s := &Server{
		analyzer: analyzer,
		health:   app.NewHealthService(analyzer),
		cfg:      cfg,
		version:  version,
		limiters: util.NewLimiterRegistry(cfg.RatePerSecond, cfg.Burst, cfg.ClientTTL),
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(instrument)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimit, s.timeout)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodGet)
	api.HandleFunc("/graph", s.handleGraph).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to the request timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.limiters.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server starting", "addr", s.cfg.Address)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()
	slog.Info("api server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close releases the limiter registry for servers used only through Handler.
func (s *Server) Close() {
	s.limiters.Close()
}
