package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"netdash/internal/dashboard"
	"netdash/internal/export"
	"netdash/internal/metrics"
	"netdash/internal/models"
)

// History is the archive as seen by the HTTP surface
type History interface {
	ListSnapshots(ctx context.Context, limit int) ([]models.SnapshotRecord, error)
	ListExports(ctx context.Context, limit int) ([]models.ExportRecord, error)
	RecordExport(ctx context.Context, rec models.ExportRecord) error
}

// Config controls the HTTP surface
type Config struct {
	Addr           string
	AllowedOrigins []string
	AppName        string
	ExportDir      string
}

// Server exposes the dashboard state over HTTP and websockets
type Server struct {
	cfg      Config
	dash     *dashboard.Orchestrator
	exporter *export.Exporter
	history  History
	metrics  *metrics.Metrics
	hub      *Hub
	logger   *slog.Logger
}

// Option configures a Server
type Option func(*Server)

func WithExporter(e *export.Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server reading from dash
func New(cfg Config, dash *dashboard.Orchestrator, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	s := &Server{
		cfg:    cfg,
		dash:   dash,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(cfg.AllowedOrigins, s.logger)
	return s
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		s.handle(r, http.MethodGet, "/state", s.handleState)
		s.handle(r, http.MethodGet, "/snapshot", s.handleSnapshot)
		s.handle(r, http.MethodPost, "/refresh", s.handleRefresh)
		s.handle(r, http.MethodPost, "/period", s.handlePeriod)
		s.handle(r, http.MethodGet, "/periods", s.handlePeriods)
		s.handle(r, http.MethodPost, "/auto-refresh", s.handleAutoRefresh)
		s.handle(r, http.MethodGet, "/series/{name}", s.handleSeries)
		s.handle(r, http.MethodGet, "/charts/{name}", s.handleChart)
		s.handle(r, http.MethodPost, "/export", s.handleExport)
		s.handle(r, http.MethodGet, "/exports", s.handleListExports)
		s.handle(r, http.MethodGet, "/exports/{filename}", s.handleDownload)
		s.handle(r, http.MethodGet, "/history", s.handleHistory)
	})

	// Not wrapped: the metrics recorder would hide the connection hijacker
	r.Get("/ws", s.hub.HandleConnect)
	r.Handle("/metrics", s.metrics.Handler())

	return r
}

func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	r.Method(method, pattern, s.metrics.WrapHandler("/api"+pattern, h))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	unsubscribe := s.dash.Subscribe(s.onEvent)
	defer unsubscribe()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           middleware.Logger(s.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("web server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// onEvent pushes refresh results to websocket clients
func (s *Server) onEvent(evt dashboard.Event) {
	if evt.Err != nil {
		s.hub.Broadcast(Message{Type: "error", Payload: errorBody{Error: evt.Err.Error()}})
		return
	}
	s.hub.Broadcast(Message{Type: "snapshot", Payload: evt.Snapshot})
}
