// Package webserver provides the local HTTP server that exposes the
// decision history, a live evaluation endpoint, and the metrics
// registry.
package webserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/steelyard-dev/steelyard/internal/engine"
	"github.com/steelyard-dev/steelyard/internal/history"
	"github.com/steelyard-dev/steelyard/internal/metrics"
	"github.com/steelyard-dev/steelyard/internal/models"
	"github.com/steelyard-dev/steelyard/internal/policy"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port       int
	PolicyPath string
	History    *history.History
	Retention  *history.RetentionConfig
	Logger     *slog.Logger
}

// Server wraps the HTTP server together with the evaluator and the
// policy revision it currently evaluates against.
type Server struct {
	cfg       Config
	srv       *http.Server
	logger    *slog.Logger
	evaluator *engine.Evaluator
	collector *metrics.Collector
	history   *history.History

	mu  sync.RWMutex
	doc *policy.Document
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 8315
	}
	if cfg.History == nil {
		return nil, fmt.Errorf("webserver requires a history store")
	}

	doc, err := policy.LoadDocument(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("loading policy %s: %w", cfg.PolicyPath, err)
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		evaluator: engine.New(),
		collector: metrics.NewCollector(nil),
		history:   cfg.History,
		doc:       doc,
		srv: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	registerRoutes(mux, s)
	return s, nil
}

// ListenAndServe starts the HTTP server, the policy watcher, and the
// retention pruner, and blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	url := fmt.Sprintf("http://localhost:%d", s.cfg.Port)
	s.logger.Info("HTTP server starting", "address", s.srv.Addr, "url", url)
	fmt.Printf("steelyard api: %s\n", url)

	if err := s.watchPolicy(ctx); err != nil {
		// The server still works without hot reload.
		s.logger.Warn("policy watcher unavailable", "error", err)
	}

	if s.cfg.Retention != nil {
		pruner := history.NewPruner(s.history, s.cfg.Retention)
		if err := pruner.Start(ctx); err != nil {
			return fmt.Errorf("starting retention pruner: %w", err)
		}
	}

	if n, err := s.history.Count(ctx); err == nil {
		s.collector.SetHistorySize(n)
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// EvaluateFacts scores facts against the current policy revision,
// records the decision, and updates the metrics.
func (s *Server) EvaluateFacts(ctx context.Context, facts *models.Facts) (*models.Decision, error) {
	facts.Sanitize()

	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	start := time.Now()
	decision := s.evaluator.Evaluate(doc, facts)
	s.collector.RecordEvaluation(decision.PolicyName, decision.Best, time.Since(start))

	if err := s.history.Record(ctx, decision); err != nil {
		return nil, fmt.Errorf("recording decision: %w", err)
	}
	if n, err := s.history.Count(ctx); err == nil {
		s.collector.SetHistorySize(n)
	}
	return decision, nil
}

// PolicyDocument returns the source path and raw content of the policy
// revision currently in use.
func (s *Server) PolicyDocument() (string, map[string]any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Source(), s.doc.Raw()
}
