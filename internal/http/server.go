// Package http serves the smartspend JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"smartspend/internal/log"
	"smartspend/internal/middleware/ratelimit"
	"smartspend/internal/middleware/security"
	"smartspend/internal/middleware/trace"
	"smartspend/internal/repository"
	"smartspend/internal/services"
)

// Deps are the services behind the API.
type Deps struct {
	Repo    *repository.ExpenseRepository
	Entries *services.EntryService
	Lists   *services.ListService
	Reports *services.ReportService

	// Ready, when set, backs /readyz.
	Ready func(ctx context.Context) error
}

type Options struct {
	RateLimitPerMinute int
	BlockSuspicious    bool
	Logger             *log.Logger
}

type Server struct {
	http.Server
	repo    *repository.ExpenseRepository
	entries *services.EntryService
	lists   *services.ListService
	reports *services.ReportService
	ready   func(ctx context.Context) error

	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

type metricsResponse struct {
	Requests       int64 `json:"requests"`
	FailedRequests int64 `json:"failedRequests"`
	LastLatencyUs  int64 `json:"lastLatencyMicros"`
	RateLimited    int64 `json:"rateLimited"`
	TrackedClients int64 `json:"trackedClients"`
	Suspicious     int64 `json:"suspiciousRequests"`
	Blocked        int64 `json:"blockedRequests"`
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Writes are rate limited per client.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		repo:     deps.Repo,
		entries:  deps.Entries,
		lists:    deps.Lists,
		reports:  deps.Reports,
		ready:    deps.Ready,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("GET /expenses/today", s.handleToday)
	mux.HandleFunc("GET /expenses/stream", s.handleStream)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /reports", s.handleCompute)
	mux.HandleFunc("GET /reports/periods", s.handlePeriods)
	mux.HandleFunc("GET /reports/weekly", s.handleWeekly)
	mux.HandleFunc("GET /reports/weekly/summary", s.handleWeeklySummary)
	mux.HandleFunc("POST /reports/sessions", s.handleCreateSession)
	mux.Handle("GET /reports/sessions/{id}", security.NoStore(http.HandlerFunc(s.handleGetSession)))
	mux.HandleFunc("PUT /reports/sessions/{id}/range", s.handleChangeRange)
	mux.HandleFunc("POST /reports/sessions/{id}/insights/dismiss", s.handleDismissInsight)
	mux.Handle("GET /reports/sessions/{id}/export", security.NoStore(http.HandlerFunc(s.handleExport)))

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, nil, http.MethodPost, http.MethodPut, http.MethodDelete)(h)
	h = s.detector.Middleware(opts.BlockSuspicious)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	sm := s.detector.GetMetrics()
	writeJSON(w, http.StatusOK, metricsResponse{
		Requests:       tm.TotalRequests,
		FailedRequests: tm.FailedRequests,
		LastLatencyUs:  tm.AverageResponseTime,
		RateLimited:    rm.TotalHits,
		TrackedClients: rm.ClientCount,
		Suspicious:     sm.SuspiciousRequests,
		Blocked:        sm.BlockedRequests,
	})
}
