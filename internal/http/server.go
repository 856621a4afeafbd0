package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// IngestPublisher queues raw statement lines for asynchronous
// classification. A nil publisher makes ingestion synchronous.
type IngestPublisher interface {
	PublishStatementIngest(ctx context.Context, lines []amqp.StatementLine) error
}

type Server struct {
	http.Server
	ledger      Ledger
	publisher   IngestPublisher
	rateLimiter *rateLimiter

	// Dashboard reads are memoized per (year, month) and trend window.
	summaryCache *cache.LRU[core.AggregationResult]
	trendsCache  *cache.LRU[[]core.TrendPoint]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, publisher IngestPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		publisher:        publisher,
		rateLimiter:      newRateLimiter(60),
		summaryCache:     cache.NewLRU[core.AggregationResult](100, 5*time.Minute),
		trendsCache:      cache.NewLRU[[]core.TrendPoint](50, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /ingest", s.withMiddleware(s.handleIngest))
	mux.HandleFunc("GET /transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleAddTransactions))
	mux.HandleFunc("DELETE /transactions", s.withMiddleware(s.handleClearTransactions))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("PUT /transactions/{id}/category", s.withMiddleware(s.handleUpdateCategory))

	mux.HandleFunc("GET /goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("GET /goals/{id}", s.withMiddleware(s.handleGetGoal))
	mux.HandleFunc("PUT /goals/{id}", s.withMiddleware(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("GET /goals/{id}/projection", s.withMiddleware(s.handleGoalProjection))

	mux.HandleFunc("GET /budgets", s.withMiddleware(s.handleBudgetOverview))
	mux.HandleFunc("POST /budgets", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("POST /budgets/move", s.withMiddleware(s.handleMoveBudget))
	mux.HandleFunc("DELETE /budgets/{category}", s.withMiddleware(s.handleDeleteBudget))
	mux.HandleFunc("GET /budgets/categories", s.withMiddleware(s.handleBudgetableCategories))

	mux.HandleFunc("GET /dashboard/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /dashboard/trends", s.withMiddleware(s.handleTrends))
	mux.HandleFunc("GET /dashboard/months", s.withMiddleware(s.handleMonths))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summaryCleaned := s.summaryCache.CleanExpired()
			trendsCleaned := s.trendsCache.CleanExpired()
			if summaryCleaned > 0 || trendsCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"summary_entries_removed", summaryCleaned,
					"trends_entries_removed", trendsCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateDashboards drops memoized aggregates after any write that
// changes what the dashboard would show.
func (s *Server) invalidateDashboards() {
	s.summaryCache.Purge()
	s.trendsCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting on mutations,
// and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
