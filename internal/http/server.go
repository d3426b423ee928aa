// Package http exposes the REST API: entity CRUD, report views and admin
// operations. Reports are computed fresh on every request; only entity lists
// are cached, and every write invalidates them.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/majdishami/BudgetBuddy-V2/internal/backup"
	"github.com/majdishami/BudgetBuddy-V2/internal/cache"
	"github.com/majdishami/BudgetBuddy-V2/internal/core"
	"github.com/majdishami/BudgetBuddy-V2/internal/log"
	"github.com/majdishami/BudgetBuddy-V2/internal/services"
	"github.com/majdishami/BudgetBuddy-V2/internal/storage"
)

const (
	categoriesCacheKey = "categories"
	expensesCacheKey   = "expenses"
	incomesCacheKey    = "incomes"
)

type Server struct {
	http.Server
	storage     *storage.SQLiteRepository
	txService   *services.TransactionService
	backups     *backup.Manager
	rateLimiter *rateLimiter
	logger      *log.Logger

	// Entity list caches. Report results are never cached: occurrences
	// depend on the generation date and must be derived per request.
	categoryCache *cache.LRU[[]core.Category]
	expenseCache  *cache.LRU[[]core.Expense]
	incomeCache   *cache.LRU[[]core.Income]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
	started          time.Time
}

// Options carries the tunables NewServer needs beyond its dependencies.
type Options struct {
	Addr         string
	CacheTTL     time.Duration
	CacheEntries int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, repo *storage.SQLiteRepository, txService *services.TransactionService, backups *backup.Manager) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = 100
	}

	mux := http.NewServeMux()
	logger := log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: log.Middleware(logger)(mux),
		},
		storage:          repo,
		txService:        txService,
		backups:          backups,
		rateLimiter:      newRateLimiter(writeLimit, writeWindow),
		logger:           logger,
		categoryCache:    cache.NewLRU[[]core.Category](opts.CacheEntries, opts.CacheTTL),
		expenseCache:     cache.NewLRU[[]core.Expense](opts.CacheEntries, opts.CacheTTL),
		incomeCache:      cache.NewLRU[[]core.Income](opts.CacheEntries, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
		started:          time.Now(),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("/api/categories/{id}", s.withMiddleware(s.handleCategoryByID))
	mux.HandleFunc("/api/expenses", s.withMiddleware(s.handleExpenses))
	mux.HandleFunc("/api/expenses/{id}", s.withMiddleware(s.handleExpenseByID))
	mux.HandleFunc("/api/incomes", s.withMiddleware(s.handleIncomes))
	mux.HandleFunc("/api/incomes/{id}", s.withMiddleware(s.handleIncomeByID))

	mux.HandleFunc("/api/reports/monthly", s.withMiddleware(s.handleMonthlyReport))
	mux.HandleFunc("/api/reports/range", s.withMiddleware(s.handleRangeReport))
	mux.HandleFunc("/api/reports/annual", s.withMiddleware(s.handleAnnualReport))
	mux.HandleFunc("/api/reports/categories", s.withMiddleware(s.handleCategoryReport))

	mux.HandleFunc("/api/clear-data", s.withMiddleware(s.handleClearData))
	mux.HandleFunc("/api/backup", s.withMiddleware(s.handleBackup))
	mux.HandleFunc("/api/restore", s.withMiddleware(s.handleRestore))

	return s
}

// startCacheCleanup evicts expired list-cache entries every minute.
func (s *Server) startCacheCleanup() {
	logger := s.logger.WithComponent(log.ComponentCache)
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.categoryCache.CleanExpired() +
				s.expenseCache.CleanExpired() +
				s.incomeCache.CleanExpired()
			if n > 0 {
				logger.Debug("Cleaned expired cache entries", "removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLogger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		ctx = context.WithValue(ctx, log.RequestIDContextKey, requestID)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		// Rate-limit mutating requests only; report reads stay cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// invalidateLists drops the entity list caches after any write.
func (s *Server) invalidateLists() {
	s.categoryCache.Delete(categoriesCacheKey)
	s.expenseCache.Delete(expensesCacheKey)
	s.incomeCache.Delete(incomesCacheKey)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.activeClients(),
			"status":         "ok",
		},
		"cache": map[string]any{
			"category_entries": s.categoryCache.Size(),
			"expense_entries":  s.expenseCache.Size(),
			"income_entries":   s.incomeCache.Size(),
			"status":           "ok",
		},
	}

	status := "ready"
	httpStatus := http.StatusOK
	if _, err := s.storage.ListCategories(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}
