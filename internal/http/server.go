// Package http exposes the JSON API: authentication, expense CRUD and bulk
// import, dashboard aggregates, and the live event stream.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"belanja/internal/auth"
	"belanja/internal/cache"
	"belanja/internal/core"
	"belanja/internal/live"
	"belanja/internal/storage"
)

// ExpenseManager is the slice of the service layer the handlers need.
type ExpenseManager interface {
	Create(ctx context.Context, e core.Expense) (string, error)
	Update(ctx context.Context, id, ownerID string, p storage.UpdateExpenseParams) error
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context, ownerID string) ([]core.Expense, error)
	Import(ctx context.Context, ownerID string, raw []core.RawRecord) (stored, dateless int, err error)
}

// TokenManager issues tokens on login and checks them on protected routes.
type TokenManager interface {
	Generate(user *auth.User) (string, error)
	Validate(token string) (*auth.Claims, error)
}

// UserFinder resolves the authenticated user's profile.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

type Server struct {
	http.Server

	authn    *auth.PasswordAuthenticator
	tokens   TokenManager
	users    UserFinder
	expenses ExpenseManager
	hub      *live.Hub
	ready    func(ctx context.Context) error

	limiter *rateLimiter
	// records caches each owner's full record set for the read path. Local
	// mutations invalidate it; the short TTL bounds staleness for changes
	// arriving from other instances.
	records          *cache.LRU[[]core.Expense]
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

type Deps struct {
	Authenticator *auth.PasswordAuthenticator
	Tokens        TokenManager
	Users         UserFinder
	Expenses      ExpenseManager
	Hub           *live.Hub
	// Ready reports whether downstream collaborators are reachable.
	Ready func(ctx context.Context) error
}

func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		authn:    deps.Authenticator,
		tokens:   deps.Tokens,
		users:    deps.Users,
		expenses: deps.Expenses,
		hub:      deps.Hub,
		ready:    deps.Ready,
		limiter:  newRateLimiter(),

		records:          cache.NewLRU[[]core.Expense](500, 30*time.Second),
		stopCacheCleanup: make(chan struct{}),
	}
	go s.cacheCleanupLoop()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.middleware(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.middleware(s.handleLogin))
	mux.HandleFunc("GET /api/me", s.middleware(s.requireAuth(s.handleMe)))

	mux.HandleFunc("GET /api/expenses", s.middleware(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("POST /api/expenses", s.middleware(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("PUT /api/expenses/{id}", s.middleware(s.requireAuth(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.middleware(s.requireAuth(s.handleDeleteExpense)))
	mux.HandleFunc("POST /api/expenses/import", s.middleware(s.requireAuth(s.handleImportExpenses)))

	mux.HandleFunc("GET /api/dashboard/categories", s.middleware(s.requireAuth(s.handleDashboardCategories)))
	mux.HandleFunc("GET /api/dashboard/trend", s.middleware(s.requireAuth(s.handleDashboardTrend)))
	mux.HandleFunc("GET /api/dashboard/insights", s.middleware(s.requireAuth(s.handleDashboardInsights)))

	mux.HandleFunc("GET /api/stream", s.middleware(s.requireAuth(s.handleStream)))

	return s
}

// Shutdown stops the background sweeps and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.stop()
		}
		close(s.stopCacheCleanup)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) cacheCleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.records.CleanExpired(); n > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// middleware adds security headers, a request ID, request logging, and rate
// limiting on mutating methods.
func (s *Server) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientAddr(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if mutating(r.Method) && !s.limiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

type requestIDKey struct{}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets the SSE handler stream through the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
