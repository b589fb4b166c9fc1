package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carewise/internal/metrics"
	"carewise/internal/security"

	"go.uber.org/zap"
)

// VisitorLoader returns the state for a visitor id, creating it if needed.
type VisitorLoader func(ctx context.Context, id string) (*Visitor, error)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *security.VisitorTokens
	csrf        *security.CSRFGenerator
	rateLimiter *security.RateLimiter
	load        VisitorLoader
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.VisitorTokens, csrf *security.CSRFGenerator, rateLimiter *security.RateLimiter, load VisitorLoader, logger *zap.Logger, m *metrics.Metrics) *Middleware {
	return &Middleware{
		tokens:      tokens,
		csrf:        csrf,
		rateLimiter: rateLimiter,
		load:        load,
		logger:      logger,
		metrics:     m,
	}
}

// Visitor attaches the visitor's state to the request. Visitors are
// anonymous: a missing or invalid cookie starts a new visitor.
func (m *Middleware) Visitor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(security.VisitorCookieName); err == nil {
			parsed, err := m.tokens.Parse(cookie.Value)
			if err != nil {
				m.logger.Debug("discarding visitor token", zap.Error(err))
			} else {
				id = parsed
			}
		}

		if id == "" {
			id = security.NewVisitorID()
			token, expires, err := m.tokens.Issue(id)
			if err != nil {
				respondWithError(w, m.logger, http.StatusInternalServerError, ErrInternalServerError, "Error issuing visitor token", err)
				return
			}
			http.SetCookie(w, security.CreateSessionCookie(r, security.VisitorCookieName, token, expires))
		}

		v, err := m.load(r.Context(), id)
		if err != nil {
			respondWithError(w, m.logger, http.StatusInternalServerError, ErrInternalServerError, "Error loading visitor", err)
			return
		}

		next(w, r.WithContext(withVisitor(r.Context(), v)))
	}
}

// CSRFProtect rejects state-changing requests without the visitor's token.
// Must run inside Visitor.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := VisitorFromContext(r.Context())
		if v == nil {
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}

		token := r.Header.Get(CSRFHeaderName)
		if token == "" && !isMultipart(r) {
			token = r.FormValue(CSRFFormField)
		}
		if !m.csrf.ValidateToken(v.ID, token) {
			m.logger.Warn("csrf token rejected",
				zap.String("path", r.URL.Path),
				zap.String("visitor_id", v.ID))
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// RateLimit limits requests per client IP.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			m.logger.Info("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "60")
			respondWithError(w, m.logger, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging logs each request and records its latency by matched route.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.metrics.ObserveRequest(route, r.Method, strconv.Itoa(rec.status), elapsed)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}
