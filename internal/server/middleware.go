package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const contextKeyRequestID contextKey = "requestID"

// requestIDFrom returns the request id stored by requestIDMiddleware.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withMiddleware wraps the router with the common middleware chain.
func (h *handler) withMiddleware(next http.Handler) http.Handler {
	return h.metricsMiddleware(
		h.requestIDMiddleware(
			h.panicRecoveryMiddleware(
				h.loggingMiddleware(
					h.rateLimitMiddleware(next),
				),
			),
		),
	)
}

// requestIDMiddleware accepts a caller supplied UUID or generates one.
func (h *handler) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware throttles the JSON optimize endpoint per client address.
// Page submissions are limited per session in handleOptimize; other routes
// are never limited.
func (h *handler) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/optimize" {
			next.ServeHTTP(w, r)
			return
		}

		limiter := h.clients.getOrAdd(clientKey(r), h.newLimiter)
		if !limiter.Allow() {
			rateLimitRejects.Inc()
			w.Header().Set("Retry-After", "1")
			h.respondErrorWithOp(w, r, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimitMiddleware")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(limiter.Limit())))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by the host part of its remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *handler) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				panicRecoveries.Inc()
				h.logger.Error("panic recovered",
					zap.String("op", "server.panicRecoveryMiddleware"),
					zap.String("requestId", requestIDFrom(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("error", fmt.Sprintf("%v", recovered)),
				)
				h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		h.logger.Debug("request completed",
			zap.String("op", "server.loggingMiddleware"),
			zap.String("requestId", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// metricsMiddleware records request rate, errors and duration.
func (h *handler) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		route := routeLabel(r.URL.Path)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
