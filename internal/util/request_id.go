package util

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type requestIDContextKey struct{}

const requestIDHeader = "X-Request-Id"

// WithRequestID propagates an incoming request id or generates one when
// absent. The id is set on both the response header and the request
// context, and a child logger carrying "request_id" is stored in the
// context for downstream handlers.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = NewID()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		ctx = ContextWithLogger(ctx, slog.Default().With("request_id", requestID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id from the context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// RequestIDFromRequest returns the request id from the request context.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return RequestIDFromContext(r.Context())
}
