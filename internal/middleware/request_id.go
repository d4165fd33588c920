// Package middleware provides the HTTP middlewares of the learn-web server
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/japanesestudent/learn-web/internal/logger"
)

type contextKey string

// RequestIDHeader carries the request id in and out of the server and on calls to the learn API
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with an id.
// An incoming id is kept only when it is a UUID; anything else is replaced by a fresh one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return logger.RequestID(ctx)
}
