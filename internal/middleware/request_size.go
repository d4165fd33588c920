package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxRequestSize bounds intent payloads, which only carry short notes
const DefaultMaxRequestSize = 64 * 1024 // 64KB

// RequestSizeLimitMiddleware rejects bodies above maxRequestSize bytes.
// Declared lengths are refused up front; chunked bodies are cut off while being read.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	message := fmt.Sprintf("request body exceeds %d bytes", maxRequestSize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				writeJSONError(w, http.StatusRequestEntityTooLarge, message)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
