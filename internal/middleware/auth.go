package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/japanesestudent/learn-web/internal/store"
	"go.uber.org/zap"
)

// AccessTokenCookieName is the cookie the login flow stores the access token in
const AccessTokenCookieName = "access_token"

// TokenMiddleware copies the access token of the request into the session store.
//
// Requests without a token keep whatever token the session already holds. Expired or
// malformed tokens are rejected with 401 before any call reaches the learn API.
// It must run after SessionMiddleware.
func TokenMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := GetSession(r.Context())
			if !ok {
				logger.Error("token middleware used without session middleware")
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if _, err := sess.Store.SetToken(token); err != nil {
				sess.Store.ClearToken()
				message := "invalid token"
				if errors.Is(err, store.ErrTokenExpired) {
					message = "token expired"
				}
				logger.Debug("rejected access token",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				writeJSONError(w, http.StatusUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the token from the Authorization header, falling back to the cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie(AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
