package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/japanesestudent/learn-web/internal/services"
)

// SessionCookieName is the cookie carrying the browser session id
const SessionCookieName = "learnweb_session"

const sessionKey contextKey = "session"

// SessionProvider is the interface that wraps session lookup and creation
type SessionProvider interface {
	// Lookup returns the live session with the given id
	Lookup(id string) (*services.Session, bool)
	// Create starts a session under a server-generated id
	Create() *services.Session
}

// SessionMiddleware attaches the browser session to the request.
// A cookie naming no live session is replaced by a fresh server-issued session.
func SessionMiddleware(provider SessionProvider, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *services.Session
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sess, _ = provider.Lookup(cookie.Value)
				}
			}
			if sess == nil {
				sess = provider.Create()
			}

			// sliding expiration
			http.SetCookie(w, sessionCookie(r, sess.ID, time.Now().Add(ttl)))

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the browser session from context
func GetSession(ctx context.Context) (*services.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*services.Session)
	return s, ok
}

func sessionCookie(r *http.Request, id string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// isSecureRequest checks TLS, the X-Forwarded-Proto header of reverse proxies and the URL scheme
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}
