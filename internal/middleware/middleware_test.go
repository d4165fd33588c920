package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/japanesestudent/learn-web/internal/apiclient"
	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newRegistry() *services.Registry {
	return services.NewRegistry(func(apiclient.TokenSource) services.CourseAPI { return nil },
		completion.Timings{}, time.Hour, zap.NewNop())
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    1,
		"type":    "access",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, given, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid", seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
	}{
		{name: "wildcard echoes origin", allowed: []string{"*"}, origin: "https://app.example.com", method: http.MethodGet, expectedOrigin: "https://app.example.com", expectedStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"https://app.example.com"}, origin: "https://APP.example.com", method: http.MethodGet, expectedOrigin: "https://APP.example.com", expectedStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"*"}, origin: "https://app.example.com", method: http.MethodOptions, expectedOrigin: "https://app.example.com", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(http.HandlerFunc(okHandler)).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	h := RequestSizeLimitMiddleware(8)(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestLoggerMiddleware_CapturesStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestIDMiddleware(LoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(15), fields["bytes"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), fields["request_id"])
}

func TestSessionMiddleware(t *testing.T) {
	registry := newRegistry()
	t.Cleanup(registry.Close)

	var got *services.Session
	h := SessionMiddleware(registry, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSession(r.Context())
		require.True(t, ok)
		got = s
	}))

	// new session
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)
	first := got

	// same cookie, same session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookies[0].Value})
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Same(t, first, got)
	assert.True(t, w.Result().Cookies()[0].Secure)

	// forged cookie is replaced
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Result().Cookies()[0].Value)
	assert.NotSame(t, first, got)
}

func TestSessionMiddleware_UnknownSessionReplaced(t *testing.T) {
	registry := newRegistry()
	t.Cleanup(registry.Close)

	var got *services.Session
	h := SessionMiddleware(registry, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetSession(r.Context())
	}))

	planted := "11111111-2222-4333-8444-555555555555"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: planted})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.NotNil(t, got)
	assert.NotEqual(t, planted, got.ID)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, got.ID, cookies[0].Value)
	assert.Equal(t, 1, registry.Len())
	_, known := registry.Lookup(planted)
	assert.False(t, known)
}

func TestTokenMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(t *testing.T, r *http.Request)
		expectedStatus int
		expectedToken  bool
	}{
		{
			name:           "no token",
			setup:          func(t *testing.T, r *http.Request) {},
			expectedStatus: http.StatusOK,
		},
		{
			name: "bearer header",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, time.Now().Add(time.Hour)))
			},
			expectedStatus: http.StatusOK,
			expectedToken:  true,
		},
		{
			name: "cookie",
			setup: func(t *testing.T, r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: signToken(t, time.Now().Add(time.Hour))})
			},
			expectedStatus: http.StatusOK,
			expectedToken:  true,
		},
		{
			name: "expired",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, time.Now().Add(-time.Minute)))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage",
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.jwt")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := newRegistry()
			t.Cleanup(registry.Close)

			var sess *services.Session
			h := SessionMiddleware(registry, time.Hour)(TokenMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sess, _ = GetSession(r.Context())
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(t, req)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			_, ok := sess.Store.Token()
			assert.Equal(t, tt.expectedToken, ok)
		})
	}
}
