package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/japanesestudent/learn-web/internal/apiclient"
	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/middleware"
	"github.com/japanesestudent/learn-web/internal/models"
	"github.com/japanesestudent/learn-web/internal/services"
	"github.com/japanesestudent/learn-web/internal/validate"
	"github.com/japanesestudent/learn-web/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCoursePageService is a mock implementation of CoursePageService
type mockCoursePageService struct {
	page      *view.Page
	err       error
	courseID  int
	stepID    int
	notes     *string
	lastCall  string
	sessionID string
}

func (m *mockCoursePageService) record(call string, sess *services.Session, courseID, stepID int) (*view.Page, error) {
	m.lastCall = call
	m.sessionID = sess.ID
	m.courseID = courseID
	m.stepID = stepID
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockCoursePageService) GetPage(ctx context.Context, sess *services.Session, courseID int) (*view.Page, error) {
	return m.record("get", sess, courseID, 0)
}

func (m *mockCoursePageService) RefreshPage(ctx context.Context, sess *services.Session, courseID int) (*view.Page, error) {
	return m.record("refresh", sess, courseID, 0)
}

func (m *mockCoursePageService) ClosePage(sess *services.Session, courseID int) error {
	_, err := m.record("close", sess, courseID, 0)
	return err
}

func (m *mockCoursePageService) ToggleStep(ctx context.Context, sess *services.Session, courseID int, stepID int) (*view.Page, error) {
	return m.record("toggle", sess, courseID, stepID)
}

func (m *mockCoursePageService) RequestCompletion(ctx context.Context, sess *services.Session, courseID int, stepID int) (*view.Page, error) {
	return m.record("request", sess, courseID, stepID)
}

func (m *mockCoursePageService) UpdateDraft(sess *services.Session, courseID int, notes string) (*view.Page, error) {
	m.notes = &notes
	return m.record("draft", sess, courseID, 0)
}

func (m *mockCoursePageService) CancelDraft(sess *services.Session, courseID int) (*view.Page, error) {
	return m.record("cancel", sess, courseID, 0)
}

func (m *mockCoursePageService) ConfirmCompletion(ctx context.Context, sess *services.Session, courseID int, notes *string) (*view.Page, error) {
	m.notes = notes
	return m.record("confirm", sess, courseID, 0)
}

func newTestRouter(t *testing.T, svc CoursePageService) (http.Handler, *services.Registry) {
	t.Helper()
	registry := services.NewRegistry(func(apiclient.TokenSource) services.CourseAPI { return nil },
		completion.Timings{}, time.Hour, zap.NewNop())
	t.Cleanup(registry.Close)

	logger := zap.NewNop()
	v := validate.New()
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(registry, time.Hour))
	r.Route("/api/v1", func(r chi.Router) {
		NewCoursePageHandler(svc, v, logger).RegisterRoutes(r)
		NewNoticeHandler([]string{"*"}, logger).RegisterRoutes(r)
		NewPreferencesHandler(v, logger).RegisterRoutes(r)
	})
	return r, registry
}

func samplePage() *view.Page {
	return &view.Page{
		Course:   models.Course{ID: 3, Title: "Go basics"},
		Enrolled: true,
		Cards:    []view.Card{{StepID: 11, Title: "Intro", Status: models.ProgressStatusNotStarted}},
	}
}

func TestCoursePageHandler_Routes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedCall   string
		expectedStep   int
		expectedNotes  *string
	}{
		{name: "get page", method: http.MethodGet, path: "/api/v1/courses/3/page", expectedStatus: http.StatusOK, expectedCall: "get"},
		{name: "refresh", method: http.MethodPost, path: "/api/v1/courses/3/page/refresh", expectedStatus: http.StatusOK, expectedCall: "refresh"},
		{name: "close", method: http.MethodDelete, path: "/api/v1/courses/3/page", expectedStatus: http.StatusNoContent, expectedCall: "close"},
		{name: "toggle", method: http.MethodPost, path: "/api/v1/courses/3/steps/11/toggle", expectedStatus: http.StatusOK, expectedCall: "toggle", expectedStep: 11},
		{name: "request completion", method: http.MethodPost, path: "/api/v1/courses/3/steps/11/completion", expectedStatus: http.StatusOK, expectedCall: "request", expectedStep: 11},
		{name: "update draft", method: http.MethodPut, path: "/api/v1/courses/3/completion/draft", body: `{"notes": "so far"}`, expectedStatus: http.StatusOK, expectedCall: "draft", expectedNotes: ptr("so far")},
		{name: "cancel draft", method: http.MethodDelete, path: "/api/v1/courses/3/completion/draft", expectedStatus: http.StatusOK, expectedCall: "cancel"},
		{name: "confirm without body", method: http.MethodPost, path: "/api/v1/courses/3/completion/confirm", expectedStatus: http.StatusOK, expectedCall: "confirm"},
		{name: "confirm with notes", method: http.MethodPost, path: "/api/v1/courses/3/completion/confirm", body: `{"notes": "done"}`, expectedStatus: http.StatusOK, expectedCall: "confirm", expectedNotes: ptr("done")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCoursePageService{page: samplePage()}
			router, _ := newTestRouter(t, svc)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCall, svc.lastCall)
			assert.Equal(t, 3, svc.courseID)
			assert.Equal(t, tt.expectedStep, svc.stepID)
			assert.NotEmpty(t, svc.sessionID)
			assert.Equal(t, tt.expectedNotes, svc.notes)

			if tt.expectedStatus == http.StatusOK {
				var page view.Page
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
				assert.Equal(t, "Go basics", page.Course.Title)
				require.Len(t, page.Cards, 1)
			}
		})
	}
}

func TestCoursePageHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedFields []string
	}{
		{name: "course id not a number", method: http.MethodGet, path: "/api/v1/courses/abc/page"},
		{name: "negative step id", method: http.MethodPost, path: "/api/v1/courses/3/steps/-1/toggle"},
		{name: "draft body missing", method: http.MethodPut, path: "/api/v1/courses/3/completion/draft"},
		{name: "draft body malformed", method: http.MethodPut, path: "/api/v1/courses/3/completion/draft", body: `{"notes":`},
		{name: "draft notes too long", method: http.MethodPut, path: "/api/v1/courses/3/completion/draft", body: fmt.Sprintf(`{"notes": %q}`, strings.Repeat("x", 2001)), expectedFields: []string{"notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCoursePageService{page: samplePage()}
			router, _ := newTestRouter(t, svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, svc.lastCall)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			fields := make([]string, 0, len(resp.Fields))
			for _, f := range resp.Fields {
				fields = append(fields, f.Field)
			}
			if tt.expectedFields == nil {
				assert.Empty(t, fields)
			} else {
				assert.Equal(t, tt.expectedFields, fields)
			}
		})
	}
}

func TestCoursePageHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "not enrolled", err: fmt.Errorf("failed to toggle step 11: %w", completion.ErrNotEnrolled), expectedStatus: http.StatusForbidden},
		{name: "already completed", err: fmt.Errorf("wrapped: %w", completion.ErrAlreadyCompleted), expectedStatus: http.StatusConflict},
		{name: "in flight", err: completion.ErrSubmissionInFlight, expectedStatus: http.StatusConflict},
		{name: "no draft", err: fmt.Errorf("wrapped: %w", completion.ErrNoDraft), expectedStatus: http.StatusConflict},
		{name: "unknown step", err: completion.ErrUnknownStep, expectedStatus: http.StatusNotFound},
		{name: "page not open", err: services.ErrPageNotOpen, expectedStatus: http.StatusNotFound},
		{name: "page closed", err: completion.ErrDisposed, expectedStatus: http.StatusGone},
		{name: "remote not found", err: fmt.Errorf("failed to load course page: %w", &apiclient.APIError{StatusCode: 404}), expectedStatus: http.StatusNotFound},
		{name: "remote unauthorized", err: &apiclient.APIError{StatusCode: 401, Message: "token invalid"}, expectedStatus: http.StatusUnauthorized},
		{name: "remote failure", err: &apiclient.APIError{StatusCode: 500}, expectedStatus: http.StatusBadGateway},
		{name: "remote unavailable", err: fmt.Errorf("failed to send request: %w", apiclient.ErrUnavailable), expectedStatus: http.StatusBadGateway},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCoursePageService{err: tt.err}
			router, _ := newTestRouter(t, svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/courses/3/steps/11/toggle", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func sessionCookie(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/theme", nil))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestNoticeHandler_ListNotices(t *testing.T) {
	router, registry := newTestRouter(t, &mockCoursePageService{})
	cookie := sessionCookie(t, router)

	sess, ok := registry.Lookup(cookie.Value)
	require.True(t, ok)
	feed := sess.Notices
	feed.Push(models.NoticeSuccess, "Intro completed", 11)
	feed.Push(models.NoticeInfo, "Types is already completed", 12)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "all", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "after first", query: "?after=1", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "after last", query: "?after=2", expectedStatus: http.StatusOK, expectedCount: 0},
		{name: "invalid after", query: "?after=x", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notices"+tt.query, nil)
			req.AddCookie(cookie)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var notices []models.Notice
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notices))
			assert.Len(t, notices, tt.expectedCount)
		})
	}
}

func TestNoticeHandler_StreamNotices(t *testing.T) {
	router, registry := newTestRouter(t, &mockCoursePageService{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	cookie := sessionCookie(t, router)
	sess, ok := registry.Lookup(cookie.Value)
	require.True(t, ok)
	feed := sess.Notices
	feed.Push(models.NoticeInfo, "before connect", 0)

	header := http.Header{}
	header.Set("Cookie", cookie.Name+"="+cookie.Value)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notices/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var replayed models.Notice
	require.NoError(t, conn.ReadJSON(&replayed))
	assert.Equal(t, "before connect", replayed.Message)

	feed.Push(models.NoticeSuccess, "Intro completed", 11)

	var pushed models.Notice
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, "Intro completed", pushed.Message)
	assert.Equal(t, int64(2), pushed.Seq)
}

func TestPreferencesHandler_Theme(t *testing.T) {
	router, _ := newTestRouter(t, &mockCoursePageService{})
	cookie := sessionCookie(t, router)

	do := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/preferences/theme", strings.NewReader(body))
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode":"light"}`, w.Body.String())

	w = do(http.MethodPut, `{"mode":"dark"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode":"dark"}`, w.Body.String())

	w = do(http.MethodPut, `{"mode":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "mode", resp.Fields[0].Field)

	w = do(http.MethodGet, "")
	assert.JSONEq(t, `{"mode":"dark"}`, w.Body.String())
}

func ptr[T any](v T) *T { return &v }
