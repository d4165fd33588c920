// Package apiclient is the REST client of the remote learn API
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/japanesestudent/learn-web/internal/logger"
	"github.com/japanesestudent/learn-web/internal/models"
	"go.uber.org/zap"
)

const maxResponseSize = 5 * 1024 * 1024 // 5MB

var (
	// ErrNotFound matches API errors with status 404
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches API errors with status 401 and 403
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable wraps transport failures and unreadable responses
	ErrUnavailable = errors.New("learn api unavailable")
)

// APIError is returned for every non-2xx response of the learn API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("learn api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("learn api responded with status %d: %s", e.StatusCode, e.Message)
}

// Is maps status codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// TokenSource provides the bearer token attached to outgoing requests
type TokenSource interface {
	// Token returns the current access token and whether one is available
	Token() (string, bool)
}

// Client calls the learn API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient creates a new learn API client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// WithTokens returns a copy of the client that authenticates with the given token source.
// The underlying HTTP connection pool is shared.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// GetCourse retrieves a course with the enrollment of the current user
func (c *Client) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	var course models.Course
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", courseID), nil, &course); err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", courseID, err)
	}
	return &course, nil
}

// GetCourseSteps retrieves the steps of a course ordered by step_order
func (c *Client) GetCourseSteps(ctx context.Context, courseID int) ([]models.CourseStep, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/steps", courseID), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get steps of course %d: %w", courseID, err)
	}

	list, err := models.UnwrapList(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode steps of course %d: %w", courseID, err)
	}
	var steps []models.CourseStep
	if err := json.Unmarshal(list, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps of course %d: %w", courseID, err)
	}
	models.SortSteps(steps)
	return steps, nil
}

// GetCourseProgress retrieves the aggregate progress of a course
func (c *Client) GetCourseProgress(ctx context.Context, courseID int) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/progress", courseID), nil, &progress); err != nil {
		return nil, fmt.Errorf("failed to get progress of course %d: %w", courseID, err)
	}
	return &progress, nil
}

// GetCourseStepsProgress retrieves the per-step progress payload of a course.
//
// The payload comes in several shapes and is returned undecoded; see progress.Normalize.
func (c *Client) GetCourseStepsProgress(ctx context.Context, courseID int) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/steps/progress", courseID), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get steps progress of course %d: %w", courseID, err)
	}
	return raw, nil
}

// UpdateStepProgress submits a progress update of a step
//
// The returned progress is nil when the API acknowledges with an empty body.
func (c *Client) UpdateStepProgress(ctx context.Context, stepID int, update models.StepProgressUpdate) (*models.Progress, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/steps/%d/progress", stepID), update, &raw); err != nil {
		return nil, fmt.Errorf("failed to update progress of step %d: %w", stepID, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var progress models.Progress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("failed to decode progress of step %d: %w", stepID, err)
	}
	return &progress, nil
}

// do performs a request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logger.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w: %w", ErrUnavailable, err)
	}

	c.logger.Debug("learn api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty response body: %w", ErrUnavailable)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// errorMessage extracts a readable message from an error response body
func errorMessage(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
