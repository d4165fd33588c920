// Package handlers exposes course pages, notices and preferences over HTTP
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/japanesestudent/learn-web/internal/apiclient"
	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/middleware"
	"github.com/japanesestudent/learn-web/internal/services"
	"github.com/japanesestudent/learn-web/internal/validate"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error  string                `json:"error"`
	Fields []validate.FieldError `json:"fields,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger    *zap.Logger
	Validator *validate.Validator
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, ErrorResponse{Error: message})
}

// DecodeAndValidate decodes a JSON body into dst and validates it.
// An empty body is accepted when allowEmpty is set.
func (h *BaseHandler) DecodeAndValidate(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return errInvalidBody
		}
	}
	return h.Validator.Struct(dst)
}

var errInvalidBody = errors.New("invalid request body")

// RespondServiceError maps an error onto an HTTP status and sends it
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *validate.Error
		apiErr        *apiclient.APIError
	)

	switch {
	case errors.Is(err, errInvalidBody):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		h.RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: validationErr.Fields})
	case errors.Is(err, completion.ErrNotEnrolled):
		h.RespondError(w, http.StatusForbidden, "course has no enrollment")
	case errors.Is(err, completion.ErrAlreadyCompleted):
		h.RespondError(w, http.StatusConflict, completion.ErrAlreadyCompleted.Error())
	case errors.Is(err, completion.ErrSubmissionInFlight):
		h.RespondError(w, http.StatusConflict, completion.ErrSubmissionInFlight.Error())
	case errors.Is(err, completion.ErrNoDraft):
		h.RespondError(w, http.StatusConflict, completion.ErrNoDraft.Error())
	case errors.Is(err, completion.ErrDisposed):
		h.RespondError(w, http.StatusGone, "course page is closed")
	case errors.Is(err, completion.ErrUnknownStep):
		h.RespondError(w, http.StatusNotFound, "step not found")
	case errors.Is(err, services.ErrPageNotOpen):
		h.RespondError(w, http.StatusNotFound, "course page is not open")
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, apiclient.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, "course not found")
	case errors.As(err, &apiErr), errors.Is(err, apiclient.ErrUnavailable):
		h.Logger.Warn("learn api failure",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusBadGateway, "learn api request failed")
	default:
		h.Logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// session returns the browser session of the request or responds with 500
func (h *BaseHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		h.Logger.Error("session not found in context", zap.String("path", r.URL.Path))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return sess, true
}
