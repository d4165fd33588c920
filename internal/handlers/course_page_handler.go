package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/learn-web/internal/models"
	"github.com/japanesestudent/learn-web/internal/services"
	"github.com/japanesestudent/learn-web/internal/validate"
	"github.com/japanesestudent/learn-web/internal/view"
	"go.uber.org/zap"
)

// CoursePageService is the interface that wraps methods for course page state
type CoursePageService interface {
	// GetPage renders a course page of the session, loading it from the learn API on first use.
	//
	// If the course cannot be loaded the error is returned together with "nil" value.
	// A progress fetch failure does not fail the page, it is rendered without progress.
	GetPage(ctx context.Context, sess *services.Session, courseID int) (*view.Page, error)
	// RefreshPage reloads the progress of a course page and renders it.
	//
	// On refresh failure the previous progress is rendered.
	RefreshPage(ctx context.Context, sess *services.Session, courseID int) (*view.Page, error)
	// ClosePage tears a course page down, abandoning pending follow-ups.
	ClosePage(sess *services.Session, courseID int) error
	// ToggleStep expands a collapsed step or collapses an expanded one.
	ToggleStep(ctx context.Context, sess *services.Session, courseID int, stepID int) (*view.Page, error)
	// RequestCompletion opens the completion draft of a step.
	//
	// Completed steps and steps with a submission in flight are rejected.
	RequestCompletion(ctx context.Context, sess *services.Session, courseID int, stepID int) (*view.Page, error)
	// UpdateDraft replaces the notes of the open completion draft.
	UpdateDraft(sess *services.Session, courseID int, notes string) (*view.Page, error)
	// CancelDraft discards the open completion draft.
	CancelDraft(sess *services.Session, courseID int) (*view.Page, error)
	// ConfirmCompletion submits the open completion draft.
	//
	// "notes", when not nil, replaces the draft notes. The draft is dismissed whatever the outcome.
	ConfirmCompletion(ctx context.Context, sess *services.Session, courseID int, notes *string) (*view.Page, error)
}

// CoursePageHandler handles course page HTTP requests
type CoursePageHandler struct {
	BaseHandler
	service CoursePageService
}

// NewCoursePageHandler creates a new course page handler
func NewCoursePageHandler(svc CoursePageService, v *validate.Validator, logger *zap.Logger) *CoursePageHandler {
	return &CoursePageHandler{
		BaseHandler: BaseHandler{Logger: logger, Validator: v},
		service:     svc,
	}
}

// RegisterRoutes registers all course page handler routes
func (h *CoursePageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses/{courseID}", func(r chi.Router) {
		r.Get("/page", h.GetPage)
		r.Delete("/page", h.ClosePage)
		r.Post("/page/refresh", h.RefreshPage)
		r.Post("/steps/{stepID}/toggle", h.ToggleStep)
		r.Post("/steps/{stepID}/completion", h.RequestCompletion)
		r.Put("/completion/draft", h.UpdateDraft)
		r.Delete("/completion/draft", h.CancelDraft)
		r.Post("/completion/confirm", h.ConfirmCompletion)
	})
}

// GetPage handles GET /api/v1/courses/{courseID}/page
// @Summary Get course page
// @Description Render the course page of the session: course, aggregate progress, step cards, expanded step and open completion draft
// @Tags course-page
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 502 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{courseID}/page [get]
func (h *CoursePageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.GetPage(r.Context(), sess, courseID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// RefreshPage handles POST /api/v1/courses/{courseID}/page/refresh
// @Summary Refresh course progress
// @Description Reload course and step progress. When the learn API fails the previous progress is kept.
// @Tags course-page
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{courseID}/page/refresh [post]
func (h *CoursePageHandler) RefreshPage(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.RefreshPage(r.Context(), sess, courseID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// ClosePage handles DELETE /api/v1/courses/{courseID}/page
// @Summary Close course page
// @Description Tear the course page down. Pending auto-advance and late submission results are dropped.
// @Tags course-page
// @Param courseID path int true "Course ID"
// @Success 204 "No Content"
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{courseID}/page [delete]
func (h *CoursePageHandler) ClosePage(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.ClosePage(sess, courseID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleStep handles POST /api/v1/courses/{courseID}/steps/{stepID}/toggle
// @Summary Toggle step
// @Description Expand a collapsed step, collapsing any other, or collapse an expanded one
// @Tags course-page
// @Produce json
// @Param courseID path int true "Course ID"
// @Param stepID path int true "Step ID"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse "Course has no enrollment"
// @Failure 404 {object} handlers.ErrorResponse
// @Router /api/v1/courses/{courseID}/steps/{stepID}/toggle [post]
func (h *CoursePageHandler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	sess, courseID, stepID, ok := h.stepRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.ToggleStep(r.Context(), sess, courseID, stepID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// RequestCompletion handles POST /api/v1/courses/{courseID}/steps/{stepID}/completion
// @Summary Open completion draft
// @Description Open the completion dialog of a step
// @Tags completion
// @Produce json
// @Param courseID path int true "Course ID"
// @Param stepID path int true "Step ID"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse "Course has no enrollment"
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse "Step already completed or being submitted"
// @Router /api/v1/courses/{courseID}/steps/{stepID}/completion [post]
func (h *CoursePageHandler) RequestCompletion(w http.ResponseWriter, r *http.Request) {
	sess, courseID, stepID, ok := h.stepRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.RequestCompletion(r.Context(), sess, courseID, stepID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// UpdateDraft handles PUT /api/v1/courses/{courseID}/completion/draft
// @Summary Update completion draft
// @Description Replace the notes of the open completion draft
// @Tags completion
// @Accept json
// @Produce json
// @Param courseID path int true "Course ID"
// @Param draft body models.DraftNotesRequest true "Draft notes"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse "No draft is open"
// @Router /api/v1/courses/{courseID}/completion/draft [put]
func (h *CoursePageHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	var req models.DraftNotesRequest
	if err := h.DecodeAndValidate(r, &req, false); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	page, err := h.service.UpdateDraft(sess, courseID, req.Notes)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// CancelDraft handles DELETE /api/v1/courses/{courseID}/completion/draft
// @Summary Cancel completion draft
// @Description Discard the open completion draft
// @Tags completion
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse "No draft is open"
// @Router /api/v1/courses/{courseID}/completion/draft [delete]
func (h *CoursePageHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.CancelDraft(sess, courseID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// ConfirmCompletion handles POST /api/v1/courses/{courseID}/completion/confirm
// @Summary Confirm completion
// @Description Submit the open completion draft. The step is marked completed, then the page refreshes, collapses the step and advances to the next incomplete one.
// @Tags completion
// @Accept json
// @Produce json
// @Param courseID path int true "Course ID"
// @Param confirm body models.ConfirmCompletionRequest false "Final notes"
// @Success 200 {object} view.Page
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse "No draft, already completed or being submitted"
// @Failure 502 {object} handlers.ErrorResponse "Learn API rejected the submission"
// @Router /api/v1/courses/{courseID}/completion/confirm [post]
func (h *CoursePageHandler) ConfirmCompletion(w http.ResponseWriter, r *http.Request) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return
	}

	var req models.ConfirmCompletionRequest
	if err := h.DecodeAndValidate(r, &req, true); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	page, err := h.service.ConfirmCompletion(r.Context(), sess, courseID, req.Notes)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

func (h *CoursePageHandler) pageRequest(w http.ResponseWriter, r *http.Request) (*services.Session, int, bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return nil, 0, false
	}
	courseID, ok := h.pathID(w, r, "courseID")
	if !ok {
		return nil, 0, false
	}
	return sess, courseID, true
}

func (h *CoursePageHandler) stepRequest(w http.ResponseWriter, r *http.Request) (*services.Session, int, int, bool) {
	sess, courseID, ok := h.pageRequest(w, r)
	if !ok {
		return nil, 0, 0, false
	}
	stepID, ok := h.pathID(w, r, "stepID")
	if !ok {
		return nil, 0, 0, false
	}
	return sess, courseID, stepID, true
}

func (h *CoursePageHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
