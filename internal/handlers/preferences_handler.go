package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/learn-web/internal/models"
	"github.com/japanesestudent/learn-web/internal/store"
	"github.com/japanesestudent/learn-web/internal/validate"
	"go.uber.org/zap"
)

// PreferencesHandler handles UI preference HTTP requests
type PreferencesHandler struct {
	BaseHandler
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(v *validate.Validator, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		BaseHandler: BaseHandler{Logger: logger, Validator: v},
	}
}

// RegisterRoutes registers all preferences handler routes
func (h *PreferencesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/preferences", func(r chi.Router) {
		r.Get("/theme", h.GetTheme)
		r.Put("/theme", h.UpdateTheme)
	})
}

// GetTheme handles GET /api/v1/preferences/theme
// @Summary Get theme
// @Description Get the theme mode of the session
// @Tags preferences
// @Produce json
// @Success 200 {object} models.ThemeResponse
// @Router /api/v1/preferences/theme [get]
func (h *PreferencesHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ThemeResponse{Mode: string(sess.Store.Theme())})
}

// UpdateTheme handles PUT /api/v1/preferences/theme
// @Summary Update theme
// @Description Set the theme mode of the session
// @Tags preferences
// @Accept json
// @Produce json
// @Param theme body models.ThemeRequest true "Theme mode: light or dark"
// @Success 200 {object} models.ThemeResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/preferences/theme [put]
func (h *PreferencesHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ThemeRequest
	if err := h.DecodeAndValidate(r, &req, false); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := sess.Store.SetTheme(store.ThemeMode(req.Mode)); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, models.ThemeResponse{Mode: string(sess.Store.Theme())})
}
