package models

// DraftNotesRequest is the body of PUT /courses/{courseID}/completion/draft
type DraftNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ConfirmCompletionRequest is the optional body of POST /courses/{courseID}/completion/confirm.
// Notes, when present, replace the notes of the draft.
type ConfirmCompletionRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ThemeRequest is the body of PUT /preferences/theme
type ThemeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=light dark"`
}

// ThemeResponse is the theme preference of the session
type ThemeResponse struct {
	Mode string `json:"mode"`
}
