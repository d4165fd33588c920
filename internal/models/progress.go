package models

import "time"

// ProgressStatus represents the status of a progress record
type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
	ProgressStatusSolved     ProgressStatus = "solved"
)

// IsDone reports whether the status counts as completed. "solved" is treated as "completed".
func (s ProgressStatus) IsDone() bool {
	return s == ProgressStatusCompleted || s == ProgressStatusSolved
}

// ProgressData holds the free-form payload attached to a step progress record
type ProgressData struct {
	ReadTime int    `json:"read_time,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Progress represents a progress record of a course or a step
type Progress struct {
	ID           int            `json:"id"`
	CourseID     *int           `json:"course,omitempty"`
	StepID       *int           `json:"step,omitempty"`
	Status       ProgressStatus `json:"status"`
	Percentage   *float64       `json:"percentage,omitempty"`
	ProgressData *ProgressData  `json:"progress_data,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// CourseProgress represents the aggregate progress of the current user in a course
type CourseProgress struct {
	CourseID       int            `json:"course,omitempty"`
	Status         ProgressStatus `json:"status"`
	Percentage     *float64       `json:"percentage,omitempty"`
	CompletedSteps int            `json:"completed_steps"`
	TotalSteps     int            `json:"total_steps"`
}

// StepProgressUpdate is the body of a step progress PATCH request
type StepProgressUpdate struct {
	Status       ProgressStatus `json:"status"`
	ProgressData ProgressData   `json:"progress_data"`
	Notes        string         `json:"notes"`
}
