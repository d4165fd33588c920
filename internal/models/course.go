package models

import "time"

// Enrollment represents the link between the current user and a course
type Enrollment struct {
	ID         int        `json:"id"`
	Status     string     `json:"status,omitempty"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
}

// Course represents a course as returned by the learn API
//
// Enrollment is nil when the current user is not enrolled.
type Course struct {
	ID                int         `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	EstimatedDuration int         `json:"estimated_duration"`
	Enrollment        *Enrollment `json:"enrollment"`
}

// IsEnrolled reports whether the course carries an enrollment record
func (c *Course) IsEnrolled() bool {
	return c != nil && c.Enrollment != nil
}
