package models

import "time"

// NoticeKind represents the severity of a user-visible notice
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a dismissible message shown to the user
type Notice struct {
	Seq       int64      `json:"seq"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	StepID    int        `json:"stepId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
