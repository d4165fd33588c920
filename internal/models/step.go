package models

import "sort"

// StepType represents the kind of a course step
type StepType string

const (
	StepTypeLesson     StepType = "lesson"
	StepTypeExercise   StepType = "exercise"
	StepTypeQuiz       StepType = "quiz"
	StepTypeProject    StepType = "project"
	StepTypeTheory     StepType = "theory"
	StepTypeReview     StepType = "review"
	StepTypeCode       StepType = "code"
	StepTypeSetup      StepType = "setup"
	StepTypeDeployment StepType = "deployment"
	StepTypeTesting    StepType = "testing"
)

var stepTypes = map[StepType]struct{}{
	StepTypeLesson:     {},
	StepTypeExercise:   {},
	StepTypeQuiz:       {},
	StepTypeProject:    {},
	StepTypeTheory:     {},
	StepTypeReview:     {},
	StepTypeCode:       {},
	StepTypeSetup:      {},
	StepTypeDeployment: {},
	StepTypeTesting:    {},
}

// IsValid reports whether the step type belongs to the known set
func (t StepType) IsValid() bool {
	_, ok := stepTypes[t]
	return ok
}

// CourseStep represents a single ordered step of a course
type CourseStep struct {
	ID        int      `json:"id"`
	CourseID  int      `json:"course"`
	StepOrder int      `json:"step_order"`
	StepType  StepType `json:"step_type"`
	Required  bool     `json:"is_required"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
}

// SortSteps orders steps by StepOrder in place, breaking ties by ID
func SortSteps(steps []CourseStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].StepOrder == steps[j].StepOrder {
			return steps[i].ID < steps[j].ID
		}
		return steps[i].StepOrder < steps[j].StepOrder
	})
}
