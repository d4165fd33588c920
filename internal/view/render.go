package view

import (
	"math"

	"github.com/japanesestudent/learn-web/internal/models"
)

// State is everything a card needs besides its step
type State struct {
	ExpandedID  int
	HasExpanded bool
	Progress    map[int]models.Progress
	Submitting  map[int]bool
	Enrolled    bool
}

// Card is the rendered form of a course step
type Card struct {
	StepID         int                   `json:"stepId"`
	StepOrder      int                   `json:"stepOrder"`
	Title          string                `json:"title"`
	StepType       models.StepType       `json:"stepType"`
	Required       bool                  `json:"required"`
	Content        string                `json:"content,omitempty"`
	Status         models.ProgressStatus `json:"status"`
	Done           bool                  `json:"done"`
	Percentage     float64               `json:"percentage"`
	Expanded       bool                  `json:"expanded"`
	Submitting     bool                  `json:"submitting"`
	ActionsEnabled bool                  `json:"actionsEnabled"`
	CanComplete    bool                  `json:"canComplete"`
}

// ProgressBar is the aggregate progress of a course page
type ProgressBar struct {
	Percentage     float64 `json:"percentage"`
	CompletedSteps int     `json:"completedSteps"`
	TotalSteps     int     `json:"totalSteps"`
}

// Draft is the open completion dialog
type Draft struct {
	StepID    int    `json:"stepId"`
	StepTitle string `json:"stepTitle"`
	Notes     string `json:"notes"`
}

// Page is the rendered course page
type Page struct {
	Course         models.Course `json:"course"`
	Enrolled       bool          `json:"enrolled"`
	Progress       ProgressBar   `json:"progress"`
	Cards          []Card        `json:"cards"`
	ExpandedStepID *int          `json:"expandedStepId"`
	FocusStepID    *int          `json:"focusStepId"`
	Draft          *Draft        `json:"draft"`
}

// RenderCard renders a single step. Content is only included for the expanded step.
func RenderCard(step models.CourseStep, st State) Card {
	status := models.ProgressStatusNotStarted
	var percentage float64
	if p, ok := st.Progress[step.ID]; ok {
		if p.Status != "" {
			status = p.Status
		}
		if p.Percentage != nil {
			percentage = clampPercentage(*p.Percentage)
		} else if status.IsDone() {
			percentage = 100
		}
	}

	expanded := st.HasExpanded && st.ExpandedID == step.ID
	submitting := st.Submitting[step.ID]

	card := Card{
		StepID:         step.ID,
		StepOrder:      step.StepOrder,
		Title:          step.Title,
		StepType:       step.StepType,
		Required:       step.Required,
		Status:         status,
		Done:           status.IsDone(),
		Percentage:     percentage,
		Expanded:       expanded,
		Submitting:     submitting,
		ActionsEnabled: st.Enrolled,
		CanComplete:    st.Enrolled && !status.IsDone() && !submitting,
	}
	if expanded {
		card.Content = step.Content
	}
	return card
}

// RenderPage renders a course page. steps must be ordered by step_order.
//
// The server percentage is authoritative when present; otherwise the bar is derived from
// the share of completed steps.
func RenderPage(course models.Course, steps []models.CourseStep, courseProgress *models.CourseProgress, st State, draft *Draft, focus *int) Page {
	cards := make([]Card, 0, len(steps))
	completed := 0
	for _, step := range steps {
		card := RenderCard(step, st)
		if card.Done {
			completed++
		}
		cards = append(cards, card)
	}

	bar := ProgressBar{CompletedSteps: completed, TotalSteps: len(steps)}
	switch {
	case courseProgress != nil && courseProgress.Percentage != nil:
		bar.Percentage = clampPercentage(*courseProgress.Percentage)
	case len(steps) > 0:
		bar.Percentage = math.Round(float64(completed)/float64(len(steps))*1000) / 10
	}

	page := Page{
		Course:   course,
		Enrolled: st.Enrolled,
		Progress: bar,
		Cards:    cards,
		Draft:    draft,
	}
	if st.HasExpanded {
		id := st.ExpandedID
		page.ExpandedStepID = &id
	}
	if focus != nil {
		id := *focus
		page.FocusStepID = &id
	}
	return page
}

func clampPercentage(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
