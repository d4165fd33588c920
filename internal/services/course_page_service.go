package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/japanesestudent/learn-web/internal/view"
	"go.uber.org/zap"
)

// ErrPageNotOpen is returned by operations that need a page the session has not opened
var ErrPageNotOpen = errors.New("course page is not open")

type coursePageService struct {
	logger *zap.Logger
}

// NewCoursePageService creates a new course page service
func NewCoursePageService(logger *zap.Logger) *coursePageService {
	return &coursePageService{
		logger: logger,
	}
}

// GetPage renders a course page, opening it on first use
func (s *coursePageService) GetPage(ctx context.Context, sess *Session, courseID int) (*view.Page, error) {
	p, err := sess.Page(ctx, courseID)
	if err != nil {
		return nil, err
	}
	page := p.View()
	return &page, nil
}

// RefreshPage reloads the progress of a course page and renders it.
//
// A failed refresh still renders the page with the previous progress; the error is only logged.
func (s *coursePageService) RefreshPage(ctx context.Context, sess *Session, courseID int) (*view.Page, error) {
	p, err := sess.Page(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := p.Refresh(ctx); err != nil {
		s.logger.Debug("manual refresh kept previous progress", zap.Int("course_id", courseID), zap.Error(err))
	}
	page := p.View()
	return &page, nil
}

// ClosePage tears a course page down
func (s *coursePageService) ClosePage(sess *Session, courseID int) error {
	if !sess.ClosePage(courseID) {
		return ErrPageNotOpen
	}
	return nil
}

// ToggleStep expands or collapses a step
func (s *coursePageService) ToggleStep(ctx context.Context, sess *Session, courseID int, stepID int) (*view.Page, error) {
	p, err := sess.Page(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := p.coord.ToggleStep(stepID); err != nil {
		return nil, fmt.Errorf("failed to toggle step %d: %w", stepID, err)
	}
	page := p.View()
	return &page, nil
}

// RequestCompletion opens the completion draft of a step
func (s *coursePageService) RequestCompletion(ctx context.Context, sess *Session, courseID int, stepID int) (*view.Page, error) {
	p, err := sess.Page(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := p.coord.RequestCompletion(stepID); err != nil {
		return nil, fmt.Errorf("failed to open completion of step %d: %w", stepID, err)
	}
	page := p.View()
	return &page, nil
}

// UpdateDraft replaces the notes of the open completion draft
func (s *coursePageService) UpdateDraft(sess *Session, courseID int, notes string) (*view.Page, error) {
	p, ok := sess.OpenedPage(courseID)
	if !ok {
		return nil, ErrPageNotOpen
	}
	if err := p.coord.UpdateDraft(notes); err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	page := p.View()
	return &page, nil
}

// CancelDraft discards the open completion draft
func (s *coursePageService) CancelDraft(sess *Session, courseID int) (*view.Page, error) {
	p, ok := sess.OpenedPage(courseID)
	if !ok {
		return nil, ErrPageNotOpen
	}
	if err := p.coord.CancelDraft(); err != nil {
		return nil, fmt.Errorf("failed to cancel draft: %w", err)
	}
	page := p.View()
	return &page, nil
}

// ConfirmCompletion submits the open completion draft. notes, when not nil, replaces the draft notes.
func (s *coursePageService) ConfirmCompletion(ctx context.Context, sess *Session, courseID int, notes *string) (*view.Page, error) {
	p, ok := sess.OpenedPage(courseID)
	if !ok {
		return nil, ErrPageNotOpen
	}
	if err := p.coord.Confirm(ctx, notes); err != nil {
		return nil, fmt.Errorf("failed to confirm completion: %w", err)
	}
	page := p.View()
	return &page, nil
}
