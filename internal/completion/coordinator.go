// Package completion orchestrates marking course steps as completed
package completion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/japanesestudent/learn-web/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNotEnrolled        = errors.New("course has no enrollment")
	ErrUnknownStep        = errors.New("step does not belong to course")
	ErrAlreadyCompleted   = errors.New("step is already completed")
	ErrSubmissionInFlight = errors.New("step completion is already being submitted")
	ErrNoDraft            = errors.New("no completion draft is open")
	ErrDisposed           = errors.New("course page is closed")
)

// ProgressUpdater is the interface that wraps the step progress submission
type ProgressUpdater interface {
	// UpdateStepProgress sends a step progress update and returns the stored record
	UpdateStepProgress(ctx context.Context, stepID int, update models.StepProgressUpdate) (*models.Progress, error)
}

// ProgressCache is the interface for the step progress cache the coordinator drives
type ProgressCache interface {
	// Refresh reloads the cache from the server
	Refresh(ctx context.Context, courseID int) (map[int]models.Progress, error)
	// IsDone reports whether a step is completed or solved
	IsDone(stepID int) bool
	// MarkCompleted records a completion before the next refresh confirms it
	MarkCompleted(stepID int, p models.Progress)
}

// SessionTracker is the interface for lesson open timestamps
type SessionTracker interface {
	// RecordOpen stores the current instant as the step's open time
	RecordOpen(stepID int)
	// ElapsedMinutes returns the reading time since the step was opened
	ElapsedMinutes(stepID int) int
}

// StepExpander is the interface for the single-selection expand state
type StepExpander interface {
	Expand(stepID int) bool
	Collapse(stepID int) bool
	IsExpanded(stepID int) bool
	Focus(stepID int)
}

// NoticeSink receives user-visible notices
type NoticeSink interface {
	Push(kind models.NoticeKind, message string, stepID int) models.Notice
}

// Timings holds the pacing of the follow-up chain after a successful completion
type Timings struct {
	RefreshDelay  time.Duration
	CollapseDelay time.Duration
	AdvanceDelay  time.Duration
}

// DefaultTimings returns the standard pacing
func DefaultTimings() Timings {
	return Timings{
		RefreshDelay:  500 * time.Millisecond,
		CollapseDelay: time.Second,
		AdvanceDelay:  time.Second,
	}
}

// Dependencies groups the collaborators of a Coordinator
type Dependencies struct {
	Updater  ProgressUpdater
	Cache    ProgressCache
	Tracker  SessionTracker
	Expander StepExpander
	Notices  NoticeSink
}

// Draft is an open completion dialog
type Draft struct {
	StepID int
	Notes  string
}

// Coordinator owns the completion flow of one course page.
//
// It is the only writer of the progress cache and the session tracker for that page.
// Submissions are mutually exclusive per step; different steps may be submitted concurrently.
type Coordinator struct {
	courseID int
	enrolled bool
	steps    []models.CourseStep
	byID     map[int]models.CourseStep

	deps    Dependencies
	timings Timings
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	draft      *Draft
	submitting map[int]bool
	timers     map[*time.Timer]struct{}
	disposed   bool
}

// New creates a coordinator for a course and its steps
func New(course models.Course, steps []models.CourseStep, deps Dependencies, timings Timings, logger *zap.Logger) *Coordinator {
	ordered := make([]models.CourseStep, len(steps))
	copy(ordered, steps)
	models.SortSteps(ordered)

	byID := make(map[int]models.CourseStep, len(ordered))
	for _, s := range ordered {
		byID[s.ID] = s
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		courseID:   course.ID,
		enrolled:   course.IsEnrolled(),
		steps:      ordered,
		byID:       byID,
		deps:       deps,
		timings:    timings,
		logger:     logger.With(zap.Int("course_id", course.ID)),
		ctx:        ctx,
		cancel:     cancel,
		submitting: make(map[int]bool),
		timers:     make(map[*time.Timer]struct{}),
	}
}

// checkStep validates a step intent. Must be called with c.mu held.
func (c *Coordinator) checkStep(stepID int) (models.CourseStep, error) {
	if c.disposed {
		return models.CourseStep{}, ErrDisposed
	}
	if !c.enrolled {
		return models.CourseStep{}, ErrNotEnrolled
	}
	step, ok := c.byID[stepID]
	if !ok {
		return models.CourseStep{}, ErrUnknownStep
	}
	return step, nil
}

// ExpandStep expands a step. The open time is recorded only when the step was not already expanded.
func (c *Coordinator) ExpandStep(stepID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.checkStep(stepID); err != nil {
		return err
	}
	c.expand(stepID)
	return nil
}

// CollapseStep collapses a step if it is expanded
func (c *Coordinator) CollapseStep(stepID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.checkStep(stepID); err != nil {
		return err
	}
	c.deps.Expander.Collapse(stepID)
	return nil
}

// ToggleStep flips the expand state of a step and reports whether it is now expanded
func (c *Coordinator) ToggleStep(stepID int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.checkStep(stepID); err != nil {
		return false, err
	}
	if c.deps.Expander.IsExpanded(stepID) {
		c.deps.Expander.Collapse(stepID)
		return false, nil
	}
	c.expand(stepID)
	return true, nil
}

func (c *Coordinator) expand(stepID int) {
	if c.deps.Expander.Expand(stepID) {
		c.deps.Tracker.RecordOpen(stepID)
	}
}

// RequestCompletion opens the completion draft for a step
func (c *Coordinator) RequestCompletion(stepID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	step, err := c.checkStep(stepID)
	if err != nil {
		return err
	}
	if c.deps.Cache.IsDone(stepID) {
		c.deps.Notices.Push(models.NoticeInfo, fmt.Sprintf("%s is already completed", step.Title), stepID)
		return ErrAlreadyCompleted
	}
	if c.submitting[stepID] {
		return ErrSubmissionInFlight
	}

	c.draft = &Draft{StepID: stepID}
	return nil
}

// UpdateDraft replaces the notes of the open draft
func (c *Coordinator) UpdateDraft(notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if c.draft == nil {
		return ErrNoDraft
	}
	c.draft.Notes = notes
	return nil
}

// CancelDraft discards the open draft
func (c *Coordinator) CancelDraft() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if c.draft == nil {
		return ErrNoDraft
	}
	c.draft = nil
	return nil
}

// Draft returns the open draft
func (c *Coordinator) Draft() (Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return Draft{}, false
	}
	return *c.draft, true
}

// SubmittingSnapshot returns the steps with a submission in flight
func (c *Coordinator) SubmittingSnapshot() map[int]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[int]bool, len(c.submitting))
	for id, v := range c.submitting {
		if v {
			out[id] = true
		}
	}
	return out
}

// Confirm submits the open draft. When notes is not nil it replaces the draft notes.
//
// The draft is dismissed whatever the outcome. On success the step is marked completed
// locally and the follow-up chain is scheduled; on failure an error notice is pushed and
// the cache is left untouched so the user can retry.
func (c *Coordinator) Confirm(ctx context.Context, notes *string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.draft == nil {
		c.mu.Unlock()
		return ErrNoDraft
	}
	draft := *c.draft
	c.draft = nil
	if notes != nil {
		draft.Notes = *notes
	}

	step := c.byID[draft.StepID]
	if c.deps.Cache.IsDone(step.ID) {
		c.mu.Unlock()
		c.deps.Notices.Push(models.NoticeInfo, fmt.Sprintf("%s is already completed", step.Title), step.ID)
		return ErrAlreadyCompleted
	}
	if c.submitting[step.ID] {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.submitting[step.ID] = true
	c.mu.Unlock()

	readTime := c.deps.Tracker.ElapsedMinutes(step.ID)
	update := models.StepProgressUpdate{
		Status: models.ProgressStatusCompleted,
		ProgressData: models.ProgressData{
			ReadTime: readTime,
			Notes:    draft.Notes,
		},
		Notes: draft.Notes,
	}

	// a closed page abandons the request
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	stored, err := c.deps.Updater.UpdateStepProgress(reqCtx, step.ID, update)
	stop()
	cancel()

	c.mu.Lock()
	delete(c.submitting, step.ID)
	disposed := c.disposed
	c.mu.Unlock()

	if disposed {
		c.logger.Debug("dropping completion result of closed page", zap.Int("step_id", step.ID))
		return ErrDisposed
	}

	if err != nil {
		c.logger.Error("failed to complete step", zap.Int("step_id", step.ID), zap.Error(err))
		c.deps.Notices.Push(models.NoticeError, fmt.Sprintf("Could not complete %s", step.Title), step.ID)
		return fmt.Errorf("failed to complete step %d: %w", step.ID, err)
	}

	c.deps.Cache.MarkCompleted(step.ID, completedRecord(step.ID, update.ProgressData, stored))
	c.deps.Notices.Push(models.NoticeSuccess, fmt.Sprintf("%s completed", step.Title), step.ID)
	c.logger.Info("step completed", zap.Int("step_id", step.ID), zap.Int("read_time", readTime))

	c.scheduleFollowUp(step)
	return nil
}

func completedRecord(stepID int, data models.ProgressData, stored *models.Progress) models.Progress {
	if stored != nil && stored.Status.IsDone() {
		return *stored
	}
	now := time.Now()
	id := stepID
	return models.Progress{
		StepID:       &id,
		Status:       models.ProgressStatusCompleted,
		ProgressData: &data,
		CompletedAt:  &now,
	}
}

// scheduleFollowUp refreshes the cache, collapses the completed step and advances to the next one
func (c *Coordinator) scheduleFollowUp(step models.CourseStep) {
	c.after(c.timings.RefreshDelay, func(ctx context.Context) {
		// failures are logged by the cache and the previous contents stay
		_, _ = c.deps.Cache.Refresh(ctx, c.courseID)
	})

	c.after(c.timings.CollapseDelay, func(context.Context) {
		c.mu.Lock()
		c.deps.Expander.Collapse(step.ID)
		c.mu.Unlock()

		c.after(c.timings.AdvanceDelay, func(context.Context) {
			c.advanceFrom(step)
		})
	})
}

// advanceFrom expands the first step after the given one that is not done yet
func (c *Coordinator) advanceFrom(step models.CourseStep) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.nextIncomplete(step.StepOrder)
	if !ok {
		c.logger.Debug("no step left to advance to", zap.Int("step_id", step.ID))
		return
	}
	c.expand(next.ID)
	c.deps.Expander.Focus(next.ID)
}

// nextIncomplete returns the step with the smallest order greater than order whose status is not done
func (c *Coordinator) nextIncomplete(order int) (models.CourseStep, bool) {
	i := sort.Search(len(c.steps), func(i int) bool {
		return c.steps[i].StepOrder > order
	})
	for ; i < len(c.steps); i++ {
		if !c.deps.Cache.IsDone(c.steps[i].ID) {
			return c.steps[i], true
		}
	}
	return models.CourseStep{}, false
}

// after runs fn once d has elapsed unless the coordinator is disposed first
func (c *Coordinator) after(d time.Duration, fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, t)
		disposed := c.disposed
		c.mu.Unlock()

		if disposed {
			return
		}
		fn(c.ctx)
	})
	c.timers[t] = struct{}{}
}

// Dispose closes the coordinator. Pending timers are stopped and in-flight requests are
// cancelled; results arriving afterwards are ignored.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	for t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.draft = nil
	c.mu.Unlock()

	c.cancel()
}

// Disposed reports whether Dispose was called
func (c *Coordinator) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
