package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/models"
	"github.com/japanesestudent/learn-web/internal/progress"
	"github.com/japanesestudent/learn-web/internal/tracker"
	"github.com/japanesestudent/learn-web/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourseAPI is the interface that wraps the learn API calls a course page needs
type CourseAPI interface {
	// Method GetCourse retrieves a course together with the enrollment of the current user.
	//
	// A missing course is reported with an error matching apiclient.ErrNotFound.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
	// Method GetCourseSteps retrieves the steps of a course ordered by step_order.
	GetCourseSteps(ctx context.Context, courseID int) ([]models.CourseStep, error)
	// Method GetCourseProgress retrieves the aggregate progress of the current user in a course.
	GetCourseProgress(ctx context.Context, courseID int) (*models.CourseProgress, error)
	// Method GetCourseStepsProgress retrieves the raw per-step progress payload of a course.
	//
	// The payload shape varies between deployments, it is normalized by the progress cache.
	GetCourseStepsProgress(ctx context.Context, courseID int) (json.RawMessage, error)
	// Method UpdateStepProgress sends a progress update of a step and returns the stored record.
	UpdateStepProgress(ctx context.Context, stepID int, update models.StepProgressUpdate) (*models.Progress, error)
}

// CoursePage is the state of one opened course page of a session
type CoursePage struct {
	course models.Course
	steps  []models.CourseStep
	titles map[int]string

	cache     *progress.Cache
	tracker   *tracker.Tracker
	expansion *view.Expansion
	coord     *completion.Coordinator

	mu       sync.Mutex
	lastSeen time.Time
}

// loadCoursePage fetches the course and its steps concurrently, then the progress.
// A failed progress refresh does not fail the load: the page starts with no progress.
func loadCoursePage(ctx context.Context, api CourseAPI, courseID int, notices completion.NoticeSink, timings completion.Timings, logger *zap.Logger) (*CoursePage, error) {
	var (
		course *models.Course
		steps  []models.CourseStep
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := api.GetCourse(gctx, courseID)
		if err != nil {
			return err
		}
		course = c
		return nil
	})
	g.Go(func() error {
		s, err := api.GetCourseSteps(gctx, courseID)
		if err != nil {
			return err
		}
		steps = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load course page: %w", err)
	}

	pageLogger := logger.With(zap.Int("course_id", courseID))
	cache := progress.NewCache(api, pageLogger)
	if _, err := cache.Refresh(ctx, courseID); err != nil {
		pageLogger.Debug("course page opened without progress", zap.Error(err))
	}

	ordered := make([]models.CourseStep, len(steps))
	copy(ordered, steps)
	models.SortSteps(ordered)

	titles := make(map[int]string, len(ordered))
	for _, s := range ordered {
		titles[s.ID] = s.Title
	}

	p := &CoursePage{
		course:    *course,
		steps:     ordered,
		titles:    titles,
		cache:     cache,
		tracker:   tracker.New(),
		expansion: view.NewExpansion(),
		lastSeen:  time.Now(),
	}
	p.coord = completion.New(p.course, ordered, completion.Dependencies{
		Updater:  api,
		Cache:    cache,
		Tracker:  p.tracker,
		Expander: p.expansion,
		Notices:  notices,
	}, timings, pageLogger)

	return p, nil
}

// Coordinator returns the completion coordinator of the page
func (p *CoursePage) Coordinator() *completion.Coordinator {
	return p.coord
}

// Refresh reloads the progress of the page. On failure the previous progress stays visible.
func (p *CoursePage) Refresh(ctx context.Context) error {
	_, err := p.cache.Refresh(ctx, p.course.ID)
	return err
}

// View renders the current state of the page
func (p *CoursePage) View() view.Page {
	expandedID, hasExpanded := p.expansion.Expanded()
	st := view.State{
		ExpandedID:  expandedID,
		HasExpanded: hasExpanded,
		Progress:    p.cache.Snapshot(),
		Submitting:  p.coord.SubmittingSnapshot(),
		Enrolled:    p.course.IsEnrolled(),
	}

	var draft *view.Draft
	if d, ok := p.coord.Draft(); ok {
		draft = &view.Draft{StepID: d.StepID, StepTitle: p.titles[d.StepID], Notes: d.Notes}
	}

	var focus *int
	if id, ok := p.expansion.Focused(); ok {
		focus = &id
	}

	return view.RenderPage(p.course, p.steps, p.cache.CourseProgress(), st, draft, focus)
}

// Dispose tears the page down. Pending follow-ups and in-flight submissions are abandoned.
func (p *CoursePage) Dispose() {
	p.coord.Dispose()
}

func (p *CoursePage) touch(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = now
}

func (p *CoursePage) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}
