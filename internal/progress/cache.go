// Package progress keeps the client-side view of course and step progress
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/japanesestudent/learn-web/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the interface that wraps the learn API calls the cache needs
type Fetcher interface {
	// GetCourseProgress retrieves the aggregate progress of a course
	GetCourseProgress(ctx context.Context, courseID int) (*models.CourseProgress, error)
	// GetCourseStepsProgress retrieves the raw per-step progress payload of a course
	GetCourseStepsProgress(ctx context.Context, courseID int) (json.RawMessage, error)
}

// Cache maps step ids to the last known progress of the course last refreshed.
//
// The mapping is replaced wholesale on every successful refresh and kept untouched when a
// refresh fails. A missing key means the step has not been started.
type Cache struct {
	fetcher Fetcher
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.RWMutex
	steps       map[int]models.Progress
	course      *models.CourseProgress
	refreshedAt time.Time
	issued      uint64
	applied     uint64
}

// NewCache creates an empty cache
func NewCache(fetcher Fetcher, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		steps:   map[int]models.Progress{},
	}
}

// Refresh fetches course and step progress concurrently and replaces the cache contents.
//
// On failure the previous contents are kept and returned together with the error; callers
// that only care about the display may ignore the error.
func (c *Cache) Refresh(ctx context.Context, courseID int) (map[int]models.Progress, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	var (
		course *models.CourseProgress
		raw    json.RawMessage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		course, err = c.fetcher.GetCourseProgress(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		raw, err = c.fetcher.GetCourseStepsProgress(gctx, courseID)
		return err
	})

	if err := g.Wait(); err != nil {
		c.logger.Warn("failed to refresh progress, keeping previous values",
			zap.Int("course_id", courseID),
			zap.Error(err),
		)
		return c.Snapshot(), fmt.Errorf("failed to refresh progress: %w", err)
	}

	steps, dropped, err := Normalize(raw)
	if err != nil {
		c.logger.Warn("failed to normalize steps progress, keeping previous values",
			zap.Int("course_id", courseID),
			zap.Error(err),
		)
		return c.Snapshot(), fmt.Errorf("failed to refresh progress: %w", err)
	}
	if dropped > 0 {
		c.logger.Debug("skipped unrecognized steps progress entries",
			zap.Int("course_id", courseID),
			zap.Int("dropped", dropped),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A slower refresh issued earlier must not overwrite a newer result
	if seq < c.applied {
		return maps.Clone(c.steps), nil
	}
	c.applied = seq
	c.steps = steps
	c.course = course
	c.refreshedAt = c.now()
	return maps.Clone(c.steps), nil
}

// MarkCompleted records a completion acknowledged by the server before the next refresh
// confirms it. The next successful refresh replaces it with the authoritative value.
func (c *Cache) MarkCompleted(stepID int, p models.Progress) {
	if !p.Status.IsDone() {
		p.Status = models.ProgressStatusCompleted
	}
	if p.StepID == nil {
		p.StepID = &stepID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := maps.Clone(c.steps)
	next[stepID] = p
	c.steps = next
}

// Get returns the cached progress of a step
func (c *Cache) Get(stepID int) (models.Progress, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.steps[stepID]
	return p, ok
}

// Status returns the cached status of a step, not_started when unknown
func (c *Cache) Status(stepID int) models.ProgressStatus {
	p, ok := c.Get(stepID)
	if !ok || p.Status == "" {
		return models.ProgressStatusNotStarted
	}
	return p.Status
}

// IsDone reports whether the cached status of a step is completed or solved
func (c *Cache) IsDone(stepID int) bool {
	return c.Status(stepID).IsDone()
}

// Snapshot returns a copy of the step mapping
func (c *Cache) Snapshot() map[int]models.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.steps)
}

// CourseProgress returns the last known aggregate progress of the course, nil before the
// first successful refresh
func (c *Cache) CourseProgress() *models.CourseProgress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.course == nil {
		return nil
	}
	cp := *c.course
	return &cp
}

// RefreshedAt returns the time of the last successful refresh
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
