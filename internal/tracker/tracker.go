// Package tracker records when lessons were opened to estimate reading time
package tracker

import (
	"math"
	"sync"
	"time"
)

const (
	// DefaultReadMinutes is reported when a step was never opened in this session
	DefaultReadMinutes = 5
	// MinReadMinutes is the floor of any reported reading time
	MinReadMinutes = 1
)

// Tracker maps step ids to the instant the step was last expanded.
// Entries are never removed and are not persisted.
type Tracker struct {
	mu     sync.Mutex
	opened map[int]time.Time
	now    func() time.Time
}

// New creates an empty tracker
func New() *Tracker {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty tracker reading time from now
func NewWithClock(now func() time.Time) *Tracker {
	return &Tracker{
		opened: make(map[int]time.Time),
		now:    now,
	}
}

// RecordOpen stores the current time as the open time of a step
func (t *Tracker) RecordOpen(stepID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened[stepID] = t.now()
}

// OpenedAt returns the last recorded open time of a step
func (t *Tracker) OpenedAt(stepID int) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.opened[stepID]
	return at, ok
}

// ElapsedMinutes returns the minutes since the step was opened, rounded to the nearest
// minute and never below MinReadMinutes. Steps without an open time report DefaultReadMinutes.
func (t *Tracker) ElapsedMinutes(stepID int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	at, ok := t.opened[stepID]
	if !ok {
		return DefaultReadMinutes
	}

	minutes := int(math.Round(float64(t.now().Sub(at).Milliseconds()) / 60000))
	if minutes < MinReadMinutes {
		return MinReadMinutes
	}
	return minutes
}
