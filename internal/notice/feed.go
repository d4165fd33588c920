// Package notice keeps the user-visible notices of a browser session
package notice

import (
	"sync"
	"time"

	"github.com/japanesestudent/learn-web/internal/models"
)

const defaultCapacity = 100

// Feed is an append-only, bounded list of notices with live subscribers
type Feed struct {
	mu       sync.Mutex
	seq      int64
	items    []models.Notice
	capacity int
	subs     map[int]chan models.Notice
	nextSub  int
	now      func() time.Time
}

// NewFeed creates an empty feed keeping the last 100 notices
func NewFeed() *Feed {
	return &Feed{
		capacity: defaultCapacity,
		subs:     make(map[int]chan models.Notice),
		now:      time.Now,
	}
}

// Push appends a notice and delivers it to subscribers. Slow subscribers miss notices
// rather than block the caller; they can catch up with Since.
func (f *Feed) Push(kind models.NoticeKind, message string, stepID int) models.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	n := models.Notice{
		Seq:       f.seq,
		Kind:      kind,
		Message:   message,
		StepID:    stepID,
		CreatedAt: f.now(),
	}
	f.items = append(f.items, n)
	if len(f.items) > f.capacity {
		f.items = append([]models.Notice(nil), f.items[len(f.items)-f.capacity:]...)
	}

	for _, ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return n
}

// Since returns the retained notices with a sequence number greater than after
func (f *Feed) Since(after int64) []models.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Notice, 0)
	for _, n := range f.items {
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}

// Subscribe registers a live subscriber. The returned cancel func must be called to
// release it; it closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan models.Notice, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	ch := make(chan models.Notice, buffer)
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
}
