package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/japanesestudent/learn-web/internal/apiclient"
	"github.com/japanesestudent/learn-web/internal/completion"
	"github.com/japanesestudent/learn-web/internal/notice"
	"github.com/japanesestudent/learn-web/internal/store"
	"go.uber.org/zap"
)

// APIFactory builds a learn API client authenticating with the given token source
type APIFactory func(tokens apiclient.TokenSource) CourseAPI

// Session is the server-side state of one browser session
type Session struct {
	ID      string
	Store   *store.Store
	Notices *notice.Feed

	api     CourseAPI
	timings completion.Timings
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	pages    map[int]*CoursePage
	lastSeen time.Time
}

// Page returns the opened page of a course, loading it on first use
func (s *Session) Page(ctx context.Context, courseID int) (*CoursePage, error) {
	now := s.now()

	s.mu.Lock()
	s.lastSeen = now
	if p, ok := s.pages[courseID]; ok {
		s.mu.Unlock()
		p.touch(now)
		return p, nil
	}
	s.mu.Unlock()

	loaded, err := loadCoursePage(ctx, s.api, courseID, s.Notices, s.timings, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent request may have opened the page meanwhile
	if p, ok := s.pages[courseID]; ok {
		loaded.Dispose()
		return p, nil
	}
	loaded.touch(now)
	s.pages[courseID] = loaded
	return loaded, nil
}

// OpenedPage returns the page of a course if it is open
func (s *Session) OpenedPage(courseID int) (*CoursePage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[courseID]
	return p, ok
}

// ClosePage disposes the page of a course. It reports whether the page was open.
func (s *Session) ClosePage(courseID int) bool {
	s.mu.Lock()
	p, ok := s.pages[courseID]
	delete(s.pages, courseID)
	s.mu.Unlock()

	if ok {
		p.Dispose()
	}
	return ok
}

// sweepPages disposes pages idle since before cutoff and returns how many were closed
func (s *Session) sweepPages(cutoff time.Time) int {
	s.mu.Lock()
	var idle []*CoursePage
	for id, p := range s.pages {
		if p.idleSince().Before(cutoff) {
			idle = append(idle, p)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for _, p := range idle {
		p.Dispose()
	}
	return len(idle)
}

func (s *Session) close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[int]*CoursePage)
	s.mu.Unlock()

	for _, p := range pages {
		p.Dispose()
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry owns all browser sessions of the process
type Registry struct {
	newAPI      APIFactory
	timings     completion.Timings
	idleTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(newAPI APIFactory, timings completion.Timings, idleTimeout time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		newAPI:      newAPI,
		timings:     timings,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Lookup returns the live session with the given id and marks it as seen.
// Unknown ids are never adopted; callers create a fresh session instead.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastSeen = r.now()
	s.mu.Unlock()
	return s, true
}

// Create starts a session under a server-generated id
func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	for _, taken := r.sessions[id]; taken; _, taken = r.sessions[id] {
		id = uuid.NewString()
	}

	st := store.New()
	s := &Session{
		ID:       id,
		Store:    st,
		Notices:  notice.NewFeed(),
		api:      r.newAPI(st),
		timings:  r.timings,
		logger:   r.logger.With(zap.String("session_id", id)),
		now:      r.now,
		pages:    make(map[int]*CoursePage),
		lastSeen: r.now(),
	}
	r.sessions[id] = s
	r.logger.Debug("session created", zap.String("session_id", id))
	return s
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions and pages that have been idle longer than the idle timeout
func (r *Registry) Sweep() (sessions int, pages int) {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Session
	live := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
			continue
		}
		live = append(live, s)
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	for _, s := range live {
		pages += s.sweepPages(cutoff)
	}

	if len(idle) > 0 || pages > 0 {
		r.logger.Info("idle state swept", zap.Int("sessions", len(idle)), zap.Int("pages", pages))
	}
	return len(idle), pages
}

// RunJanitor sweeps idle state every interval until ctx is done
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close disposes every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
