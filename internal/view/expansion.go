// Package view projects course page state into renderable cards
package view

import "sync"

// Expansion is the single-selection expand state of a course page.
// At most one step is expanded at any time.
type Expansion struct {
	mu          sync.Mutex
	expanded    int
	hasExpanded bool
	focus       int
	hasFocus    bool
}

// NewExpansion creates an expansion state with nothing expanded
func NewExpansion() *Expansion {
	return &Expansion{}
}

// Expand expands a step, collapsing any other. It reports whether the step was not expanded before.
func (e *Expansion) Expand(stepID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasExpanded && e.expanded == stepID {
		return false
	}
	e.expanded = stepID
	e.hasExpanded = true
	return true
}

// Collapse collapses a step. It reports whether the step was expanded.
func (e *Expansion) Collapse(stepID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasExpanded || e.expanded != stepID {
		return false
	}
	e.expanded = 0
	e.hasExpanded = false
	return true
}

// Expanded returns the expanded step
func (e *Expansion) Expanded() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expanded, e.hasExpanded
}

// IsExpanded reports whether the given step is expanded
func (e *Expansion) IsExpanded(stepID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasExpanded && e.expanded == stepID
}

// Focus marks a step as the one to scroll into view
func (e *Expansion) Focus(stepID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus = stepID
	e.hasFocus = true
}

// Focused returns the step to scroll into view
func (e *Expansion) Focused() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus, e.hasFocus
}
