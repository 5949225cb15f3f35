package session

import (
	"errors"
	"sync"
	"time"

	"example.com/pennypilot/backend/internal/render"
)

var ErrSuggestionsBusy = errors.New("a suggestion request is already pending")

// Suggestions tracks the request cycle of the budget suggestion form.
type Suggestions struct {
	mu        sync.Mutex
	pending   bool
	view      *render.SuggestionView
	lastError string
	updatedAt time.Time
}

type SuggestionsState struct {
	Pending   bool                   `json:"pending"`
	View      *render.SuggestionView `json:"view,omitempty"`
	Error     string                 `json:"error,omitempty"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

// Begin marks a request as in flight. Only one may run at a time.
func (s *Suggestions) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return ErrSuggestionsBusy
	}
	s.pending = true
	s.lastError = ""
	return nil
}

// Abort releases the guard without touching the last result.
func (s *Suggestions) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
}

func (s *Suggestions) Succeed(view render.SuggestionView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false
	s.view = &view
	s.lastError = ""
	s.updatedAt = time.Now().UTC()
}

// Fail records the error and drops the previous view so it is never shown as current.
func (s *Suggestions) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false
	s.view = nil
	s.lastError = message
	s.updatedAt = time.Now().UTC()
}

func (s *Suggestions) State() SuggestionsState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SuggestionsState{Pending: s.pending, Error: s.lastError}
	if s.view != nil {
		view := *s.view
		state.View = &view
	}
	if !s.updatedAt.IsZero() {
		updatedAt := s.updatedAt
		state.UpdatedAt = &updatedAt
	}
	return state
}
