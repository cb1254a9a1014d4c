// Package session keeps the per-user state of the planner and the movie
// companion between requests.
package session

import (
	"context"
	"errors"
	"time"

	"mealmate/internal/planner"
	"mealmate/internal/shopping"
	"mealmate/internal/tmdb"
	"mealmate/internal/trivia"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// State is everything remembered for one session.
type State struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Plan     *planner.Result        `json:"plan,omitempty"`
	Shopping *shopping.Basis        `json:"shopping,omitempty"`
	Media    *tmdb.Media            `json:"media,omitempty"`
	Grocery  *shopping.GroceryBasis `json:"grocery,omitempty"`
	Trivia   *trivia.Game           `json:"trivia,omitempty"`
}

// New returns an empty state.
func New(id string, now time.Time) *State {
	return &State{ID: id, CreatedAt: now, UpdatedAt: now}
}

// SetPlan stores a new plan. The previous shopping basis belongs to the old
// plan and is dropped.
func (s *State) SetPlan(res *planner.Result) {
	s.Plan = res
	s.Shopping = nil
}

// SetMedia switches the selected title, resetting everything derived from
// the previous one.
func (s *State) SetMedia(m *tmdb.Media) {
	if s.Media != nil && m != nil && s.Media.ID == m.ID && s.Media.MediaType == m.MediaType {
		return
	}
	s.Media = m
	s.Grocery = nil
	s.Trivia = nil
}

// Store persists session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, s *State) error
	Delete(ctx context.Context, id string) error
}

// Load returns the state for id, or a fresh one when the session does not
// exist yet.
func Load(ctx context.Context, store Store, id string) (*State, error) {
	st, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return New(id, time.Now().UTC()), nil
	}
	return st, err
}
