package memory

import (
	"context"
	"sync"

	"ramadan-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.StateStore, useful for tests
// and demos. It copies on both paths so callers never share slices with it.
type Store struct {
	mu    sync.Mutex
	state *domain.State
}

func NewStore() *Store {
	return &Store{}
}

// NewStoreWithState seeds the store with an existing document.
func NewStoreWithState(state domain.State) *Store {
	cloned := state.Clone()
	return &Store{state: &cloned}
}

func (s *Store) Load(_ context.Context) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return domain.DefaultState()
	}
	return s.state.Clone()
}

func (s *Store) Save(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := state.Clone()
	s.state = &cloned
	return nil
}
