package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-admin-console/components/listing"
)

// InMemoryStateStore keeps list state per viewer and screen in memory.
type InMemoryStateStore struct {
	mu   sync.RWMutex
	data map[string]listing.State
}

// NewInMemoryStateStore creates an empty state store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		data: make(map[string]listing.State),
	}
}

// LoadState returns the stored state. Anonymous viewers never have one.
func (s *InMemoryStateStore) LoadState(_ context.Context, viewer ViewerContext, screen Screen) (listing.State, bool, error) {
	if viewer.UserID == "" {
		return listing.State{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[s.key(viewer, screen)]
	if !ok {
		return listing.State{}, false, nil
	}
	state.Criteria = state.Criteria.Clone()
	return state, true, nil
}

// SaveState stores state for the viewer and screen.
func (s *InMemoryStateStore) SaveState(_ context.Context, viewer ViewerContext, screen Screen, state listing.State) error {
	if viewer.UserID == "" {
		return fmt.Errorf("state store requires viewer user id")
	}
	state.Criteria = state.Criteria.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key(viewer, screen)] = state
	return nil
}

// DeleteState forgets the stored state.
func (s *InMemoryStateStore) DeleteState(_ context.Context, viewer ViewerContext, screen Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, s.key(viewer, screen))
	return nil
}

func (s *InMemoryStateStore) key(viewer ViewerContext, screen Screen) string {
	return viewer.UserID + "::" + string(screen)
}
