package roomstore

import (
	"context"
	"sort"
	"sync"

	"planningpoker/internal/room"
)

// MemoryStore keeps rooms in process memory. Rooms are copied on the way in
// and out so callers never share state.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*room.Room)}
}

func (m *MemoryStore) Load(_ context.Context, slug string) (*room.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, slug string, r *room.Room) error {
	if err := checkSlug(slug); err != nil {
		return err
	}
	m.mu.Lock()
	m.rooms[slug] = r.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	delete(m.rooms, slug)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.rooms))
	for slug := range m.rooms {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}
