// Package roomstore persists rooms by slug. Every backend gives
// read-your-writes consistency inside one process and last-writer-wins
// overwrites; none of them is transactional across rooms.
package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"planningpoker/internal/room"
)

var (
	ErrNotFound    = errors.New("room not found")
	ErrInvalidSlug = errors.New("invalid room slug")
)

type Store interface {
	// Load returns ErrNotFound when no room is stored under slug.
	Load(ctx context.Context, slug string) (*room.Room, error)
	Save(ctx context.Context, slug string, r *room.Room) error
	// Delete is a no-op for unknown slugs.
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]string, error)
}

func encode(r *room.Room) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil room")
	}
	return json.Marshal(r)
}

func encodeIndent(r *room.Room) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil room")
	}
	return json.MarshalIndent(r, "", "  ")
}

func decode(slug string, data []byte) (*room.Room, error) {
	var r room.Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", slug, err)
	}
	if r.Users == nil {
		r.Users = []room.Participant{}
	}
	if r.Name == "" {
		r.Name = room.DefaultRoomName
	}
	return &r, nil
}

func checkSlug(slug string) error {
	if !room.ValidSlug(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}
