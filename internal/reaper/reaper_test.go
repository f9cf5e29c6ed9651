package reaper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planningpoker/internal/room"
	"planningpoker/internal/roomstore"
	"planningpoker/internal/services/rooms"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context) (rooms.SweepResult, error) {
	s.calls.Add(1)
	return rooms.SweepResult{Scanned: 1}, s.err
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	s := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, s, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}

func TestRun_KeepsGoingAfterErrors(t *testing.T) {
	s := &countingSweeper{err: errors.New("store down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Run(ctx, s, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestRun_DeletesExpiredRooms(t *testing.T) {
	store := roomstore.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stale := room.New("stale", false, "")
	stale.EmptiedAt = room.At(time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, "stale-0000", stale))
	require.NoError(t, store.Save(ctx, "fresh-0000", room.New("fresh", false, "")))

	svc := rooms.NewRoomService(store, nil, rooms.Settings{EmptyRoomTTL: time.Minute})
	go Run(ctx, svc, time.Hour)

	assert.Eventually(t, func() bool {
		_, err := store.Load(ctx, "stale-0000")
		return errors.Is(err, roomstore.ErrNotFound)
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		r, err := store.Load(ctx, "fresh-0000")
		return err == nil && r.EmptiedAt != nil
	}, time.Second, 5*time.Millisecond)
}
