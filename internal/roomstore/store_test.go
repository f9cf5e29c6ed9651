package roomstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"planningpoker/internal/room"
)

func sampleRoom() *room.Room {
	r := room.New("Sprint Review", true, "42")
	r.UpsertUser("s1", "Ana", "🐱")
	r.UpsertUser("s2", "Bo", "")
	r.AssignOwnerIfNone("s1")
	r.SetVote("s2", "8")
	r.SetVote("s1", "?")
	return r
}

// exerciseStore runs the Store contract against one backend.
func exerciseStore(t *testing.T, s Store) {
	req := require.New(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing-0000")
	req.ErrorIs(err, ErrNotFound)

	r := sampleRoom()
	req.NoError(s.Save(ctx, "sprint-review-ab12", r))
	req.NoError(s.Save(ctx, "another-zz99", room.New("Another", false, "")))

	got, err := s.Load(ctx, "sprint-review-ab12")
	req.NoError(err)
	req.Equal(r.Name, got.Name)
	req.Equal("42", *got.AccessCode)
	req.Equal(r.Users, got.Users)
	req.Equal(r.Votes.Ballots(), got.Votes.Ballots())
	req.Equal("s1", got.OwnerSessionID)

	// last writer wins
	got.RemoveUser("s2", time.Now())
	req.NoError(s.Save(ctx, "sprint-review-ab12", got))
	again, err := s.Load(ctx, "sprint-review-ab12")
	req.NoError(err)
	req.Len(again.Users, 1)

	slugs, err := s.List(ctx)
	req.NoError(err)
	req.ElementsMatch([]string{"sprint-review-ab12", "another-zz99"}, slugs)

	req.NoError(s.Delete(ctx, "sprint-review-ab12"))
	req.NoError(s.Delete(ctx, "sprint-review-ab12"))
	_, err = s.Load(ctx, "sprint-review-ab12")
	req.ErrorIs(err, ErrNotFound)

	req.ErrorIs(s.Save(ctx, "../escape", r), ErrInvalidSlug)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesRooms(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewMemoryStore()
	r := sampleRoom()
	req.NoError(s.Save(ctx, "x-0001", r))

	r.UpsertUser("s3", "Cid", "")
	got, err := s.Load(ctx, "x-0001")
	req.NoError(err)
	req.Len(got.Users, 2)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "rooms"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_LegacyFileAndStrayEntries(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	req.NoError(err)

	legacy := `{"name":"Sala","private":false,"accessCode":null,"users":null,"votes":{},
	  "stats":{"totalVotes":0,"uniqueValues":0,"mostFrequent":null},
	  "revealed":false,"ownerSessionId":null,"emptiedAt":"garbage","ownerLeftAt":null}`
	req.NoError(os.WriteFile(filepath.Join(dir, "sala-1a2b.json"), []byte(legacy), 0o644))
	req.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	req.NoError(os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	slugs, err := s.List(context.Background())
	req.NoError(err)
	req.Equal([]string{"sala-1a2b"}, slugs)

	r, err := s.Load(context.Background(), "sala-1a2b")
	req.NoError(err)
	req.NotNil(r.Users)
	req.NotNil(r.EmptiedAt)
	_, ok := r.EmptiedAt.Time()
	req.False(ok)

	_, err = s.Load(context.Background(), "../sala-1a2b")
	req.ErrorIs(err, ErrNotFound)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-0000.json"), []byte("{"), 0o644))

	_, err = s.Load(context.Background(), "bad-0000")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	exerciseStore(t, NewBadgerStore(db))
}

func TestOpenBadger_OnDisk(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	db, err := OpenBadger(dir)
	req.NoError(err)
	s := NewBadgerStore(db)
	req.NoError(s.Save(context.Background(), "persist-0001", sampleRoom()))
	req.NoError(db.Close())

	db, err = OpenBadger(dir)
	req.NoError(err)
	defer db.Close()
	got, err := NewBadgerStore(db).Load(context.Background(), "persist-0001")
	req.NoError(err)
	req.Equal("Sprint Review", got.Name)
}
