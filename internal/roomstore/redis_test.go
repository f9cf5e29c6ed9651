package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_SaveAndLoad(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	rdc, mock := redismock.NewClientMock()
	s := NewRedisStore(rdc)

	r := sampleRoom()
	data, err := json.Marshal(r)
	req.NoError(err)

	mock.ExpectTxPipeline()
	mock.ExpectSet("room:sprint-ab12", data, 0).SetVal("OK")
	mock.ExpectSAdd("rooms:index", "sprint-ab12").SetVal(1)
	mock.ExpectTxPipelineExec()
	req.NoError(s.Save(ctx, "sprint-ab12", r))

	mock.ExpectGet("room:sprint-ab12").SetVal(string(data))
	got, err := s.Load(ctx, "sprint-ab12")
	req.NoError(err)
	req.Equal(r.Users, got.Users)
	req.Equal(r.Votes.Ballots(), got.Votes.Ballots())

	req.NoError(mock.ExpectationsWereMet())
}

func TestRedisStore_LoadMissing(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	s := NewRedisStore(rdc)

	mock.ExpectGet("room:nope-0000").RedisNil()
	_, err := s.Load(context.Background(), "nope-0000")
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("room:down-0000").SetErr(errors.New("connection refused"))
	_, err = s.Load(context.Background(), "down-0000")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteAndList(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	rdc, mock := redismock.NewClientMock()
	s := NewRedisStore(rdc)

	mock.ExpectTxPipeline()
	mock.ExpectDel("room:old-0000").SetVal(1)
	mock.ExpectSRem("rooms:index", "old-0000").SetVal(1)
	mock.ExpectTxPipelineExec()
	req.NoError(s.Delete(ctx, "old-0000"))

	mock.ExpectSMembers("rooms:index").SetVal([]string{"b-0000", "a-0000"})
	slugs, err := s.List(ctx)
	req.NoError(err)
	req.Equal([]string{"a-0000", "b-0000"}, slugs)

	req.NoError(mock.ExpectationsWereMet())
}

func TestRedisStore_RejectsBadSlug(t *testing.T) {
	rdc, _ := redismock.NewClientMock()
	err := NewRedisStore(rdc).Save(context.Background(), "a b", sampleRoom())
	require.ErrorIs(t, err, ErrInvalidSlug)
}
