package roomstore

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	"planningpoker/internal/room"
)

const (
	redisRoomKeyPrefix = "room:"
	redisIndexKey      = "rooms:index"
)

// RedisStore keeps each room as a JSON string under "room:<slug>" and tracks
// slugs in the "rooms:index" set.
type RedisStore struct {
	rdc *redis.Client
}

func NewRedisStore(rdc *redis.Client) *RedisStore { return &RedisStore{rdc: rdc} }

func (s *RedisStore) Load(ctx context.Context, slug string) (*room.Room, error) {
	data, err := s.rdc.Get(ctx, redisRoomKeyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(slug, data)
}

func (s *RedisStore) Save(ctx context.Context, slug string, r *room.Room) error {
	if err := checkSlug(slug); err != nil {
		return err
	}
	data, err := encode(r)
	if err != nil {
		return err
	}
	_, err = s.rdc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisRoomKeyPrefix+slug, data, 0)
		pipe.SAdd(ctx, redisIndexKey, slug)
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, slug string) error {
	_, err := s.rdc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisRoomKeyPrefix+slug)
		pipe.SRem(ctx, redisIndexKey, slug)
		return nil
	})
	return err
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	slugs, err := s.rdc.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(slugs)
	return slugs, nil
}
