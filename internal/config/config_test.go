package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, uint16(3000), cfg.HttpServerPort)
	assert.Equal(t, StoreFile, cfg.RoomStore)
	assert.Equal(t, "data/rooms", cfg.RoomsDir)
	assert.Equal(t, 5*time.Minute, cfg.EmptyRoomTTL)
	assert.Equal(t, time.Minute, cfg.ReaperInterval)
	assert.Equal(t, 30*time.Second, cfg.OwnerAbsenceTTL)
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "8085")
	t.Setenv("ROOM_STORE", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("EMPTY_ROOM_TTL", "90s")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, uint16(8085), cfg.HttpServerPort)
	assert.Equal(t, StoreRedis, cfg.RoomStore)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 90*time.Second, cfg.EmptyRoomTTL)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"ROOM_STORE":        "mongo",
		"HTTP_SERVER_PORT":  "0",
		"REAPER_INTERVAL":   "0s",
		"OWNER_ABSENCE_TTL": "soon",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
