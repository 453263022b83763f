package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	settings *attendance.Settings
	gets     int
}

func (s *countingStore) Get(ctx context.Context) (attendance.Settings, error) {
	s.gets++
	if s.settings == nil {
		return attendance.Settings{}, attendance.ErrSettingsNotFound
	}
	return *s.settings, nil
}

func (s *countingStore) Upsert(ctx context.Context, st attendance.Settings) (attendance.Settings, error) {
	st.ID = "00000000-0000-4000-8000-000000000001"
	s.settings = &st
	return st, nil
}

func TestSettingsCache_FallsBackWhenRedisIsDown(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	defaults := attendance.DefaultSettings()
	store := &countingStore{settings: &defaults}
	cache := NewSettingsCache(store, client, time.Minute)

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "08:00", got.CheckInStart)
	assert.Equal(t, 1, store.gets)
}

func TestSettingsCache_NotFoundPassesThrough(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	cache := NewSettingsCache(&countingStore{}, client, time.Minute)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, attendance.ErrSettingsNotFound)
}

func TestSettingsCache_ReadThrough(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewClient(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Del(ctx, settingsKey).Err())

	store := &countingStore{}
	cache := NewSettingsCache(store, client, time.Minute)

	s := attendance.DefaultSettings()
	s.CheckOutStart = "16:00"
	_, err = cache.Upsert(ctx, s)
	require.NoError(t, err)

	for range 3 {
		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "16:00", got.CheckOutStart)
		assert.True(t, got.WorkHours.Equal(s.WorkHours))
	}
	assert.Zero(t, store.gets, "reads are served from redis after an upsert")
}
