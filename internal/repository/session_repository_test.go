package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"training_portal/internal/model"
	"training_portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	s := &model.Session{
		ID:        "abc",
		Token:     "tok",
		User:      model.User{ID: 1, Username: "ana", Role: model.Student},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, model.Student, got.User.Role)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreDropsExpired(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.mu.RLock()
	_, kept := store.sessions["old"]
	store.mu.RUnlock()
	assert.False(t, kept)
}

type failingDeleter struct{ calls int }

func (f *failingDeleter) Delete(ctx context.Context, id string) error {
	f.calls++
	return errors.New("connection reset")
}

func TestDropExpiredLogsDeleteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	store := &failingDeleter{}
	dropExpired(context.Background(), store, "stale")

	assert.Equal(t, 1, store.calls)
	entries := logs.FilterMessage("Failed to delete expired session").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}
