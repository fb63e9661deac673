package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-rating-engine/internal/common/database"
	"review-rating-engine/internal/common/logger"
)

func newMockedStore(t *testing.T) (*RedisStore, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(&database.RedisClient{Client: client}, logger.NewTestLogger(t))
	return store, mock
}

func TestRedisStore_GetErrorIsMiss(t *testing.T) {
	store, mock := newMockedStore(t)
	mock.ExpectGet("analysis:broken").SetErr(errors.New("connection reset by peer"))

	_, ok := store.Get(context.Background(), "analysis:broken")

	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutErrorIsSwallowed(t *testing.T) {
	store, mock := newMockedStore(t)
	mock.ExpectSet("analysis:k1", "payload", time.Minute).SetErr(errors.New("READONLY replica"))

	// Must not panic or surface the error; the entry is simply dropped.
	store.Put(context.Background(), "analysis:k1", "payload", time.Minute)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutUsesGivenTTL(t *testing.T) {
	store, mock := newMockedStore(t)
	mock.ExpectSet("analysis:k2", "payload", 30*time.Second).SetVal("OK")
	mock.ExpectGet("analysis:k2").SetVal("payload")

	store.Put(context.Background(), "analysis:k2", "payload", 30*time.Second)
	value, ok := store.Get(context.Background(), "analysis:k2")

	assert.True(t, ok)
	assert.Equal(t, "payload", value)
	require.NoError(t, mock.ExpectationsWereMet())
}
