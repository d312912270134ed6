package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/db"
)

func TestCacheRepo_PutGet(t *testing.T) {
	writeDB, readDB := db.OpenTestMetastore(t)
	repo := NewCacheRepo(writeDB, readDB)
	ctx := context.Background()

	payload := []byte(`{"columns":["brand"],"rows":[],"row_count":0}`)
	require.NoError(t, repo.Put(ctx, "k1", payload, time.Now().Add(time.Minute)))

	got, ok, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestCacheRepo_MissingKey(t *testing.T) {
	writeDB, readDB := db.OpenTestMetastore(t)
	repo := NewCacheRepo(writeDB, readDB)

	_, ok, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_ExpiredEntryNotServed(t *testing.T) {
	writeDB, readDB := db.OpenTestMetastore(t)
	repo := NewCacheRepo(writeDB, readDB)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k1", []byte("v"), time.Now().Add(time.Minute)))

	// Move the clock past the expiry instead of sleeping.
	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, ok, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_PutReplaces(t *testing.T) {
	writeDB, readDB := db.OpenTestMetastore(t)
	repo := NewCacheRepo(writeDB, readDB)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k1", []byte("old"), time.Now().Add(time.Minute)))
	require.NoError(t, repo.Put(ctx, "k1", []byte("new"), time.Now().Add(time.Minute)))

	got, ok, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestCacheRepo_DeleteExpired(t *testing.T) {
	writeDB, readDB := db.OpenTestMetastore(t)
	repo := NewCacheRepo(writeDB, readDB)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Put(ctx, "stale1", []byte("v"), now.Add(-time.Minute)))
	require.NoError(t, repo.Put(ctx, "stale2", []byte("v"), now.Add(-time.Hour)))
	require.NoError(t, repo.Put(ctx, "fresh", []byte("v"), now.Add(time.Hour)))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, ok, err := repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}
