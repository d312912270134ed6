package cache

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/domain"
)

type memBackend struct {
	entries map[string]memEntry
	failing bool
}

type memEntry struct {
	payload   []byte
	expiresAt time.Time
}

func newMemBackend() *memBackend {
	return &memBackend{entries: map[string]memEntry{}}
}

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if b.failing {
		return nil, false, errors.New("backend down")
	}
	e, ok := b.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (b *memBackend) Put(_ context.Context, key string, payload []byte, expiresAt time.Time) error {
	if b.failing {
		return errors.New("backend down")
	}
	b.entries[key] = memEntry{payload: payload, expiresAt: expiresAt}
	return nil
}

func (b *memBackend) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, e := range b.entries {
		if !now.Before(e.expiresAt) {
			delete(b.entries, k)
			n++
		}
	}
	return n, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sampleResult() *domain.ResultSet {
	return &domain.ResultSet{
		Columns:  []string{"brand", "revenue"},
		Rows:     []domain.Row{{"brand": "Coca-Cola", "revenue": 123.45}},
		RowCount: 1,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(newMemBackend(), discardLogger())
	ctx := context.Background()

	_, ok := s.Get(ctx, "k1")
	assert.False(t, ok)

	s.Put(ctx, "k1", sampleResult(), time.Minute)

	got, ok := s.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, 1, got.RowCount)
	assert.Equal(t, "Coca-Cola", got.Rows[0]["brand"])
}

func TestStore_ExpiredEntryIsMiss(t *testing.T) {
	b := newMemBackend()
	s := NewStore(b, discardLogger())
	ctx := context.Background()

	s.Put(ctx, "k1", sampleResult(), -time.Second)
	_, ok := s.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestStore_BackendFailureDegradesToMiss(t *testing.T) {
	b := newMemBackend()
	s := NewStore(b, discardLogger())
	ctx := context.Background()

	b.failing = true
	_, ok := s.Get(ctx, "k1")
	assert.False(t, ok)

	// Put must not panic or error out either.
	s.Put(ctx, "k1", sampleResult(), time.Minute)
}

func TestStore_CorruptEntryIsMiss(t *testing.T) {
	b := newMemBackend()
	s := NewStore(b, discardLogger())
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "k1", []byte("{not json"), time.Now().Add(time.Minute)))
	_, ok := s.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestStore_PurgeExpired(t *testing.T) {
	b := newMemBackend()
	s := NewStore(b, discardLogger())
	ctx := context.Background()

	s.Put(ctx, "live", sampleResult(), time.Hour)
	s.Put(ctx, "dead", sampleResult(), -time.Hour)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok := s.Get(ctx, "live")
	assert.True(t, ok)
}
