package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"askdata/internal/domain"
)

// Backend is the raw key-value storage under the cache. Implemented by
// repository.CacheRepo on the SQLite metastore.
type Backend interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Store implements domain.ResultCache on top of a Backend. Every backend
// failure degrades to a miss (reads) or a dropped write — the cache must
// never turn into a hard error for the request path.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore creates a Store.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	return &Store{backend: backend, logger: logger, now: time.Now}
}

var _ domain.ResultCache = (*Store)(nil)

// Get returns the cached result set for key, or a miss.
func (s *Store) Get(ctx context.Context, key string) (*domain.ResultSet, bool) {
	payload, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache get failed, treating as miss", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var rs domain.ResultSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		s.logger.Warn("cache entry undecodable, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &rs, true
}

// Put stores a result set under key for the given TTL.
func (s *Store) Put(ctx context.Context, key string, rs *domain.ResultSet, ttl time.Duration) {
	payload, err := json.Marshal(rs)
	if err != nil {
		s.logger.Warn("cache encode failed, dropping write", "key", key, "error", err)
		return
	}
	if err := s.backend.Put(ctx, key, payload, s.now().Add(ttl)); err != nil {
		s.logger.Warn("cache put failed, dropping write", "key", key, "error", err)
	}
}

// PurgeExpired removes expired entries and returns how many were deleted.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	return s.backend.DeleteExpired(ctx, s.now())
}
