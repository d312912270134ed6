package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"askdata/internal/cache"
)

// CacheRepo is the SQLite storage behind the result cache. Expiry is
// enforced on read, so a crashed janitor never serves stale entries.
type CacheRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
	now     func() time.Time
}

// NewCacheRepo creates a CacheRepo over a metastore pool pair.
func NewCacheRepo(writeDB, readDB *sql.DB) *CacheRepo {
	return &CacheRepo{writeDB: writeDB, readDB: readDB, now: time.Now}
}

var _ cache.Backend = (*CacheRepo)(nil)

// Get returns the payload stored under key if it has not expired.
func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT payload FROM cache_entries WHERE cache_key = ? AND expires_at > ?`

	var payload []byte
	err := r.readDB.QueryRowContext(ctx, q, key, r.now().Unix()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under key, replacing any existing entry.
func (r *CacheRepo) Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error {
	const q = `
		INSERT INTO cache_entries (cache_key, payload, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload    = excluded.payload,
			expires_at = excluded.expires_at`

	if _, err := r.writeDB.ExecContext(ctx, q, key, payload, expiresAt.Unix()); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes entries expired as of now and reports how many.
func (r *CacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
