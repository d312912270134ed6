// Package db provides connectivity and migration support for the engine's
// two data planes: the read-only DuckDB analytics database and the SQLite
// metastore that holds the audit log and the result cache.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite DSN parameters for production hardening.
const (
	busyTimeoutMs = "5000"
	synchronous   = "NORMAL"
	journalMode   = "WAL"
)

// OpenMetastore opens a write/read *sql.DB pool pair for the SQLite
// metastore file. The write pool is capped at a single connection with
// _txlock=immediate; the read pool holds readMaxOpen connections (0 defaults
// to 4). Both pools use WAL journaling, busy_timeout=5000ms and
// synchronous=NORMAL. The split is the safe way to drive a single SQLite
// file from a concurrent HTTP server.
func OpenMetastore(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = openSQLite(path, true, 1)
	if err != nil {
		return nil, nil, err
	}

	if readMaxOpen <= 0 {
		readMaxOpen = 4
	}
	readDB, err = openSQLite(path, false, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}

func openSQLite(path string, write bool, maxOpen int) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", journalMode)
	params.Set("_busy_timeout", busyTimeoutMs)
	params.Set("_synchronous", synchronous)
	params.Set("_foreign_keys", "on")
	if write {
		params.Set("_txlock", "immediate")
	}

	pool, err := sql.Open("sqlite3", path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open metastore: %w", err)
	}

	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxOpen)
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping metastore: %w", err)
	}

	return pool, nil
}
