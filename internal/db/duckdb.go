package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// OpenDuckDB opens the analytics database in read-only mode. The query
// layer never writes to this plane; opening read-only enforces that at the
// engine level and lets other processes keep loading data into the file.
func OpenDuckDB(path string, maxOpen int) (*sql.DB, error) {
	params := url.Values{}
	params.Set("access_mode", "read_only")

	pool, err := sql.Open("duckdb", path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if maxOpen <= 0 {
		maxOpen = 4
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxOpen)
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return pool, nil
}
