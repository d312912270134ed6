// Package executor runs generated statements against the analytics
// database and shapes the raw rows into result sets.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"askdata/internal/domain"
)

// DefaultTimeout bounds a single analytic query.
const DefaultTimeout = 30 * time.Second

// Executor implements domain.RowExecutor over a *sql.DB. The handle must be
// opened in read-only mode; the executor itself only ever calls QueryContext.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout overrides the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an Executor over a read-only database handle.
func New(db *sql.DB, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		timeout: DefaultTimeout,
		logger:  logger.With("component", "executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ domain.RowExecutor = (*Executor)(nil)

// Query runs sqlText with the given parameters and returns all rows.
// Deadline overruns surface as a timeout-flagged execution error.
func (e *Executor) Query(ctx context.Context, sqlText string, params []interface{}) (*domain.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, e.classify(ctx, err)
	}
	defer rows.Close()

	rs, err := scanRows(rows)
	if err != nil {
		return nil, e.classify(ctx, err)
	}

	e.logger.Debug("query executed",
		"duration_ms", time.Since(start).Milliseconds(),
		"row_count", rs.RowCount)
	return rs, nil
}

func (e *Executor) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrExecutionTimeout("query exceeded %s timeout", e.timeout)
	}
	return domain.ErrExecution("query failed: %v", err)
}

// scanRows converts a sql.Rows cursor into a ResultSet. Values arrive as
// driver-native types; []byte values are copied to strings because the
// driver may reuse the backing buffer between scans.
func scanRows(rows *sql.Rows) (*domain.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &domain.ResultSet{Columns: cols, Rows: []domain.Row{}}
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(domain.Row, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rs.RowCount = len(rs.Rows)
	return rs, nil
}
