package domain

import (
	"context"
	"time"
)

// Row is one result record keyed by output column alias.
type Row = map[string]interface{}

// ResultSet holds the structured output of an executed plan.
type ResultSet struct {
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	RowCount int      `json:"row_count"`
}

// RowExecutor is the read-only SQL execution boundary. The only
// implementation queries a database handle opened in read-only mode;
// no Exec path exists, so DDL/DML cannot reach the database through it.
type RowExecutor interface {
	Query(ctx context.Context, sqlText string, params []interface{}) (*ResultSet, error)
}

// ResultCache is a shared TTL cache for executed result sets.
// Implementations must be best-effort: a backend failure degrades to
// "always execute", never to a hard error for the caller.
type ResultCache interface {
	Get(ctx context.Context, key string) (*ResultSet, bool)
	Put(ctx context.Context, key string, rs *ResultSet, ttl time.Duration)
	PurgeExpired(ctx context.Context) (int64, error)
}

// AuditRepository persists audit records for engine requests.
type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]AuditRecord, int64, error)
}

// SimilarityScorer scores a question against candidate texts. The vector
// similarity subsystem is external; this interface treats it as an opaque
// scoring function. Scores must be in [0, 1], one per candidate.
type SimilarityScorer interface {
	Score(ctx context.Context, question string, candidates []string) ([]float64, error)
}
