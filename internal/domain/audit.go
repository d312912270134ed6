package domain

import "time"

// AuditRecord is a single append-only entry in the query audit log.
// Exactly one record is written per engine request, on every code path.
type AuditRecord struct {
	ID            string
	Question      *string
	PlanJSON      string
	SQLText       *string
	DurationMs    int64
	RowCount      int64
	CacheHit      bool
	ErrorMessage  *string
	EngineVersion string
	CreatedAt     time.Time
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	OnlyErrors bool
	Page       PageRequest
}
