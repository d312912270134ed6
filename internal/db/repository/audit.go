// Package repository contains the SQL persistence layer for the metastore:
// the append-only audit log and the raw storage behind the result cache.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"askdata/internal/domain"
)

// AuditRepo persists audit records in the metastore. Inserts go through the
// write pool, listings through the read pool.
type AuditRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewAuditRepo creates an AuditRepo over a metastore pool pair.
func NewAuditRepo(writeDB, readDB *sql.DB) *AuditRepo {
	return &AuditRepo{writeDB: writeDB, readDB: readDB}
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

// Insert appends one audit record. Records are never updated or deleted.
func (r *AuditRepo) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	const q = `
		INSERT INTO audit_log (
			id, question, plan_json, sql_text, duration_ms, row_count,
			cache_hit, error_message, engine_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.writeDB.ExecContext(ctx, q,
		rec.ID,
		rec.Question,
		rec.PlanJSON,
		rec.SQLText,
		rec.DurationMs,
		rec.RowCount,
		rec.CacheHit,
		rec.ErrorMessage,
		rec.EngineVersion,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// List returns audit records newest first, with the total count for paging.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	where := ""
	if filter.OnlyErrors {
		where = " WHERE error_message IS NOT NULL"
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log"+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	q := `
		SELECT id, question, plan_json, sql_text, duration_ms, row_count,
		       cache_hit, error_message, engine_version, created_at
		FROM audit_log` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.readDB.QueryContext(ctx, q, filter.Page.Limit(), filter.Page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Question,
			&rec.PlanJSON,
			&rec.SQLText,
			&rec.DurationMs,
			&rec.RowCount,
			&rec.CacheHit,
			&rec.ErrorMessage,
			&rec.EngineVersion,
			&rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit records: %w", err)
	}

	return out, total, nil
}
