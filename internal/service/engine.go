// Package service contains the query engine that orchestrates a request
// from question or plan through validation, SQL generation, caching,
// execution and auditing.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"askdata/internal/cache"
	"askdata/internal/catalog"
	"askdata/internal/domain"
	"askdata/internal/planner"
	"askdata/internal/sqlbuilder"
)

// Version tags audit records so old entries stay interpretable after
// engine behavior changes.
const Version = "askdata/1"

// Result is the full outcome of one engine request.
type Result struct {
	Plan       *domain.Plan      `json:"plan"`
	SQL        string            `json:"sql"`
	ResultSet  *domain.ResultSet `json:"-"`
	CacheHit   bool              `json:"cache_hit"`
	DurationMs int64             `json:"duration_ms"`
}

// Engine turns questions and plans into executed, audited result sets.
type Engine struct {
	catalog   *catalog.Catalog
	resolver  *planner.Resolver
	validator *planner.Validator
	builder   *sqlbuilder.Builder
	executor  domain.RowExecutor
	cache     domain.ResultCache
	audit     domain.AuditRepository
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheTTL overrides the result cache TTL.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.ttl = d
		}
	}
}

// NewEngine wires the engine from its collaborators.
func NewEngine(
	cat *catalog.Catalog,
	resolver *planner.Resolver,
	validator *planner.Validator,
	builder *sqlbuilder.Builder,
	executor domain.RowExecutor,
	resultCache domain.ResultCache,
	audit domain.AuditRepository,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		catalog:   cat,
		resolver:  resolver,
		validator: validator,
		builder:   builder,
		executor:  executor,
		cache:     resultCache,
		audit:     audit,
		ttl:       cache.DefaultTTL * time.Second,
		logger:    logger.With("component", "engine"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask resolves a natural-language question into a plan and runs it.
func (e *Engine) Ask(ctx context.Context, question string) (*Result, error) {
	req := e.resolver.Parse(ctx, question)
	return e.run(ctx, &question, req)
}

// Run validates and executes a caller-supplied plan.
func (e *Engine) Run(ctx context.Context, req domain.PlanRequest) (*Result, error) {
	return e.run(ctx, nil, req)
}

// run drives one request through the pipeline. On failure the returned
// result is still non-nil and carries whatever stages completed, so callers
// can echo the validated plan and generated SQL back with the error.
func (e *Engine) run(ctx context.Context, question *string, req domain.PlanRequest) (res *Result, err error) {
	start := e.now()
	res = &Result{}
	rec := &domain.AuditRecord{
		ID:            uuid.NewString(),
		Question:      question,
		PlanJSON:      mustJSON(req),
		CacheHit:      false,
		EngineVersion: Version,
		CreatedAt:     start,
	}
	// One record per request, on success and on every failure path.
	defer func() {
		res.DurationMs = e.now().Sub(start).Milliseconds()
		rec.DurationMs = res.DurationMs
		if err != nil {
			msg := err.Error()
			rec.ErrorMessage = &msg
		}
		e.writeAudit(ctx, rec)
	}()

	plan, err := e.validator.Validate(req)
	if err != nil {
		return res, err
	}
	res.Plan = plan
	rec.PlanJSON = mustJSON(plan)

	stmt, err := e.builder.Build(plan)
	if err != nil {
		return res, err
	}
	res.SQL = stmt.SQL
	rec.SQLText = &stmt.SQL

	key := cache.Key(plan, stmt.Params, e.catalog.Version())
	if rs, ok := e.cache.Get(ctx, key); ok {
		res.ResultSet = rs
		res.CacheHit = true
		rec.CacheHit = true
		rec.RowCount = int64(rs.RowCount)
		return res, nil
	}

	rs, err := e.executor.Query(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return res, err
	}
	if plan.Pivot && len(plan.Cols) == 1 && len(plan.Rows) >= 1 {
		decodePivot(rs, plan.Measures[0])
	}
	res.ResultSet = rs
	rec.RowCount = int64(rs.RowCount)

	e.cache.Put(ctx, key, rs, e.ttl)

	return res, nil
}

// writeAudit is best-effort: a metastore failure is logged, never surfaced.
// The write is detached from request cancellation so that a caller timeout
// still leaves an audit trail.
func (e *Engine) writeAudit(ctx context.Context, rec *domain.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.audit.Insert(ctx, rec); err != nil {
		e.logger.Error("audit write failed", "error", err, "record_id", rec.ID)
	}
}

// decodePivot unpacks the json_group_object column produced by pivoted
// statements into a nested map, so API clients see structured cells rather
// than a JSON string.
func decodePivot(rs *domain.ResultSet, measure string) {
	for _, row := range rs.Rows {
		raw, ok := row[measure].(string)
		if !ok {
			continue
		}
		var cells map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			continue
		}
		row[measure] = cells
	}
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
