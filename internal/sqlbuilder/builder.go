// Package sqlbuilder compiles validated plans into parameterized SQL. It is
// the only place in the engine where SQL text is assembled, and it only ever
// composes trusted catalog expressions with positional placeholders —
// caller-supplied filter values never enter the SQL string.
package sqlbuilder

import (
	"fmt"
	"strings"

	"askdata/internal/catalog"
	"askdata/internal/domain"
)

// maxSQLLength caps generated statement size. Exceeding it surfaces as an
// explicit BuildError, never as truncated SQL.
const maxSQLLength = 8192

// Statement is an owned (SQL text, ordered parameters) pair. It is produced
// fresh per request, never mutated after construction, and consumed exactly
// once by the executor or the cache key generator.
type Statement struct {
	SQL    string
	Params []interface{}
}

// Builder compiles plans against a fixed semantic catalog.
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder creates a Builder bound to an immutable catalog.
func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{catalog: cat}
}

// Build compiles a validated plan. Resolution failures here indicate a
// catalog/builder bug (the validator already vetted every key) and are
// reported as BuildError.
func (b *Builder) Build(plan *domain.Plan) (*Statement, error) {
	dims := make([]domain.CatalogEntry, 0, len(plan.Rows)+len(plan.Cols))
	for _, key := range append(append([]string{}, plan.Rows...), plan.Cols...) {
		e, err := b.catalog.ResolveDimension(key)
		if err != nil {
			return nil, domain.ErrBuild("dimension %q passed validation but is missing from the catalog", key)
		}
		dims = append(dims, e)
	}

	measures := make([]domain.CatalogEntry, 0, len(plan.Measures))
	for _, key := range plan.Measures {
		e, err := b.catalog.ResolveMetric(key)
		if err != nil {
			return nil, domain.ErrBuild("metric %q passed validation but is missing from the catalog", key)
		}
		measures = append(measures, e)
	}

	where, params, err := b.whereClause(plan.Filters)
	if err != nil {
		return nil, err
	}

	var sqlText string
	if plan.Pivot && len(plan.Cols) == 1 && len(plan.Rows) >= 1 {
		sqlText = b.pivotQuery(dims, measures, where, len(plan.Rows))
	} else {
		sqlText = b.longQuery(dims, measures, where)
	}
	params = append(params, plan.Limit)

	if len(sqlText) > maxSQLLength {
		return nil, domain.ErrBuild("generated SQL exceeds %d bytes", maxSQLLength)
	}
	return &Statement{SQL: sqlText, Params: params}, nil
}

// longQuery builds the long-format grouped aggregation. GROUP BY and
// ORDER BY use positional column indices so the grouped expressions can
// never drift from the selected ones.
func (b *Builder) longQuery(dims, measures []domain.CatalogEntry, where string) string {
	sel := make([]string, 0, len(dims)+len(measures))
	for _, d := range dims {
		sel = append(sel, fmt.Sprintf("%s AS %s", d.Expr, d.Key))
	}
	for _, m := range measures {
		sel = append(sel, fmt.Sprintf("%s AS %s", m.Expr, m.Key))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(sel, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.catalog.Table())
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	sb.WriteString(" GROUP BY ")
	sb.WriteString(positional(1, len(dims)))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(positional(1, len(dims)))
	sb.WriteString(" LIMIT ?")
	return sb.String()
}

// pivotQuery wraps the long aggregate in a long-to-wide transform: one row
// per row-dimension combination, with the column dimension and the first
// measure folded into a single per-row map. No dynamic column lists are
// generated, so distinct column values can never change the statement shape
// or smuggle identifiers into it.
func (b *Builder) pivotQuery(dims, measures []domain.CatalogEntry, where string, rowCount int) string {
	inner := make([]string, 0, len(dims)+1)
	for _, d := range dims {
		inner = append(inner, fmt.Sprintf("%s AS %s", d.Expr, d.Key))
	}
	first := measures[0]
	inner = append(inner, fmt.Sprintf("%s AS %s", first.Expr, first.Key))

	var sb strings.Builder
	sb.WriteString("WITH base AS (SELECT ")
	sb.WriteString(strings.Join(inner, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.catalog.Table())
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	sb.WriteString(" GROUP BY ")
	sb.WriteString(positional(1, len(dims)))
	sb.WriteString(") SELECT ")
	for i := 0; i < rowCount; i++ {
		sb.WriteString(dims[i].Key)
		sb.WriteString(", ")
	}
	colKey := dims[len(dims)-1].Key
	sb.WriteString(fmt.Sprintf("json_group_object(%s, %s) AS %s", colKey, first.Key, first.Key))
	sb.WriteString(" FROM base GROUP BY ")
	sb.WriteString(positional(1, rowCount))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(positional(1, rowCount))
	sb.WriteString(" LIMIT ?")
	return sb.String()
}

// whereClause appends one placeholder condition per populated filter field,
// in a fixed field order, pushing values onto the parameter list in
// lock-step with their placeholders.
func (b *Builder) whereClause(f domain.Filters) (string, []interface{}, error) {
	var conds []string
	var params []interface{}

	if f.DateFrom != nil {
		conds = append(conds, b.catalog.TimeColumn()+" >= ?")
		params = append(params, *f.DateFrom)
	}
	if f.DateTo != nil {
		conds = append(conds, b.catalog.TimeColumn()+" <= ?")
		params = append(params, *f.DateTo)
	}

	inLists := []struct {
		dim    string
		values []string
	}{
		{"brand", f.Brands},
		{"product_category", f.Categories},
		{"region", f.Regions},
		{"payment_method", f.PaymentMethods},
	}
	for _, il := range inLists {
		if len(il.values) == 0 {
			continue
		}
		entry, err := b.catalog.ResolveDimension(il.dim)
		if err != nil {
			return "", nil, domain.ErrBuild("filter dimension %q is missing from the catalog", il.dim)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", entry.Expr, placeholders(len(il.values))))
		for _, val := range il.values {
			params = append(params, val)
		}
	}

	if f.Weekend != nil {
		entry, err := b.catalog.ResolveDimension("weekend")
		if err != nil {
			return "", nil, domain.ErrBuild("filter dimension %q is missing from the catalog", "weekend")
		}
		conds = append(conds, fmt.Sprintf("(%s) = ?", entry.Expr))
		params = append(params, *f.Weekend)
	}

	return strings.Join(conds, " AND "), params, nil
}

// positional renders "1, 2, ..., n" starting at from.
func positional(from, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprint(from+i))
	}
	return strings.Join(parts, ", ")
}

// placeholders renders "?, ?, ..." n times.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
