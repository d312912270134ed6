// Package planner turns analyst intent into validated query plans. It holds
// the plan validator (the single whitelisting gate in front of the SQL
// builder) and the heuristic natural-language resolver.
package planner

import (
	"fmt"
	"strings"
	"time"

	"askdata/internal/catalog"
	"askdata/internal/domain"
)

// maxFilterValues bounds categorical in-lists so generated statements stay
// within the builder's length budget.
const maxFilterValues = 50

// Validator checks caller-supplied plan shapes against the semantic catalog.
// Nothing downstream re-checks catalog membership, so validation must be
// exhaustive: any ambiguity is a rejection, never a best-guess coercion.
type Validator struct {
	catalog  *catalog.Catalog
	maxLimit int
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithMaxLimit lowers the row limit ceiling below the plan-based default.
// Callers with role-based limits apply them here; the bound is still a
// rejection bound, not a silent clamp.
func WithMaxLimit(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 && n < domain.MaxLimit {
			v.maxLimit = n
		}
	}
}

// NewValidator creates a Validator bound to an immutable catalog.
func NewValidator(cat *catalog.Catalog, opts ...ValidatorOption) *Validator {
	v := &Validator{catalog: cat, maxLimit: domain.MaxLimit}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate turns a raw plan request into a validated Plan or fails with a
// typed error naming the offending field or key. Steps run in a fixed
// order: shape, key resolution, limit range, filter normalization.
func (v *Validator) Validate(req domain.PlanRequest) (*domain.Plan, error) {
	intent, err := v.resolveIntent(req)
	if err != nil {
		return nil, err
	}

	if len(req.Rows) > domain.MaxRowDimensions {
		return nil, domain.ErrValidation("at most %d row dimensions are allowed, got %d", domain.MaxRowDimensions, len(req.Rows))
	}
	if len(req.Cols) > domain.MaxColDimensions {
		return nil, domain.ErrValidation("at most %d column dimension is allowed, got %d", domain.MaxColDimensions, len(req.Cols))
	}
	if len(req.Rows)+len(req.Cols) < 1 {
		return nil, domain.ErrValidation("at least one row or column dimension is required")
	}
	if len(req.Measures) == 0 {
		return nil, domain.ErrValidation("at least one measure is required")
	}
	if intent == domain.IntentCrosstab && len(req.Cols) == 0 {
		return nil, domain.ErrValidation("crosstab intent requires a column dimension")
	}

	rows, err := v.canonicalDimensions(req.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := v.canonicalDimensions(req.Cols)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rows)+len(cols))
	for _, k := range append(append([]string{}, rows...), cols...) {
		if seen[k] {
			return nil, domain.ErrValidation("dimension %q appears more than once", k)
		}
		seen[k] = true
	}

	measures := make([]string, 0, len(req.Measures))
	for _, raw := range req.Measures {
		key := v.catalog.Canonicalize(raw)
		if _, err := v.catalog.ResolveMetric(key); err != nil {
			return nil, err
		}
		measures = append(measures, key)
	}

	limit := domain.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
		if limit < domain.MinLimit || limit > v.maxLimit {
			return nil, domain.ErrValidation("limit %d is out of range [%d, %d]", limit, domain.MinLimit, v.maxLimit)
		}
	}

	filters, err := v.normalizeFilters(req.Filters, seen)
	if err != nil {
		return nil, err
	}

	pivot := true
	if req.Pivot != nil {
		pivot = *req.Pivot
	}

	return &domain.Plan{
		Intent:   intent,
		Rows:     rows,
		Cols:     cols,
		Measures: measures,
		Filters:  filters,
		Pivot:    pivot,
		Limit:    limit,
	}, nil
}

func (v *Validator) resolveIntent(req domain.PlanRequest) (domain.Intent, error) {
	switch strings.ToLower(strings.TrimSpace(req.Intent)) {
	case string(domain.IntentAggregate):
		return domain.IntentAggregate, nil
	case string(domain.IntentCrosstab):
		return domain.IntentCrosstab, nil
	case "":
		// Infer from shape: a column dimension implies a crosstab.
		if len(req.Cols) > 0 {
			return domain.IntentCrosstab, nil
		}
		return domain.IntentAggregate, nil
	default:
		return "", domain.ErrValidation("unknown intent %q (want %q or %q)", req.Intent, domain.IntentAggregate, domain.IntentCrosstab)
	}
}

func (v *Validator) canonicalDimensions(raws []string) ([]string, error) {
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		key := v.catalog.Canonicalize(raw)
		if _, err := v.catalog.ResolveDimension(key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}

// normalizeFilters trims and bounds filter values and rejects filters on
// dimensions that are neither grouped nor whitelisted for filter-only use.
func (v *Validator) normalizeFilters(f domain.Filters, grouped map[string]bool) (domain.Filters, error) {
	out := domain.Filters{Weekend: f.Weekend}

	if f.DateFrom != nil {
		d, err := normalizeDate(*f.DateFrom)
		if err != nil {
			return out, domain.ErrValidation("date_from: %v", err)
		}
		out.DateFrom = &d
	}
	if f.DateTo != nil {
		d, err := normalizeDate(*f.DateTo)
		if err != nil {
			return out, domain.ErrValidation("date_to: %v", err)
		}
		out.DateTo = &d
	}
	if out.DateFrom != nil && out.DateTo != nil && *out.DateFrom > *out.DateTo {
		return out, domain.ErrValidation("date_from %s is after date_to %s", *out.DateFrom, *out.DateTo)
	}

	categorical := []struct {
		dim    string
		values []string
		dst    *[]string
	}{
		{"brand", f.Brands, &out.Brands},
		{"product_category", f.Categories, &out.Categories},
		{"region", f.Regions, &out.Regions},
		{"payment_method", f.PaymentMethods, &out.PaymentMethods},
	}
	for _, c := range categorical {
		if len(c.values) == 0 {
			continue
		}
		if err := v.checkFilterDimension(c.dim, grouped); err != nil {
			return out, err
		}
		vals, err := normalizeInList(c.dim, c.values)
		if err != nil {
			return out, err
		}
		*c.dst = vals
	}

	if f.Weekend != nil {
		if err := v.checkFilterDimension("weekend", grouped); err != nil {
			return out, err
		}
	}

	return out, nil
}

// checkFilterDimension enforces the filter whitelist rule: the dimension
// must be part of the grouping or independently marked filterable.
func (v *Validator) checkFilterDimension(key string, grouped map[string]bool) error {
	entry, err := v.catalog.ResolveDimension(key)
	if err != nil {
		return err
	}
	if grouped[key] || entry.Filterable {
		return nil
	}
	return domain.ErrValidation("dimension %q cannot be used as a filter", key)
}

func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return s, nil
}

func normalizeInList(dim string, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, val := range values {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	if len(out) == 0 {
		return nil, domain.ErrValidation("filter on %q has no usable values", dim)
	}
	if len(out) > maxFilterValues {
		return nil, domain.ErrValidation("filter on %q has %d values, max is %d", dim, len(out), maxFilterValues)
	}
	return out, nil
}
