// Package catalog implements the semantic catalog: the whitelist of
// dimensions, metrics, and synonyms that the planner and SQL builder are
// allowed to reference. A Catalog is loaded once at process start and is
// immutable afterwards; resolution never touches the network or a database.
package catalog

import (
	"sort"
	"strings"

	"askdata/internal/domain"
)

// Catalog is the process-wide, read-only semantic registry. Every key that
// reaches the SQL builder must resolve through one of the lookup methods
// below; unknown keys are hard errors.
type Catalog struct {
	version    string
	table      string
	timeColumn string

	dims    map[string]domain.CatalogEntry
	metrics map[string]domain.CatalogEntry
	// synonyms maps lowercase colloquial phrases to canonical keys.
	synonyms map[string]string

	dimOrder    []string
	metricOrder []string
}

// Version returns the catalog version tag. It participates in every cache
// key so a catalog change invalidates all cached results.
func (c *Catalog) Version() string { return c.version }

// Table returns the fully qualified source table the catalog points at.
func (c *Catalog) Table() string { return c.table }

// TimeColumn returns the column date-range filters apply to.
func (c *Catalog) TimeColumn() string { return c.timeColumn }

// Canonicalize resolves a colloquial key to its canonical catalog key.
// Already-canonical keys pass through unchanged, so the function is
// idempotent. It never fails; existence is checked by the Resolve methods.
func (c *Catalog) Canonicalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := c.synonyms[key]; ok {
		return canonical
	}
	return key
}

// ResolveDimension returns the catalog entry for a canonical dimension key.
func (c *Catalog) ResolveDimension(key string) (domain.CatalogEntry, error) {
	if e, ok := c.dims[key]; ok {
		return e, nil
	}
	return domain.CatalogEntry{}, domain.ErrUnknownDimension(key)
}

// ResolveMetric returns the catalog entry for a canonical metric key.
func (c *Catalog) ResolveMetric(key string) (domain.CatalogEntry, error) {
	if e, ok := c.metrics[key]; ok {
		return e, nil
	}
	return domain.CatalogEntry{}, domain.ErrUnknownMetric(key)
}

// Dimensions lists all dimension entries in definition order.
func (c *Catalog) Dimensions() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(c.dimOrder))
	for _, k := range c.dimOrder {
		out = append(out, c.dims[k])
	}
	return out
}

// Metrics lists all metric entries in definition order.
func (c *Catalog) Metrics() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(c.metricOrder))
	for _, k := range c.metricOrder {
		out = append(out, c.metrics[k])
	}
	return out
}

// SynonymsFor lists the colloquial phrases that canonicalize to key,
// sorted for determinism.
func (c *Catalog) SynonymsFor(key string) []string {
	var out []string
	for phrase, target := range c.synonyms {
		if target == key {
			out = append(out, phrase)
		}
	}
	sort.Strings(out)
	return out
}

// HasDimension reports whether key is a known canonical dimension.
func (c *Catalog) HasDimension(key string) bool {
	_, ok := c.dims[key]
	return ok
}

// HasMetric reports whether key is a known canonical metric.
func (c *Catalog) HasMetric(key string) bool {
	_, ok := c.metrics[key]
	return ok
}
