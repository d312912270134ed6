package domain

// EntryType distinguishes catalog dimensions from catalog metrics.
type EntryType string

const (
	EntryDimension EntryType = "dimension"
	EntryMetric    EntryType = "metric"
)

// CatalogEntry is one whitelisted dimension or metric. Expr is a trusted,
// static SQL expression defined in the catalog file — it is never
// caller-supplied.
type CatalogEntry struct {
	Key        string    `json:"key"`
	Expr       string    `json:"-"`
	Label      string    `json:"label,omitempty"`
	Type       EntryType `json:"type"`
	Filterable bool      `json:"filterable,omitempty"`
}
