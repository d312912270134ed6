package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/domain"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load("")
	require.NoError(t, err)
	return c
}

func TestLoad_EmbeddedDefinition(t *testing.T) {
	c := loadDefault(t)

	assert.NotEmpty(t, c.Version())
	assert.Equal(t, "gold_transactions_flat", c.Table())
	assert.Equal(t, "transaction_date", c.TimeColumn())
	assert.NotEmpty(t, c.Dimensions())
	assert.NotEmpty(t, c.Metrics())
}

func TestResolveDimension(t *testing.T) {
	c := loadDefault(t)

	e, err := c.ResolveDimension("brand")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryDimension, e.Type)
	assert.Equal(t, "brand", e.Expr)
	assert.True(t, e.Filterable)

	_, err = c.ResolveDimension("unicorn_segment")
	require.Error(t, err)
	var unknown *domain.UnknownDimensionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unicorn_segment", unknown.Key)
}

func TestResolveMetric(t *testing.T) {
	c := loadDefault(t)

	e, err := c.ResolveMetric("revenue")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryMetric, e.Type)
	assert.Equal(t, "SUM(total_price)", e.Expr)

	_, err = c.ResolveMetric("brand") // dimension, not metric
	var unknown *domain.UnknownMetricError
	require.ErrorAs(t, err, &unknown)
}

func TestCanonicalize(t *testing.T) {
	c := loadDefault(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"sales", "revenue"},
		{"Sales", "revenue"},
		{"  turnover ", "revenue"},
		{"time of day", "daypart"},
		{"payment type", "payment_method"},
		{"revenue", "revenue"},     // already canonical
		{"daypart", "daypart"},     // already canonical
		{"unmapped_key", "unmapped_key"}, // identity fallback
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Canonicalize(tt.raw), "raw=%q", tt.raw)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	c := loadDefault(t)

	raws := []string{"sales", "time of day", "brand", "txn_count", "nonsense"}
	for _, raw := range raws {
		once := c.Canonicalize(raw)
		assert.Equal(t, once, c.Canonicalize(once), "raw=%q", raw)
	}
}

func TestParse_RejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing version", "table: t\ntime_column: ts\ndimensions: [{key: a, expr: a}]\nmetrics: [{key: m, expr: 'COUNT(*)'}]"},
		{"missing table", "version: v1\ntime_column: ts\ndimensions: [{key: a, expr: a}]\nmetrics: [{key: m, expr: 'COUNT(*)'}]"},
		{"empty expr", "version: v1\ntable: t\ntime_column: ts\ndimensions: [{key: a, expr: ''}]\nmetrics: [{key: m, expr: 'COUNT(*)'}]"},
		{"duplicate key", "version: v1\ntable: t\ntime_column: ts\ndimensions: [{key: a, expr: a}, {key: a, expr: b}]\nmetrics: [{key: m, expr: 'COUNT(*)'}]"},
		{"dangling synonym", "version: v1\ntable: t\ntime_column: ts\ndimensions: [{key: a, expr: a}]\nmetrics: [{key: m, expr: 'COUNT(*)'}]\nsynonyms: {x: nope}"},
		{"no metrics", "version: v1\ntable: t\ntime_column: ts\ndimensions: [{key: a, expr: a}]\nmetrics: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
