package sqlbuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/catalog"
	"askdata/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load("")
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuild_SimpleAggregate(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"brand"},
		Measures: []string{"revenue"},
		Limit:    5000,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT brand AS brand, SUM(total_price) AS revenue FROM gold_transactions_flat GROUP BY 1 ORDER BY 1 LIMIT ?",
		stmt.SQL)
	assert.Equal(t, []interface{}{5000}, stmt.Params)
}

func TestBuild_TwoRowDimensions(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"brand", "weekend"},
		Measures: []string{"revenue", "txn_count"},
		Limit:    100,
	})
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "GROUP BY 1, 2")
	assert.Contains(t, stmt.SQL, "ORDER BY 1, 2")
	assert.Contains(t, stmt.SQL, "COUNT(*) AS txn_count")
	assert.NotContains(t, stmt.SQL, "WHERE")
}

func TestBuild_FiltersInFixedOrder(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"daypart"},
		Measures: []string{"txn_count"},
		Filters: domain.Filters{
			DateFrom:       strPtr("2026-01-01"),
			DateTo:         strPtr("2026-01-31"),
			Brands:         []string{"Coca-Cola", "Nestle"},
			PaymentMethods: []string{"gcash"},
			Weekend:        boolPtr(true),
		},
		Limit: 5000,
	})
	require.NoError(t, err)

	wherePos := strings.Index(stmt.SQL, "WHERE")
	require.Greater(t, wherePos, 0)
	clause := stmt.SQL[wherePos:]

	// Conditions appear in the fixed field order, values only as placeholders.
	dateFrom := strings.Index(clause, "transaction_date >= ?")
	dateTo := strings.Index(clause, "transaction_date <= ?")
	brands := strings.Index(clause, "brand IN (?, ?)")
	payment := strings.Index(clause, "payment_method IN (?)")
	weekend := strings.Index(clause, "(dayofweek(transaction_date) IN (0, 6)) = ?")
	require.True(t, dateFrom >= 0 && dateTo > dateFrom && brands > dateTo && payment > brands && weekend > payment,
		"clause=%q", clause)

	assert.Equal(t, []interface{}{"2026-01-01", "2026-01-31", "Coca-Cola", "Nestle", "gcash", true, 5000}, stmt.Params)
}

func TestBuild_NoRawInterpolation(t *testing.T) {
	b := NewBuilder(testCatalog(t))
	hostile := `'; DROP TABLE gold_transactions_flat; --`

	clean, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"brand"},
		Measures: []string{"revenue"},
		Filters:  domain.Filters{Brands: []string{"Coca-Cola"}},
		Limit:    5000,
	})
	require.NoError(t, err)

	dirty, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"brand"},
		Measures: []string{"revenue"},
		Filters:  domain.Filters{Brands: []string{hostile}},
		Limit:    5000,
	})
	require.NoError(t, err)

	// Same value count, same SQL shape: the hostile value changed nothing
	// in the text and rides only in the parameter list.
	assert.Equal(t, clean.SQL, dirty.SQL)
	assert.NotContains(t, dirty.SQL, "DROP TABLE")
	assert.Contains(t, dirty.Params, hostile)
}

func TestBuild_PivotWrapsAggregate(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentCrosstab,
		Rows:     []string{"daypart"},
		Cols:     []string{"product_category"},
		Measures: []string{"txn_count"},
		Pivot:    true,
		Limit:    5000,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stmt.SQL, "WITH base AS (SELECT "), "sql=%q", stmt.SQL)
	assert.Contains(t, stmt.SQL, "json_group_object(product_category, txn_count) AS txn_count")
	// Inner query groups both dimensions, outer groups only the row dimension.
	assert.Contains(t, stmt.SQL, "GROUP BY 1, 2)")
	assert.Contains(t, stmt.SQL, "FROM base GROUP BY 1 ORDER BY 1 LIMIT ?")
}

func TestBuild_PivotUsesFirstMeasureOnly(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentCrosstab,
		Rows:     []string{"brand", "region"},
		Cols:     []string{"payment_method"},
		Measures: []string{"revenue", "txn_count"},
		Pivot:    true,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "json_group_object(payment_method, revenue)")
	assert.NotContains(t, stmt.SQL, "txn_count")
	// Two row dimensions survive into the outer select.
	assert.Contains(t, stmt.SQL, ") SELECT brand, region, json_group_object")
	assert.Contains(t, stmt.SQL, "FROM base GROUP BY 1, 2")
}

func TestBuild_PivotFalseStaysLong(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentCrosstab,
		Rows:     []string{"daypart"},
		Cols:     []string{"product_category"},
		Measures: []string{"txn_count"},
		Pivot:    false,
		Limit:    5000,
	})
	require.NoError(t, err)

	assert.NotContains(t, stmt.SQL, "json_group_object")
	assert.Contains(t, stmt.SQL, "GROUP BY 1, 2")
}

func TestBuild_ColOnlyPlanStaysLong(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	// A pivot needs at least one row dimension; col-only plans fall back
	// to long format.
	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentCrosstab,
		Cols:     []string{"product_category"},
		Measures: []string{"revenue"},
		Pivot:    true,
		Limit:    5000,
	})
	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL, "json_group_object")
}

func TestBuild_LimitIsParameterized(t *testing.T) {
	b := NewBuilder(testCatalog(t))

	stmt, err := b.Build(&domain.Plan{
		Intent:   domain.IntentAggregate,
		Rows:     []string{"brand"},
		Measures: []string{"revenue"},
		Limit:    42,
	})
	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL, "42")
	assert.Equal(t, 42, stmt.Params[len(stmt.Params)-1])
}
