package executor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/db"
	"askdata/internal/domain"
)

func newTestExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	writeDB, _ := db.OpenTestMetastore(t)
	logger := slog.New(slog.DiscardHandler)
	return New(writeDB, logger, opts...)
}

func TestExecutor_Query(t *testing.T) {
	exec := newTestExecutor(t)

	rs, err := exec.Query(context.Background(),
		"SELECT ? AS brand, ? AS revenue", []interface{}{"acme", 42.5})
	require.NoError(t, err)

	assert.Equal(t, []string{"brand", "revenue"}, rs.Columns)
	require.Equal(t, 1, rs.RowCount)
	assert.Equal(t, "acme", rs.Rows[0]["brand"])
	assert.Equal(t, 42.5, rs.Rows[0]["revenue"])
}

func TestExecutor_EmptyResult(t *testing.T) {
	exec := newTestExecutor(t)

	rs, err := exec.Query(context.Background(),
		"SELECT id FROM audit_log WHERE 1 = 0", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, rs.RowCount)
	assert.NotNil(t, rs.Rows)
	assert.Empty(t, rs.Rows)
}

func TestExecutor_ByteValuesCopiedToStrings(t *testing.T) {
	exec := newTestExecutor(t)

	rs, err := exec.Query(context.Background(),
		"SELECT CAST('hello' AS BLOB) AS v", nil)
	require.NoError(t, err)
	require.Equal(t, 1, rs.RowCount)
	assert.Equal(t, "hello", rs.Rows[0]["v"])
}

func TestExecutor_SQLErrorWrapped(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Query(context.Background(), "SELECT * FROM no_such_table", nil)
	require.Error(t, err)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.False(t, execErr.Timeout)
}

func TestExecutor_Timeout(t *testing.T) {
	exec := newTestExecutor(t, WithTimeout(time.Nanosecond))

	_, err := exec.Query(context.Background(), "SELECT 1", nil)
	require.Error(t, err)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.Timeout)
}
