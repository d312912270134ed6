package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/domain"
)

func postAsk(t *testing.T, url string, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url+"/v1/ask", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestAsk_Question(t *testing.T) {
	exec := &stubExecutor{rs: &domain.ResultSet{
		Columns:  []string{"brand", "revenue"},
		Rows:     []domain.Row{{"brand": "acme", "revenue": 10.5}},
		RowCount: 1,
	}}
	srv := newTestServer(t, exec, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{"question": "revenue by brand"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, false, body["cache_hit"])
	assert.Equal(t, float64(1), body["row_count"])
	assert.Contains(t, body["sql"], "SELECT")

	plan, ok := body["plan"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "aggregate", plan["intent"])

	rows, ok := body["rows"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)
}

func TestAsk_Plan(t *testing.T) {
	exec := &stubExecutor{rs: &domain.ResultSet{
		Columns:  []string{"region", "txn_count"},
		Rows:     []domain.Row{},
		RowCount: 0,
	}}
	srv := newTestServer(t, exec, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{
		"plan": {
			"intent": "aggregate",
			"rows": ["region"],
			"measures": ["txn_count"]
		}
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["row_count"])
}

func TestAsk_NeitherQuestionNorPlan(t *testing.T) {
	srv := newTestServer(t, &stubExecutor{}, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "exactly one")
}

func TestAsk_BothQuestionAndPlan(t *testing.T) {
	srv := newTestServer(t, &stubExecutor{}, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{
		"question": "revenue by brand",
		"plan": {"intent": "aggregate", "rows": ["brand"], "measures": ["revenue"]}
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "exactly one")
}

func TestAsk_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, &stubExecutor{}, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestAsk_UnknownDimensionIs400(t *testing.T) {
	srv := newTestServer(t, &stubExecutor{}, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{
		"plan": {"intent": "aggregate", "rows": ["flavor"], "measures": ["revenue"]}
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "flavor")
	assert.Nil(t, body["plan"])
}

func TestAsk_ExecutionErrorIsGeneric500(t *testing.T) {
	exec := &stubExecutor{err: domain.ErrExecution("catalog table gold_transactions_flat is corrupt")}
	srv := newTestServer(t, exec, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{"question": "revenue by brand"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// Database internals never reach the client.
	assert.Equal(t, "query execution failed", body["error"])
	assert.NotContains(t, body["error"], "corrupt")

	// The validated plan and SQL are still echoed for diagnostics.
	assert.NotNil(t, body["plan"])
	assert.Contains(t, body["sql"], "SELECT")
}

func TestAsk_TimeoutIs504(t *testing.T) {
	exec := &stubExecutor{err: domain.ErrExecutionTimeout("query exceeded 30s timeout")}
	srv := newTestServer(t, exec, &stubAudit{})

	resp, body := postAsk(t, srv.URL, `{"question": "revenue by brand"}`)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "query timed out", body["error"])
}
