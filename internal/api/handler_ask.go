package api

import (
	"encoding/json"
	"net/http"

	"askdata/internal/domain"
	"askdata/internal/middleware"
	"askdata/internal/service"
)

// AskRequest is the body of POST /v1/ask. Exactly one of Question and Plan
// must be present.
type AskRequest struct {
	Question *string             `json:"question,omitempty"`
	Plan     *domain.PlanRequest `json:"plan,omitempty"`
}

// AskResponse is the success body of POST /v1/ask.
type AskResponse struct {
	Plan       *domain.Plan `json:"plan"`
	SQL        string       `json:"sql"`
	Columns    []string     `json:"columns"`
	Rows       []domain.Row `json:"rows"`
	RowCount   int          `json:"row_count"`
	CacheHit   bool         `json:"cache_hit"`
	DurationMs int64        `json:"duration_ms"`
}

// AskErrorResponse is the failure body of POST /v1/ask. Plan and SQL echo
// back whatever pipeline stages completed before the failure.
type AskErrorResponse struct {
	Error    string       `json:"error"`
	Plan     *domain.Plan `json:"plan"`
	SQL      *string      `json:"sql,omitempty"`
	CacheHit bool         `json:"cache_hit"`
}

// Ask handles POST /v1/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, AskErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	hasQuestion := req.Question != nil && *req.Question != ""
	hasPlan := req.Plan != nil
	if hasQuestion == hasPlan {
		h.writeJSON(w, http.StatusBadRequest, AskErrorResponse{
			Error: "exactly one of \"question\" and \"plan\" must be provided",
		})
		return
	}

	var (
		res *service.Result
		err error
	)
	if hasQuestion {
		res, err = h.engine.Ask(r.Context(), *req.Question)
	} else {
		res, err = h.engine.Run(r.Context(), *req.Plan)
	}

	if err != nil {
		status := httpStatusFromDomainError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("ask failed",
				"error", err,
				"request_id", middleware.RequestIDFromContext(r.Context()))
		}
		body := AskErrorResponse{Error: publicMessage(err)}
		if res != nil {
			body.Plan = res.Plan
			body.CacheHit = res.CacheHit
			if res.SQL != "" {
				body.SQL = &res.SQL
			}
		}
		h.writeJSON(w, status, body)
		return
	}

	h.writeJSON(w, http.StatusOK, AskResponse{
		Plan:       res.Plan,
		SQL:        res.SQL,
		Columns:    res.ResultSet.Columns,
		Rows:       res.ResultSet.Rows,
		RowCount:   res.ResultSet.RowCount,
		CacheHit:   res.CacheHit,
		DurationMs: res.DurationMs,
	})
}
