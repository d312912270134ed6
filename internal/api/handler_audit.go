package api

import (
	"net/http"
	"strconv"
	"time"

	"askdata/internal/domain"
)

// AuditRecord is the public view of one audit log entry.
type AuditRecord struct {
	ID            string    `json:"id"`
	Question      *string   `json:"question,omitempty"`
	Plan          string    `json:"plan"`
	SQL           *string   `json:"sql,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	RowCount      int64     `json:"row_count"`
	CacheHit      bool      `json:"cache_hit"`
	Error         *string   `json:"error,omitempty"`
	EngineVersion string    `json:"engine_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditListResponse is the body of GET /v1/audit.
type AuditListResponse struct {
	Records       []AuditRecord `json:"records"`
	Total         int64         `json:"total"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// ListAudit handles GET /v1/audit. Supported query parameters:
// only_errors, max_results, page_token.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		OnlyErrors: r.URL.Query().Get("only_errors") == "true",
		Page: domain.PageRequest{
			PageToken: r.URL.Query().Get("page_token"),
		},
	}
	if v := r.URL.Query().Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid max_results: " + v,
			})
			return
		}
		filter.Page.MaxResults = n
	}

	records, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit list failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "audit listing failed",
		})
		return
	}

	out := make([]AuditRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, AuditRecord{
			ID:            rec.ID,
			Question:      rec.Question,
			Plan:          rec.PlanJSON,
			SQL:           rec.SQLText,
			DurationMs:    rec.DurationMs,
			RowCount:      rec.RowCount,
			CacheHit:      rec.CacheHit,
			Error:         rec.ErrorMessage,
			EngineVersion: rec.EngineVersion,
			CreatedAt:     rec.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, AuditListResponse{
		Records:       out,
		Total:         total,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}
