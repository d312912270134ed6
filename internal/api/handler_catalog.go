package api

import (
	"net/http"

	"askdata/internal/domain"
)

// CatalogEntry is the public view of one catalog key. The underlying SQL
// expression is never exposed.
type CatalogEntry struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Filterable bool     `json:"filterable,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
}

// CatalogResponse is the body of GET /v1/catalog.
type CatalogResponse struct {
	Version    string         `json:"version"`
	Dimensions []CatalogEntry `json:"dimensions"`
	Metrics    []CatalogEntry `json:"metrics"`
}

// GetCatalog handles GET /v1/catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	resp := CatalogResponse{
		Version:    h.catalog.Version(),
		Dimensions: h.entriesToAPI(h.catalog.Dimensions()),
		Metrics:    h.entriesToAPI(h.catalog.Metrics()),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) entriesToAPI(entries []domain.CatalogEntry) []CatalogEntry {
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, CatalogEntry{
			Key:        e.Key,
			Label:      e.Label,
			Filterable: e.Filterable,
			Synonyms:   h.catalog.SynonymsFor(e.Key),
		})
	}
	return out
}
