// Package client is a small HTTP client for the ask-data API, used by the
// CLI and usable by other Go programs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one ask-data server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.HTTPStatus, e.Message)
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question *string         `json:"question,omitempty"`
	Plan     json.RawMessage `json:"plan,omitempty"`
}

// AskResponse is the success body of POST /v1/ask.
type AskResponse struct {
	Plan       json.RawMessage          `json:"plan"`
	SQL        string                   `json:"sql"`
	Columns    []string                 `json:"columns"`
	Rows       []map[string]interface{} `json:"rows"`
	RowCount   int                      `json:"row_count"`
	CacheHit   bool                     `json:"cache_hit"`
	DurationMs int64                    `json:"duration_ms"`
}

// CatalogEntry is one dimension or metric listed by GET /v1/catalog.
type CatalogEntry struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Filterable bool     `json:"filterable"`
	Synonyms   []string `json:"synonyms"`
}

// CatalogResponse is the body of GET /v1/catalog.
type CatalogResponse struct {
	Version    string         `json:"version"`
	Dimensions []CatalogEntry `json:"dimensions"`
	Metrics    []CatalogEntry `json:"metrics"`
}

// AuditRecord is one entry listed by GET /v1/audit.
type AuditRecord struct {
	ID            string    `json:"id"`
	Question      *string   `json:"question"`
	Plan          string    `json:"plan"`
	SQL           *string   `json:"sql"`
	DurationMs    int64     `json:"duration_ms"`
	RowCount      int64     `json:"row_count"`
	CacheHit      bool      `json:"cache_hit"`
	Error         *string   `json:"error"`
	EngineVersion string    `json:"engine_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditListResponse is the body of GET /v1/audit.
type AuditListResponse struct {
	Records       []AuditRecord `json:"records"`
	Total         int64         `json:"total"`
	NextPageToken string        `json:"next_page_token"`
}

// AuditListOptions narrows GET /v1/audit.
type AuditListOptions struct {
	OnlyErrors bool
	MaxResults int
	PageToken  string
}

// Ask submits a question or plan for execution.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	var out AskResponse
	if err := c.do(ctx, http.MethodPost, "/v1/ask", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog fetches the dimension and metric listing.
func (c *Client) Catalog(ctx context.Context) (*CatalogResponse, error) {
	var out CatalogResponse
	if err := c.do(ctx, http.MethodGet, "/v1/catalog", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Audit fetches a page of the audit log.
func (c *Client) Audit(ctx context.Context, opts AuditListOptions) (*AuditListResponse, error) {
	params := url.Values{}
	if opts.OnlyErrors {
		params.Set("only_errors", "true")
	}
	if opts.MaxResults > 0 {
		params.Set("max_results", fmt.Sprintf("%d", opts.MaxResults))
	}
	if opts.PageToken != "" {
		params.Set("page_token", opts.PageToken)
	}

	var out AuditListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/audit", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out interface{}) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: resp.Status}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
