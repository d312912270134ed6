package domain

// Intent classifies the analytic shape of a query plan.
type Intent string

const (
	// IntentAggregate is a long-format grouped aggregation.
	IntentAggregate Intent = "aggregate"
	// IntentCrosstab is a pivoted row-by-column cross-tabulation.
	IntentCrosstab Intent = "crosstab"
)

// Plan shape bounds enforced by the validator.
const (
	MaxRowDimensions = 2
	MaxColDimensions = 1
	MinLimit         = 1
	MaxLimit         = 10000
	DefaultLimit     = 5000
)

// Filters holds the structured, whitelisted filter fields of a plan.
// All fields are optional; values are always bound as SQL parameters,
// never interpolated.
type Filters struct {
	DateFrom       *string  `json:"date_from,omitempty"`
	DateTo         *string  `json:"date_to,omitempty"`
	Brands         []string `json:"brands,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
	Weekend        *bool    `json:"weekend,omitempty"`
}

// Empty reports whether no filter field is populated.
func (f Filters) Empty() bool {
	return f.DateFrom == nil && f.DateTo == nil &&
		len(f.Brands) == 0 && len(f.Categories) == 0 &&
		len(f.Regions) == 0 && len(f.PaymentMethods) == 0 &&
		f.Weekend == nil
}

// PlanRequest is the caller-supplied plan shape before validation.
// Pivot and Limit are pointers so the validator can distinguish
// "omitted" from a zero value.
type PlanRequest struct {
	Intent   string   `json:"intent"`
	Rows     []string `json:"rows"`
	Cols     []string `json:"cols"`
	Measures []string `json:"measures"`
	Filters  Filters  `json:"filters"`
	Pivot    *bool    `json:"pivot"`
	Limit    *int     `json:"limit"`
}

// Plan is a validated analytic query plan. Every dimension and metric key
// has been canonicalized and resolved against the semantic catalog; once
// constructed a Plan is immutable and safe to share across goroutines.
type Plan struct {
	Intent   Intent   `json:"intent"`
	Rows     []string `json:"rows"`
	Cols     []string `json:"cols,omitempty"`
	Measures []string `json:"measures"`
	Filters  Filters  `json:"filters"`
	Pivot    bool     `json:"pivot"`
	Limit    int      `json:"limit"`
}
