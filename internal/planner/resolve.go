package planner

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"askdata/internal/catalog"
	"askdata/internal/domain"
)

// Resolver maps a natural-language question to a plan request. It is a
// deliberately best-effort heuristic layer: an ordered pattern list is
// tried first-match-wins, and an unmatched question falls back to a safe
// default plan chosen by hybrid ranking. Every plan a Resolver produces
// satisfies the validator's shape requirements by construction, and every
// produced plan still goes through the validator — swapping this
// implementation for a model-based parser must never bypass that gate.
type Resolver struct {
	catalog  *catalog.Catalog
	ranker   *Ranker
	patterns []pattern
}

// pattern pairs a question predicate with a plan constructor. Patterns are
// evaluated in slice order; the order is part of the resolver's contract.
type pattern struct {
	name  string
	match func(q string) bool
	build func(q string) domain.PlanRequest
}

// NewResolver creates a Resolver. scorer may be nil (keyword-only ranking).
func NewResolver(cat *catalog.Catalog, scorer domain.SimilarityScorer) *Resolver {
	r := &Resolver{
		catalog: cat,
		ranker:  NewRanker(cat, scorer),
	}
	r.patterns = []pattern{
		{
			// "transactions by time and category"
			name:  "time_by_category_crosstab",
			match: allOf("time", "category"),
			build: func(string) domain.PlanRequest {
				return crosstab([]string{"daypart"}, "product_category", "txn_count")
			},
		},
		{
			// "average basket by payment method"
			name:  "basket_by_payment",
			match: allOf("basket", "payment"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"payment_method"}, "avg_basket")
			},
		},
		{
			// "brand revenue on weekends vs weekdays"
			name:  "brand_by_weekend",
			match: allOf("brand", "weekend"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"brand", "weekend"}, "revenue")
			},
		},
		{
			// "top 10 brands"
			name:  "top_n_brands",
			match: func(q string) bool { return topNBrands.MatchString(q) },
			build: func(q string) domain.PlanRequest {
				req := aggregate([]string{"brand"}, "revenue")
				if m := topNBrands.FindStringSubmatch(q); m != nil {
					if n, err := strconv.Atoi(m[1]); err == nil {
						n = min(max(n, domain.MinLimit), domain.MaxLimit)
						req.Limit = &n
					}
				}
				return req
			},
		},
		{
			// "how much revenue by brand"
			name:  "revenue_by_brand",
			match: func(q string) bool {
				return containsAny(q, "revenue", "sales", "turnover") && strings.Contains(q, "brand")
			},
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"brand"}, "revenue")
			},
		},
		{
			// "monthly sales trend"
			name:  "monthly_trend",
			match: anyOf("month", "monthly"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"month"}, "revenue", "txn_count")
			},
		},
		{
			// "store performance"
			name:  "store_performance",
			match: allOf("store", "performance"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"store"}, "revenue", "txn_count", "avg_basket")
			},
		},
		{
			// "payment method mix"
			name:  "payment_mix",
			match: anyOf("payment", "tender"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"payment_method"}, "txn_count")
			},
		},
		{
			// "revenue by category"
			name:  "category_revenue",
			match: anyOf("category", "categories"),
			build: func(string) domain.PlanRequest {
				return aggregate([]string{"product_category"}, "revenue")
			},
		},
	}
	return r
}

var topNBrands = regexp.MustCompile(`top\s+(\d+)\s+brands?`)

// Parse maps a question to a plan request. It never fails: unmatched
// questions get the default plan so the pipeline always has something
// concrete to validate.
func (r *Resolver) Parse(ctx context.Context, question string) domain.PlanRequest {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, p := range r.patterns {
		if p.match(q) {
			return p.build(q)
		}
	}
	return r.defaultPlan(ctx, q)
}

/// defaultPlan is the graceful-degradation path: a single hybrid-ranked
// dimension and metric, long format, no pivot.
func (r *Resolver) defaultPlan(ctx context.Context, question string) domain.PlanRequest {
	dim := "daypart"
	if ranked := r.ranker.RankDimensions(ctx, question); len(ranked) > 0 && ranked[0].Score > 0 {
		dim = ranked[0].Entry.Key
	}
	metric := "txn_count"
	if ranked := r.ranker.RankMetrics(ctx, question); len(ranked) > 0 && ranked[0].Score > 0 {
		metric = ranked[0].Entry.Key
	}
	return aggregate([]string{dim}, metric)
}

func aggregate(rows []string, measures ...string) domain.PlanRequest {
	pivot := false
	return domain.PlanRequest{
		Intent:   string(domain.IntentAggregate),
		Rows:     rows,
		Measures: measures,
		Pivot:    &pivot,
	}
}

func crosstab(rows []string, col string, measures ...string) domain.PlanRequest {
	pivot := true
	return domain.PlanRequest{
		Intent:   string(domain.IntentCrosstab),
		Rows:     rows,
		Cols:     []string{col},
		Measures: measures,
		Pivot:    &pivot,
	}
}

func allOf(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if !strings.Contains(q, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(q string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func anyOf(words ...string) func(string) bool {
	return func(q string) bool { return containsAny(q, words...) }
}
