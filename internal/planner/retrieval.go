package planner

import (
	"context"
	"sort"
	"strings"

	"askdata/internal/catalog"
	"askdata/internal/domain"
)

// Hybrid score weights. Keyword overlap dominates so results stay
// explainable when the similarity backend is unavailable.
const (
	keywordWeight    = 0.6
	similarityWeight = 0.4
)

// Candidate is one ranked catalog entry.
type Candidate struct {
	Entry domain.CatalogEntry
	Score float64
}

// Ranker ranks catalog entries against a question using keyword overlap,
// optionally blended with an external similarity scorer. The scorer is
// opaque and best-effort: when it is nil or fails, ranking degrades to
// keyword-only, never to an error.
type Ranker struct {
	catalog *catalog.Catalog
	scorer  domain.SimilarityScorer
}

// NewRanker creates a Ranker. scorer may be nil.
func NewRanker(cat *catalog.Catalog, scorer domain.SimilarityScorer) *Ranker {
	return &Ranker{catalog: cat, scorer: scorer}
}

// RankDimensions orders all catalog dimensions by hybrid relevance to the
// question, most relevant first. Ties keep catalog definition order so the
// result is deterministic.
func (r *Ranker) RankDimensions(ctx context.Context, question string) []Candidate {
	return r.rank(ctx, question, r.catalog.Dimensions())
}

// RankMetrics orders all catalog metrics by hybrid relevance to the question.
func (r *Ranker) RankMetrics(ctx context.Context, question string) []Candidate {
	return r.rank(ctx, question, r.catalog.Metrics())
}

func (r *Ranker) rank(ctx context.Context, question string, entries []domain.CatalogEntry) []Candidate {
	tokens := tokenize(question)

	texts := make([]string, len(entries))
	candidates := make([]Candidate, len(entries))
	for i, e := range entries {
		texts[i] = r.entryText(e)
		candidates[i] = Candidate{Entry: e, Score: keywordWeight * overlapScore(tokens, texts[i])}
	}

	if r.scorer != nil {
		sims, err := r.scorer.Score(ctx, question, texts)
		if err == nil && len(sims) == len(entries) {
			for i := range candidates {
				candidates[i].Score += similarityWeight * sims[i]
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// entryText is the retrieval document for a catalog entry: its key, label,
// and every synonym phrase that maps to it.
func (r *Ranker) entryText(e domain.CatalogEntry) string {
	parts := []string{e.Key, e.Label}
	parts = append(parts, r.catalog.SynonymsFor(e.Key)...)
	return strings.ToLower(strings.Join(parts, " "))
}

// overlapScore is the fraction of question tokens present in the document.
func overlapScore(tokens []string, doc string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(doc, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// stopwords excluded from keyword matching.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "by": true, "do": true,
	"for": true, "how": true, "in": true, "is": true, "me": true, "much": true,
	"of": true, "on": true, "per": true, "show": true, "the": true, "to": true,
	"what": true, "which": true, "with": true,
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}
