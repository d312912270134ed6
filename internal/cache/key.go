// Package cache provides the content-addressed result cache: deterministic
// keys derived from validated plans and a best-effort TTL store backed by
// the SQLite metastore.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"askdata/internal/domain"
)

// DefaultTTL reflects the refresh cadence of the gold tables the catalog
// points at.
const DefaultTTL = 300 // seconds

// Key computes the cache key for a validated plan, its bound parameter
// values, and the catalog version. The serialization walks plan fields in a
// fixed order, so the same plan always hashes identically regardless of how
// the caller ordered its JSON — and the catalog version participates, so a
// catalog change invalidates every existing entry. The SQL text is
// deliberately not part of the key.
func Key(plan *domain.Plan, params []interface{}, catalogVersion string) string {
	var sb strings.Builder

	field := func(name, value string) {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(value)
		sb.WriteByte('\x1f')
	}

	field("catalog", catalogVersion)
	field("intent", string(plan.Intent))
	field("rows", strings.Join(plan.Rows, ","))
	field("cols", strings.Join(plan.Cols, ","))
	field("measures", strings.Join(plan.Measures, ","))
	field("date_from", optStr(plan.Filters.DateFrom))
	field("date_to", optStr(plan.Filters.DateTo))
	field("brands", strings.Join(plan.Filters.Brands, ","))
	field("categories", strings.Join(plan.Filters.Categories, ","))
	field("regions", strings.Join(plan.Filters.Regions, ","))
	field("payment_methods", strings.Join(plan.Filters.PaymentMethods, ","))
	field("weekend", optBool(plan.Filters.Weekend))
	field("pivot", strconv.FormatBool(plan.Pivot))
	field("limit", strconv.Itoa(plan.Limit))

	for _, p := range params {
		field("param", fmt.Sprintf("%v", p))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
