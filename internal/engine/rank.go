package engine

import (
	"fmt"
	"sort"

	"github.com/churnscope/churnscope/internal/dataset"
)

// CategoryDef names one dimension included in a driver ranking: a display
// label ("Contract") and the registry attribute backing it ("contract").
type CategoryDef struct {
	Type      string `json:"type" yaml:"type"`
	Attribute string `json:"attribute" yaml:"attribute"`
}

// DefaultRankingCategories are the dimensions the original churn analysis
// compared against each other.
func DefaultRankingCategories() []CategoryDef {
	return []CategoryDef{
		{Type: "Contract", Attribute: "contract"},
		{Type: "Internet Service", Attribute: "internet_service"},
		{Type: "Payment Method", Attribute: "payment_method"},
	}
}

// RankedMetric is a CategoryMetric tagged with its category label and the
// dense risk rank it received in the combined ranking.
type RankedMetric struct {
	CategoryType string `json:"category_type"`
	CategoryMetric
	RiskRank int `json:"risk_rank"`
}

// RankDrivers runs Segment independently for every category definition,
// unions all resulting rows into one sequence, orders it by churn rate
// descending and assigns dense risk ranks (ties share a rank, the next
// distinct rate gets rank+1). The result is truncated to topN rows;
// topN <= 0 means no truncation.
//
// This makes churn risk comparable across otherwise unrelated dimensions:
// a contract type and a payment method end up on the same scale.
func RankDrivers(s *dataset.Snapshot, defs []CategoryDef, topN int) ([]RankedMetric, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("rank drivers: no categories given")
	}

	var combined []RankedMetric
	for _, def := range defs {
		metrics, err := Segment(s, def.Attribute)
		if err != nil {
			return nil, fmt.Errorf("rank drivers: category %q: %w", def.Type, err)
		}
		for _, m := range metrics {
			combined = append(combined, RankedMetric{CategoryType: def.Type, CategoryMetric: m})
		}
	}

	// Ordinal attributes come back in intrinsic order; the global ranking
	// always compares by rate.
	sortRankedByRateDesc(combined)

	rates := make([]float64, len(combined))
	for i, m := range combined {
		rates[i] = m.ChurnRate
	}
	for i, rank := range DenseRanks(rates) {
		combined[i].RiskRank = rank
	}

	if topN > 0 && len(combined) > topN {
		combined = combined[:topN]
	}
	return combined, nil
}

// DenseRanks assigns 1-based dense ranks to a descending-sorted value
// sequence: equal adjacent values share a rank and the next distinct value
// continues at rank+1 with no gaps. It is the single ranking utility used by
// every ranked output.
func DenseRanks(sortedDesc []float64) []int {
	ranks := make([]int, len(sortedDesc))
	rank := 0
	for i, v := range sortedDesc {
		if i == 0 || v != sortedDesc[i-1] {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

func sortRankedByRateDesc(ms []RankedMetric) {
	// Same ordering contract as sortByRateDesc, with the category label as
	// the first tie-breaker.
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].ChurnRate != ms[j].ChurnRate {
			return ms[i].ChurnRate > ms[j].ChurnRate
		}
		if ms[i].CategoryType != ms[j].CategoryType {
			return ms[i].CategoryType < ms[j].CategoryType
		}
		return ms[i].Value < ms[j].Value
	})
}
