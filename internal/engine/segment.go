package engine

import (
	"math"
	"sort"

	"github.com/churnscope/churnscope/internal/dataset"
)

// CategoryMetric is the churn breakdown for one value of one attribute.
type CategoryMetric struct {
	Attribute string  `json:"attribute"`
	Value     string  `json:"value"`
	Total     int     `json:"total_customers"`
	Churned   int     `json:"churned_customers"`
	ChurnRate float64 `json:"churn_rate"` // percent, rounded to 2 decimals
}

// PairMetric is the churn breakdown for one (attribute1, attribute2) value pair.
type PairMetric struct {
	AttributeA string  `json:"attribute_a"`
	ValueA     string  `json:"value_a"`
	AttributeB string  `json:"attribute_b"`
	ValueB     string  `json:"value_b"`
	Total      int     `json:"total_customers"`
	Churned    int     `json:"churned_customers"`
	ChurnRate  float64 `json:"churn_rate"`
}

// Round2 rounds to 2 decimal places. All reported rates and money aggregates
// go through it.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// churnRate computes the rounded churn percentage for a group. Groups are
// derived from existing rows, so total is always > 0 when called.
func churnRate(churned, total int) float64 {
	return Round2(float64(churned) / float64(total) * 100)
}

// counter accumulates one group during the grouping pass.
type counter struct {
	total   int
	churned int
}

// Segment groups the snapshot by one attribute and computes per-value churn
// metrics. Categorical attributes are ordered by descending churn rate;
// ordinal attributes ("tenure_bucket", "service_count") keep their intrinsic
// order. Ties break on the value name so output is deterministic.
func Segment(s *dataset.Snapshot, attributeName string) ([]CategoryMetric, error) {
	attr, err := lookupAttribute(attributeName)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*counter)
	for i := range s.Records() {
		r := &s.Records()[i]
		v := attr.get(r)
		c := groups[v]
		if c == nil {
			c = &counter{}
			groups[v] = c
		}
		c.total++
		if r.Churn {
			c.churned++
		}
	}

	out := make([]CategoryMetric, 0, len(groups))
	for v, c := range groups {
		out = append(out, CategoryMetric{
			Attribute: attributeName,
			Value:     v,
			Total:     c.total,
			Churned:   c.churned,
			ChurnRate: churnRate(c.churned, c.total),
		})
	}

	if attr.ordinal {
		sort.Slice(out, func(i, j int) bool {
			return attr.order(out[i].Value) < attr.order(out[j].Value)
		})
	} else {
		sortByRateDesc(out)
	}
	return out, nil
}

// CrossSegment groups by two attributes at once, for combinational risk
// discovery (e.g. contract × internet service). Output is ordered by
// descending churn rate.
func CrossSegment(s *dataset.Snapshot, attrNameA, attrNameB string) ([]PairMetric, error) {
	attrA, err := lookupAttribute(attrNameA)
	if err != nil {
		return nil, err
	}
	attrB, err := lookupAttribute(attrNameB)
	if err != nil {
		return nil, err
	}

	type pair struct{ a, b string }
	groups := make(map[pair]*counter)
	for i := range s.Records() {
		r := &s.Records()[i]
		k := pair{attrA.get(r), attrB.get(r)}
		c := groups[k]
		if c == nil {
			c = &counter{}
			groups[k] = c
		}
		c.total++
		if r.Churn {
			c.churned++
		}
	}

	out := make([]PairMetric, 0, len(groups))
	for k, c := range groups {
		out = append(out, PairMetric{
			AttributeA: attrNameA,
			ValueA:     k.a,
			AttributeB: attrNameB,
			ValueB:     k.b,
			Total:      c.total,
			Churned:    c.churned,
			ChurnRate:  churnRate(c.churned, c.total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ChurnRate != out[j].ChurnRate {
			return out[i].ChurnRate > out[j].ChurnRate
		}
		if out[i].ValueA != out[j].ValueA {
			return out[i].ValueA < out[j].ValueA
		}
		return out[i].ValueB < out[j].ValueB
	})
	return out, nil
}

// sortByRateDesc orders metrics by churn rate descending, then attribute and
// value ascending for stable ties.
func sortByRateDesc(ms []CategoryMetric) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].ChurnRate != ms[j].ChurnRate {
			return ms[i].ChurnRate > ms[j].ChurnRate
		}
		if ms[i].Attribute != ms[j].Attribute {
			return ms[i].Attribute < ms[j].Attribute
		}
		return ms[i].Value < ms[j].Value
	})
}
