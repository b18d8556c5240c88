package engine

import (
	"github.com/churnscope/churnscope/internal/dataset"
)

// Predicate filters records for RevenueImpact and TopByValue.
type Predicate func(*dataset.CustomerRecord) bool

// Churned matches customers who have churned.
func Churned(r *dataset.CustomerRecord) bool { return r.Churn }

// Retained matches customers who have not churned.
func Retained(r *dataset.CustomerRecord) bool { return !r.Churn }

// All matches every record.
func All(*dataset.CustomerRecord) bool { return true }

// And combines predicates; the result matches when every predicate does.
func And(preds ...Predicate) Predicate {
	return func(r *dataset.CustomerRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Revenue is the financial impact of a filtered customer set.
// An empty match yields zero-valued aggregates — a valid business answer
// ("nobody in this segment churned"), not an error.
type Revenue struct {
	Customers    int     `json:"customers"`
	MonthlyTotal float64 `json:"monthly_total"`
	AnnualTotal  float64 `json:"annual_total"` // MonthlyTotal × 12, before rounding
	MonthlyAvg   float64 `json:"monthly_avg"`
}

// RevenueImpact sums monthly charges over the records matching pred.
func RevenueImpact(s *dataset.Snapshot, pred Predicate) Revenue {
	var (
		count int
		total float64
	)
	for i := range s.Records() {
		r := &s.Records()[i]
		if pred(r) {
			count++
			total += r.MonthlyCharges
		}
	}

	if count == 0 {
		return Revenue{}
	}
	return Revenue{
		Customers:    count,
		MonthlyTotal: Round2(total),
		AnnualTotal:  Round2(total * 12),
		MonthlyAvg:   Round2(total / float64(count)),
	}
}

// CLVGroup holds lifetime-value statistics for one churn-status group.
// CLV is approximated as tenure × monthly charges — a deliberate
// simplification carried over from the source analysis; it ignores charge
// changes over a customer's history.
type CLVGroup struct {
	Churned   bool    `json:"churned"`
	Customers int     `json:"customers"`
	Avg       float64 `json:"avg_clv"`
	Min       float64 `json:"min_clv"`
	Max       float64 `json:"max_clv"`
}

// CLVStats computes avg/min/max customer lifetime value per churn group.
// Groups with no members are omitted.
func CLVStats(s *dataset.Snapshot) []CLVGroup {
	type acc struct {
		n        int
		sum      float64
		min, max float64
	}
	var groups [2]*acc // index 0 = retained, 1 = churned

	for i := range s.Records() {
		r := &s.Records()[i]
		clv := float64(r.Tenure) * r.MonthlyCharges

		idx := 0
		if r.Churn {
			idx = 1
		}
		a := groups[idx]
		if a == nil {
			a = &acc{min: clv, max: clv}
			groups[idx] = a
		}
		a.n++
		a.sum += clv
		if clv < a.min {
			a.min = clv
		}
		if clv > a.max {
			a.max = clv
		}
	}

	var out []CLVGroup
	for idx, a := range groups {
		if a == nil {
			continue
		}
		out = append(out, CLVGroup{
			Churned:   idx == 1,
			Customers: a.n,
			Avg:       Round2(a.sum / float64(a.n)),
			Min:       Round2(a.min),
			Max:       Round2(a.max),
		})
	}
	return out
}
