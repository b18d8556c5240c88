package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/churnscope/churnscope/internal/dataset"
)

// ErrUnknownSortKey is returned when TopByValue is asked to sort by a key
// that is not registered.
var ErrUnknownSortKey = errors.New("unknown sort key")

// sortKeys maps key names to the numeric value they sort by.
var sortKeys = map[string]func(*dataset.CustomerRecord) float64{
	"total_charges":   func(r *dataset.CustomerRecord) float64 { return r.TotalCharges },
	"monthly_charges": func(r *dataset.CustomerRecord) float64 { return r.MonthlyCharges },
	"tenure":          func(r *dataset.CustomerRecord) float64 { return float64(r.Tenure) },
	"clv":             func(r *dataset.CustomerRecord) float64 { return float64(r.Tenure) * r.MonthlyCharges },
}

// SortKeys returns the registered sort key names.
func SortKeys() []string {
	keys := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TopByValue filters the snapshot with pred, sorts descending by the named
// numeric key and returns the first limit records (all of them when
// limit <= 0). Records pass through unmodified — no aggregation.
func TopByValue(s *dataset.Snapshot, pred Predicate, sortKey string, limit int) ([]dataset.CustomerRecord, error) {
	key, ok := sortKeys[sortKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, sortKey)
	}

	var matched []dataset.CustomerRecord
	for i := range s.Records() {
		r := &s.Records()[i]
		if pred(r) {
			matched = append(matched, *r)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		vi, vj := key(&matched[i]), key(&matched[j])
		if vi != vj {
			return vi > vj
		}
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
