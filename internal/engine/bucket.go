package engine

import (
	"fmt"

	"github.com/churnscope/churnscope/internal/dataset"
)

// Tenure bucket labels, in chronological order.
const (
	BucketNew         = "0-12"
	BucketEstablished = "13-24"
	BucketMature      = "25-48"
	BucketLoyal       = "48+"
)

// BucketTenure maps a tenure in months to its bucket label:
// [0,12] → "0-12", [13,24] → "13-24", [25,48] → "25-48", (48,∞) → "48+".
// Negative tenure is a data-quality error and is reported, never bucketed;
// validated snapshots cannot contain one.
func BucketTenure(months int) (string, error) {
	switch {
	case months < 0:
		return "", fmt.Errorf("negative tenure %d", months)
	case months <= 12:
		return BucketNew, nil
	case months <= 24:
		return BucketEstablished, nil
	case months <= 48:
		return BucketMature, nil
	default:
		return BucketLoyal, nil
	}
}

// tenureBucketOrder gives buckets their chronological position.
func tenureBucketOrder(bucket string) int {
	switch bucket {
	case BucketNew:
		return 0
	case BucketEstablished:
		return 1
	case BucketMature:
		return 2
	default:
		return 3
	}
}

// CountServices counts how many of phone service, internet service,
// streaming TV and streaming movies a customer subscribes to (0–4).
func CountServices(r *dataset.CustomerRecord) int {
	n := 0
	if r.PhoneService {
		n++
	}
	if r.HasInternet() {
		n++
	}
	if r.StreamingTV {
		n++
	}
	if r.StreamingMovies {
		n++
	}
	return n
}
