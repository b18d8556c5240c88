package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/churnscope/churnscope/internal/dataset"
)

// ErrUnknownAttribute is returned when a caller asks for an attribute that
// is not in the registry. It is a configuration error: the request fails
// fast and no partial result is produced.
var ErrUnknownAttribute = errors.New("unknown attribute")

// attribute resolves one segmentable dimension of a CustomerRecord.
type attribute struct {
	get func(*dataset.CustomerRecord) string

	// ordinal attributes keep their intrinsic order in segment output
	// (tenure buckets chronological, service counts ascending) instead of
	// the default descending-churn-rate order.
	ordinal bool

	// order maps a value to its ordinal position. Only set when ordinal.
	order func(value string) int
}

// yn renders a bool the way the source table does.
func yn(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

var attributes = map[string]attribute{
	"contract":          {get: func(r *dataset.CustomerRecord) string { return r.Contract }},
	"internet_service":  {get: func(r *dataset.CustomerRecord) string { return r.InternetService }},
	"payment_method":    {get: func(r *dataset.CustomerRecord) string { return r.PaymentMethod }},
	"gender":            {get: func(r *dataset.CustomerRecord) string { return r.Gender }},
	"senior_citizen":    {get: func(r *dataset.CustomerRecord) string { return yn(r.SeniorCitizen) }},
	"partner":           {get: func(r *dataset.CustomerRecord) string { return yn(r.Partner) }},
	"dependents":        {get: func(r *dataset.CustomerRecord) string { return yn(r.Dependents) }},
	"phone_service":     {get: func(r *dataset.CustomerRecord) string { return yn(r.PhoneService) }},
	"multiple_lines":    {get: func(r *dataset.CustomerRecord) string { return yn(r.MultipleLines) }},
	"online_security":   {get: func(r *dataset.CustomerRecord) string { return yn(r.OnlineSecurity) }},
	"online_backup":     {get: func(r *dataset.CustomerRecord) string { return yn(r.OnlineBackup) }},
	"device_protection": {get: func(r *dataset.CustomerRecord) string { return yn(r.DeviceProtection) }},
	"tech_support":      {get: func(r *dataset.CustomerRecord) string { return yn(r.TechSupport) }},
	"streaming_tv":      {get: func(r *dataset.CustomerRecord) string { return yn(r.StreamingTV) }},
	"streaming_movies":  {get: func(r *dataset.CustomerRecord) string { return yn(r.StreamingMovies) }},
	"paperless_billing": {get: func(r *dataset.CustomerRecord) string { return yn(r.PaperlessBilling) }},

	"tenure_bucket": {
		get: func(r *dataset.CustomerRecord) string {
			// Snapshots are validated, so tenure is never negative here.
			b, _ := BucketTenure(r.Tenure)
			return b
		},
		ordinal: true,
		order:   tenureBucketOrder,
	},
	"service_count": {
		get: func(r *dataset.CustomerRecord) string {
			return strconv.Itoa(CountServices(r))
		},
		ordinal: true,
		order: func(v string) int {
			n, _ := strconv.Atoi(v)
			return n
		},
	},
}

// Attributes returns the names of all segmentable attributes, for caller
// validation and CLI help output.
func Attributes() []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupAttribute resolves name or fails with ErrUnknownAttribute.
func lookupAttribute(name string) (attribute, error) {
	a, ok := attributes[name]
	if !ok {
		return attribute{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return a, nil
}
