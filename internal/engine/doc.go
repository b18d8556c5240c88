// Package engine computes churn metrics over an immutable dataset.Snapshot.
//
// Every operation is a pure function of the snapshot and its explicit
// parameters: grouping into per-category churn rates (Segment, CrossSegment),
// revenue-at-risk aggregation (RevenueImpact), lifetime-value statistics
// (CLVStats), the cross-dimension driver ranking (RankDrivers) and raw
// record listings (TopByValue). Nothing is cached or mutated, so operations
// are safe to run repeatedly and concurrently against the same snapshot.
//
// Attribute names are resolved through a fixed registry; asking for an
// unknown attribute is a caller error and fails fast with
// ErrUnknownAttribute. Derived attributes ("tenure_bucket", "service_count")
// are bucketed by BucketTenure and CountServices.
//
// profile.go adds the per-record risk-profile flags and retention
// recommendations used by the reporting layer.
package engine
