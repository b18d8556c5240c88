// Package store keeps the latest analysis report per dataset source in
// memory. Reports older than the configured TTL are excluded from List and
// evicted by the background loop — a report that stops refreshing should
// disappear from the serving layer rather than linger forever.
package store
