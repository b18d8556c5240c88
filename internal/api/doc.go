// Package api serves the REST surface over the report store.
//
// Precomputed endpoints (health, reports, rankings, clv, alerts) read
// straight from the stored reports; query endpoints (segments, cross,
// revenue, customers/top) re-run the engine against the stored snapshot so
// callers can ask for any registered attribute or filter, not just the
// configured report layout. All responses are JSON.
package api
