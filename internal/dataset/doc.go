// Package dataset loads and validates the denormalized customer table that
// every analysis run operates on.
//
// A Snapshot is an immutable, already-validated set of CustomerRecords tagged
// with its source ID and load time. Loaders (CSV file, Postgres table)
// normalize the raw column values — Yes/No flags, "No internet service"
// placeholders, numeric charges — into typed records and reject anything that
// violates the data contract (blank customerID, duplicate customerID,
// tenure < 0, negative or non-numeric charges, unknown category values).
//
// Validation happens entirely at load time: downstream consumers (the metrics
// engine, the report builder) assume a Snapshot can no longer contain a
// malformed record.
package dataset
