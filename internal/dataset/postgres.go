package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const pingTimeout = 3 * time.Second

// PostgresLoader reads the customer table from a Postgres staging table that
// mirrors the CSV layout (all columns stored as text, same Yes/No encoding).
type PostgresLoader struct {
	SourceID string
	DSN      string
	Table    string

	now func() time.Time
}

// NewPostgresLoader creates a loader for the given DSN and table name.
func NewPostgresLoader(sourceID, dsn, table string) *PostgresLoader {
	return &PostgresLoader{SourceID: sourceID, DSN: dsn, Table: table, now: time.Now}
}

// Load opens a connection, reads every row and validates the result.
// The connection is closed before Load returns; each analysis run reloads
// from scratch.
func (l *PostgresLoader) Load(ctx context.Context) (*Snapshot, error) {
	db, err := sql.Open("postgres", l.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres loader %q: open: %w", l.SourceID, err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("postgres loader %q: ping: %w", l.SourceID, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, quoteColumns(), l.Table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres loader %q: query: %w", l.SourceID, err)
	}
	defer rows.Close()

	var (
		records []CustomerRecord
		vs      []Violation
		row     int
	)
	raw := make([]sql.NullString, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("postgres loader %q: scan row %d: %w", l.SourceID, row+1, err)
		}
		row++
		get := func(col string) string {
			for i, c := range columns {
				if c == col {
					return raw[i].String
				}
			}
			return ""
		}
		records = append(records, parseRecord(row, get, &vs))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres loader %q: iterate: %w", l.SourceID, err)
	}

	if len(vs) > 0 {
		return nil, &DataQualityError{Source: l.SourceID, Violations: vs}
	}
	if err := Validate(l.SourceID, records); err != nil {
		return nil, err
	}

	slog.Info("dataset: postgres loaded",
		"source", l.SourceID, "table", l.Table, "records", len(records))
	return NewSnapshot(l.SourceID, l.now(), records), nil
}

// quoteColumns renders the canonical column list for the SELECT.
// The Telco column names are mixed-case, so each one is double-quoted.
func quoteColumns() string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}
