package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Loader produces a validated Snapshot from some external source.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// CSVLoader reads the customer table from a CSV file with the canonical
// Telco header row.
type CSVLoader struct {
	SourceID string
	Path     string

	now func() time.Time // injectable for deterministic tests
}

// NewCSVLoader creates a loader for the file at path.
func NewCSVLoader(sourceID, path string) *CSVLoader {
	return &CSVLoader{SourceID: sourceID, Path: path, now: time.Now}
}

// Load reads, parses and validates the whole file. It returns a
// *DataQualityError when any row violates the data contract.
func (l *CSVLoader) Load(ctx context.Context) (*Snapshot, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("csv loader %q: %w", l.SourceID, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv loader %q: read header: %w", l.SourceID, err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, fmt.Errorf("csv loader %q: %w", l.SourceID, err)
	}

	var (
		records []CustomerRecord
		vs      []Violation
		row     int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv loader %q: row %d: %w", l.SourceID, row+1, err)
		}
		row++
		get := func(col string) string { return line[idx[col]] }
		records = append(records, parseRecord(row, get, &vs))
	}

	if len(vs) > 0 {
		return nil, &DataQualityError{Source: l.SourceID, Violations: vs}
	}
	if err := Validate(l.SourceID, records); err != nil {
		return nil, err
	}

	slog.Info("dataset: csv loaded",
		"source", l.SourceID, "path", l.Path, "records", len(records))
	return NewSnapshot(l.SourceID, l.now(), records), nil
}

// headerIndex maps each canonical column name to its position in the header.
func headerIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	idx := make(map[string]int, len(columns))
	for _, col := range columns {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		idx[col] = p
	}
	return idx, nil
}
