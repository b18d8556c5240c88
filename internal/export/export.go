// Package export writes analysis results to timestamped JSON files for
// consumption by the feature-engineering stage and ad-hoc reporting.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSON writes v as indented JSON to filename, creating parent directories
// as needed.
func JSON(filename string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("export: create folder: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export: write JSON: %w", err)
	}
	return nil
}

// TimestampedFilename builds "<baseDir>/<name>_<yyyymmdd_hhmmss>.json" so
// repeated exports of the same report never overwrite each other.
func TimestampedFilename(baseDir, name string, now time.Time) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.json", name, now.Format("20060102_150405")))
}
