package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/dataset"
	"github.com/churnscope/churnscope/internal/export"
)

var (
	csvPath string
	outDir  string
)

func Execute() error {
	root := &cobra.Command{
		Use:           "churnctl",
		Short:         "Offline churn analysis over a customer CSV",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				return errors.New("--csv is required")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&csvPath, "csv", "", "path to customer CSV file")
	root.PersistentFlags().StringVar(&outDir, "out", "", "directory to also write results as JSON")

	root.AddCommand(segmentCmd(), crossCmd(), rankCmd(), revenueCmd(), clvCmd(), topCmd(), validateCmd())
	return root.Execute()
}

// loadSnapshot parses and validates the CSV behind --csv.
func loadSnapshot(ctx context.Context) (*dataset.Snapshot, error) {
	return dataset.NewCSVLoader("cli", csvPath).Load(ctx)
}

// emit prints v as indented JSON and, when --out is set, writes a
// timestamped copy under that directory.
func emit(name string, v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}
	filename := export.TimestampedFilename(outDir, name, time.Now())
	if err := export.JSON(filename, v); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", filename)
	return nil
}
