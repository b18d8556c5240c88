package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/dataset"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the CSV for data quality violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				var dqe *dataset.DataQualityError
				if errors.As(err, &dqe) {
					fmt.Printf("%d violation(s) in %s:\n", len(dqe.Violations), csvPath)
					for _, v := range dqe.Violations {
						fmt.Printf("  row %d, %s: %s\n", v.Row, v.Field, v.Reason)
					}
					return err
				}
				return err
			}
			fmt.Printf("ok: %d records, no violations\n", snap.Len())
			return nil
		},
	}
	return cmd
}
