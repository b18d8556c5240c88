package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func topCmd() *cobra.Command {
	var (
		by      string
		limit   int
		churned bool
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Highest-value customers within a group",
		Long: "Highest-value customers within a group.\n\nSort keys: " +
			strings.Join(engine.SortKeys(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			pred := engine.Churned
			if !churned {
				pred = engine.Retained
			}
			records, err := engine.TopByValue(snap, pred, by, limit)
			if err != nil {
				return fmt.Errorf("top: %w", err)
			}
			return emit("top_"+by, records)
		},
	}

	cmd.Flags().StringVar(&by, "by", "total_charges", "sort key")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of customers (0 = all)")
	cmd.Flags().BoolVar(&churned, "churned", true, "churned customers (false = retained)")
	return cmd
}
