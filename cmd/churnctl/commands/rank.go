package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func rankCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank high-risk segments across contract, internet and payment categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			ranked, err := engine.RankDrivers(snap, engine.DefaultRankingCategories(), top)
			if err != nil {
				return fmt.Errorf("rank: %w", err)
			}
			return emit("rank", ranked)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of segments to keep (0 = all)")
	return cmd
}
