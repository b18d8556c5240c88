package commands

import (
	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func revenueCmd() *cobra.Command {
	var churned bool

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Monthly and annualized revenue totals for a customer group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			pred := engine.Churned
			name := "revenue_churned"
			if !churned {
				pred = engine.Retained
				name = "revenue_retained"
			}
			return emit(name, engine.RevenueImpact(snap, pred))
		},
	}

	cmd.Flags().BoolVar(&churned, "churned", true, "churned customers (false = retained)")
	return cmd
}
