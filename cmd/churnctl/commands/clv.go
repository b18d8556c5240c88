package commands

import (
	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func clvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clv",
		Short: "Customer lifetime value stats for churned and retained groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return emit("clv", engine.CLVStats(snap))
		},
	}
	return cmd
}
