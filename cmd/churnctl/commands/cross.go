package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func crossCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cross [attribute-a] [attribute-b]",
		Short: "Churn rate per combination of two attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			metrics, err := engine.CrossSegment(snap, args[0], args[1])
			if err != nil {
				return fmt.Errorf("cross: %w", err)
			}
			return emit("cross_"+args[0]+"_"+args[1], metrics)
		},
	}
	return cmd
}
