package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/churnscope/churnscope/internal/engine"
)

func segmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment [attribute]",
		Short: "Churn rate per value of a customer attribute",
		Long: "Churn rate per value of a customer attribute.\n\nKnown attributes: " +
			strings.Join(engine.Attributes(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			metrics, err := engine.Segment(snap, args[0])
			if err != nil {
				return fmt.Errorf("segment: %w", err)
			}
			return emit("segment_"+args[0], metrics)
		},
	}
	return cmd
}
