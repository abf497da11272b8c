package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/metrics"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single monitoring cycle and exit",
	Long: `Executes one full cycle immediately: probes, repository fetches, and
webhook deliveries. Exits non-zero when any step degraded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := buildRunner(metrics.New())
		if err != nil {
			return err
		}
		defer cleanup()

		if !runner.RunCycle(context.Background()) {
			return fmt.Errorf("cycle completed with degraded steps")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
