package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/usage"
)

var usageEnv string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Host resource usage collection and history",
}

var usageCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Take one usage snapshot and append it to the history file",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, err := usage.Collect(time.Now())
		if err != nil {
			return fmt.Errorf("collecting usage: %w", err)
		}
		if err := usage.Append(cfg.Usage.OutputFile, samples); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Usage.OutputFile, err)
		}
		printSamples(samples)
		return nil
	},
}

var usageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest readings from a usage history file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file := cfg.Usage.OutputFile
		if usageEnv != "" {
			mapped, ok := cfg.Usage.Files[usageEnv]
			if !ok {
				return fmt.Errorf("no usage file configured for environment %q", usageEnv)
			}
			file = mapped
		}

		samples, err := usage.Read(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		printSamples(usage.Latest(samples))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageCollectCmd)
	usageCmd.AddCommand(usageShowCmd)

	usageShowCmd.Flags().StringVar(&usageEnv, "env", "", "environment alias from the usage files map")
}

func printSamples(samples []usage.Sample) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Timestamp", "Metric", "Value", "Threshold", "Healthy")
	for _, s := range samples {
		healthy := "no"
		if s.Healthy() {
			healthy = "yes"
		}
		table.Append([]string{
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Metric,
			fmt.Sprintf("%.1f", s.Value),
			fmt.Sprintf("%.0f", s.Threshold),
			healthy,
		})
	}
	table.Render()
}
