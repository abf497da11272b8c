package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/metrics"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current monitoring summary to the terminal",
	Long: `Fetches the dashboard reporting window from the repositories, probes the
services, and renders the summary as tables. No webhooks are delivered.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit the summary as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := buildRunner(metrics.New())
	if err != nil {
		return err
	}
	defer cleanup()

	summary := runner.Snapshot(context.Background())

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("Monitoring summary for %s\n\n", summary.Date.Format("January 2, 2006"))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Environment", "Integration Service")
	for _, svc := range summary.Services {
		state := "unreachable"
		if svc.Reachable {
			state = "reachable"
		}
		table.Append([]string{svc.Environment, state})
	}
	table.Render()
	fmt.Println()

	table = tablewriter.NewWriter(os.Stdout)
	table.Header("Source", "Total", "Failed")
	table.Append([]string{"Workflows", fmt.Sprint(summary.Workflows.Total), fmt.Sprint(summary.Workflows.Failed)})
	table.Append([]string{"Sessions", fmt.Sprint(summary.Sessions.Total), fmt.Sprint(summary.Sessions.Failed)})
	table.Append([]string{"Batch Jobs", fmt.Sprint(summary.Jobs.Total), fmt.Sprint(summary.Jobs.Failed)})
	table.Render()
	fmt.Println()

	table = tablewriter.NewWriter(os.Stdout)
	table.Header("Job", "Status", "Ran")
	for _, item := range summary.JobItems {
		ran := "no"
		if item.Fetched {
			ran = "yes"
		}
		table.Append([]string{item.Name, item.Outcome.String(), ran})
	}
	table.Render()

	if summary.TotalRejects > 0 {
		fmt.Printf("\nTotal rejected records: %d\n", summary.TotalRejects)
	}
	return nil
}
