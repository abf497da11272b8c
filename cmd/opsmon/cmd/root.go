package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/config"
	"github.com/domzcondes/opsmon/pkg/logging"
)

var (
	cfgFile string

	cfg *config.Config
	log *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "opsmon",
	Short: "Operational monitoring for the data-integration stack",
	Long: `opsmon polls workflow, session, and batch-job execution logs from the
repository databases, probes integration services and app servers, and
delivers daily chat summaries alongside a web dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		log = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/opsmon, $HOME/.opsmon)")
}
