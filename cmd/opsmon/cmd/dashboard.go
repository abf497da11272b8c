package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/dashboard"
	"github.com/domzcondes/opsmon/pkg/metrics"
	"github.com/domzcondes/opsmon/pkg/shutdown"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the web dashboard without the notification scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.New()
		runner, cleanup, err := buildRunner(m)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := dashboard.NewServer(cfg.Dashboard, cfg.Usage.OutputFile, runner, m, log)
		httpSrv := srv.ListenAndServe()

		mgr := shutdown.New(30 * time.Second)
		mgr.Register(shutdown.StopHTTPServer(httpSrv, "dashboard"))
		mgr.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
