package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/domzcondes/opsmon/pkg/config"
	"github.com/domzcondes/opsmon/pkg/dashboard"
	"github.com/domzcondes/opsmon/pkg/logging"
	"github.com/domzcondes/opsmon/pkg/metrics"
	"github.com/domzcondes/opsmon/pkg/monitor"
	"github.com/domzcondes/opsmon/pkg/notify"
	"github.com/domzcondes/opsmon/pkg/probe"
	"github.com/domzcondes/opsmon/pkg/retry"
	"github.com/domzcondes/opsmon/pkg/schedule"
	"github.com/domzcondes/opsmon/pkg/shutdown"
	"github.com/domzcondes/opsmon/pkg/store"
)

var runNoDashboard bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring daemon",
	Long: `Starts the daily notification scheduler and, unless disabled, the web
dashboard. Runs until interrupted.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNoDashboard, "no-dashboard", false, "disable the web dashboard")
}

// buildRunner assembles the cycle runner from configuration. The returned
// cleanup closes both repository sources.
func buildRunner(m *metrics.CycleMetrics) (*monitor.Runner, func(), error) {
	etl, err := openSource(cfg.ETLSource)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ETL repository: %w", err)
	}
	hub, err := openSource(cfg.HubSource)
	if err != nil {
		etl.Close()
		return nil, nil, fmt.Errorf("opening hub repository: %w", err)
	}

	services := probe.NewServiceProbe(serviceTargets(cfg.Services), "", cfg.ProbeTimeout, log)
	appServers := probe.NewAppServerProbe(appServerTargets(cfg.AppServers), cfg.ProbeTimeout, log)
	sink := notify.NewWebhookSink(cfg.DeliveryTimeout, log)

	runner := monitor.NewRunner(cfg, etl, hub, services, appServers, sink, m, log)
	cleanup := func() {
		etl.Close()
		hub.Close()
	}
	return runner, cleanup, nil
}

// openSource opens a repository source, retrying the initial connectivity
// check so a daemon start can ride out a database restart
func openSource(sc config.SourceConfig) (store.Source, error) {
	src, err := store.NewSource(store.Config{
		Type:      sc.Type,
		DSN:       sc.DSN,
		Folder:    sc.Folder,
		JobGroups: sc.JobGroups,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := retry.Do(ctx, retry.DefaultConfig(), src.HealthCheck); err != nil {
		src.Close()
		return nil, fmt.Errorf("repository unreachable: %w", err)
	}
	return src, nil
}

func serviceTargets(configs []config.ServiceConfig) []probe.ServiceTarget {
	targets := make([]probe.ServiceTarget, 0, len(configs))
	for _, c := range configs {
		targets = append(targets, probe.ServiceTarget{
			Environment: c.Environment,
			Command:     c.Command,
			Args:        c.Args,
		})
	}
	return targets
}

func appServerTargets(configs []config.AppServerConfig) []probe.AppServerTarget {
	targets := make([]probe.AppServerTarget, 0, len(configs))
	for _, c := range configs {
		targets = append(targets, probe.AppServerTarget{
			Environment: c.Environment,
			URL:         c.URL,
			Username:    c.Username,
			Password:    c.Password,
			SkipVerify:  c.SkipVerify,
		})
	}
	return targets
}

func runDaemon(cmd *cobra.Command, args []string) error {
	hour, minute, err := config.ParseClock(cfg.ScheduleAt)
	if err != nil {
		return err
	}

	// The daemon logs to a file as well as stdout
	if fileLog, err := logging.NewFileLogger("opsmon", logging.ParseLevel(cfg.LogLevel), cfg.LogJSON); err != nil {
		log.Warn("file logging unavailable, using stdout only", map[string]interface{}{"error": err.Error()})
	} else {
		log = fileLog
		defer log.Close()
	}

	m := metrics.New()
	runner, cleanup, err := buildRunner(m)
	if err != nil {
		return err
	}
	defer cleanup()

	mgr := shutdown.New(30 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Register(func(context.Context) error {
		cancel()
		return nil
	})

	if !runNoDashboard && cfg.Dashboard.Addr != "" {
		srv := dashboard.NewServer(cfg.Dashboard, cfg.Usage.OutputFile, runner, m, log)
		httpSrv := srv.ListenAndServe()
		mgr.Register(shutdown.StopHTTPServer(httpSrv, "dashboard"))
	}

	daily := schedule.NewDaily(hour, minute, log)
	go daily.Run(ctx, func(ctx context.Context) {
		runner.RunCycle(ctx)
	})

	log.Info("daemon started", map[string]interface{}{"schedule_at": cfg.ScheduleAt})
	mgr.Wait()
	return nil
}
