package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/logger"
	"github.com/slopwatch/slopwatch/internal/run"
)

const metricsReadHeaderTimeout = 5 * time.Second

func scheduleCommand() *cobra.Command {
	var (
		spec        string
		keywords    []string
		targetCount int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run discovery sessions on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.close()

			opts := run.Options{
				Keywords:    keywords,
				TargetCount: targetCount,
			}
			applyConfigDefaults(&opts, d)

			// Metrics endpoint is only served in long-running mode.
			mux := http.NewServeMux()
			mux.Handle("/metrics", d.telemetry.Handler())
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", d.cfg.Service.MetricsPort),
				Handler:           mux,
				ReadHeaderTimeout: metricsReadHeaderTimeout,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					d.log.Error("metrics server failed", logger.Error(err))
				}
			}()

			c := cron.New()
			_, err = c.AddFunc(spec, func() {
				report, runErr := d.controller.Run(cmd.Context(), opts)
				if runErr != nil {
					d.log.Error("scheduled run failed", logger.Error(runErr))
					return
				}
				d.log.Info("scheduled run complete",
					logger.String("run_id", report.Summary.RunID),
					logger.Int("processed", report.Summary.Processed))
			})
			if err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", spec, err)
			}

			c.Start()
			d.log.Info("scheduler started",
				logger.String("spec", spec),
				logger.Int("metrics_port", d.cfg.Service.MetricsPort))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			ctx := c.Stop()
			<-ctx.Done()
			return srv.Close()
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "0 */6 * * *", "cron schedule for runs")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "search keywords to discover candidates from")
	cmd.Flags().IntVar(&targetCount, "target", 0, "stop each run after this many results")

	return cmd
}
