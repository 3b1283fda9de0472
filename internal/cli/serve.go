package cli

import (
	"time"

	"github.com/spf13/cobra"

	appLog "kioskcal/internal/log"
	"kioskcal/internal/report"
	"kioskcal/internal/schedule"
	"kioskcal/internal/web"
)

const jobTimeout = 10 * time.Minute

func newServeCmd(a *app) *cobra.Command {
	var (
		listen     string
		noSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve slides to the kiosk and run the scheduled reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			ctx := cmd.Context()

			runner, err := report.NewRunner(a.cfg)
			if err != nil {
				return err
			}

			appLog.Info("effective config",
				"listen", a.cfg.Listen,
				"timezone", runner.Location().String(),
				"output_dir", a.cfg.OutputDir,
				"workbook", a.cfg.Workbook.Path,
				"ics_count", len(a.cfg.ICS),
				"dashboard", a.cfg.Dashboard,
				"publish", a.cfg.Publish.Enabled,
			)

			if !noSchedule {
				sched, err := schedule.New(ctx, runner.Location(), schedule.Jobs(a.cfg.Schedule), runner.Run, jobTimeout)
				if err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			return web.StartServer(ctx, a.cfg, runner)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "serve only; do not run scheduled reports")
	return cmd
}

func newScheduleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduled reports without the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := report.NewRunner(a.cfg)
			if err != nil {
				return err
			}
			sched, err := schedule.New(ctx, runner.Location(), schedule.Jobs(a.cfg.Schedule), runner.Run, jobTimeout)
			if err != nil {
				return err
			}
			sched.Start()
			appLog.Info("scheduler running; waiting for signal")
			<-ctx.Done()
			sched.Stop()
			appLog.Info("scheduler stopped")
			return nil
		},
	}
}
