package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"kioskcal/internal/report"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	months    []string
	year      int
	rolling   bool
	calendar  bool
	weekly    bool
	daily     bool
	all       bool
	dashboard bool
	publish   bool
	outdir    string
	sheet     string
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [workbook]",
		Short: "Render Gantt charts and the month calendar to PNG",
		Long: `Render reads the events workbook (and any ICS feeds) and writes PNG slides.

Pick one mode: --months, --rolling-window, --calendar, --weekly, --daily or --all.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Workbook.Path = args[0]
			}
			if opts.sheet != "" {
				a.cfg.Workbook.Sheet = opts.sheet
			}
			if opts.outdir != "" {
				a.cfg.OutputDir = opts.outdir
			}
			if cmd.Flags().Changed("dashboard") {
				a.cfg.Dashboard = opts.dashboard
			}
			if cmd.Flags().Changed("publish") {
				a.cfg.Publish.Enabled = opts.publish
			}

			reqs, err := opts.requests()
			if err != nil {
				return err
			}

			runner, err := report.NewRunner(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, req := range reqs {
				sum, err := runner.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				printSummary(out, sum)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.months, "months", nil, "month numbers or names (e.g. 7,8,12 or July,September)")
	f.IntVar(&opts.year, "year", 0, "calendar year for --months (default current year)")
	f.BoolVar(&opts.rolling, "rolling-window", false, "charts for the next months of the rolling window")
	f.BoolVar(&opts.calendar, "calendar", false, "calendar view for the current month")
	f.BoolVar(&opts.weekly, "weekly", false, "'Happening This Week' chart (Monday to Sunday)")
	f.BoolVar(&opts.daily, "daily", false, "'Happening Today' chart")
	f.BoolVar(&opts.all, "all", false, "rolling window, calendar, weekly and daily")
	f.BoolVar(&opts.dashboard, "dashboard", false, "optimize slides and write slides.json (overrides config)")
	f.BoolVar(&opts.publish, "publish", false, "commit and push the slides (overrides config)")
	f.StringVar(&opts.outdir, "outdir", "", "output directory (overrides config)")
	f.StringVar(&opts.sheet, "sheet", "", "worksheet name (overrides config)")

	return cmd
}

// requests turns the mode flags into report requests. Exactly one mode is
// allowed.
func (o renderOpts) requests() ([]report.Request, error) {
	modes := 0
	for _, on := range []bool{len(o.months) > 0, o.rolling, o.calendar, o.weekly, o.daily, o.all} {
		if on {
			modes++
		}
	}
	if modes == 0 {
		return nil, errors.New("--months is required unless using --rolling-window, --calendar, --weekly, --daily or --all")
	}
	if modes > 1 {
		return nil, errors.New("choose a single render mode")
	}

	switch {
	case o.all:
		reqs := make([]report.Request, 0, len(report.AllKinds))
		for _, k := range report.AllKinds {
			reqs = append(reqs, report.Request{Kind: k})
		}
		return reqs, nil
	case o.rolling:
		return []report.Request{{Kind: report.KindRolling}}, nil
	case o.calendar:
		return []report.Request{{Kind: report.KindCalendar}}, nil
	case o.weekly:
		return []report.Request{{Kind: report.KindWeekly}}, nil
	case o.daily:
		return []report.Request{{Kind: report.KindDaily}}, nil
	}

	months, err := report.ParseMonths(o.months)
	if err != nil {
		return nil, err
	}
	return []report.Request{{Kind: report.KindMonths, Year: o.year, Months: months}}, nil
}
