// Package report turns the event sources into the kiosk slide set: month,
// week and day timelines plus the month calendar grid.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"kioskcal/internal/config"
	"kioskcal/internal/convert"
	"kioskcal/internal/ics"
	"kioskcal/internal/layout"
	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
	"kioskcal/internal/publish"
	"kioskcal/internal/render"
	"kioskcal/internal/sheet"
	"kioskcal/internal/slides"
)

// ErrNoSources is returned when neither a workbook nor an ICS feed is
// configured.
var ErrNoSources = errors.New("report: no event sources configured")

// Kind selects which slides a run produces.
type Kind string

const (
	KindMonths   Kind = "months"
	KindRolling  Kind = "rolling"
	KindCalendar Kind = "calendar"
	KindWeekly   Kind = "weekly"
	KindDaily    Kind = "daily"
)

// AllKinds is the order a full refresh runs in.
var AllKinds = []Kind{KindRolling, KindCalendar, KindWeekly, KindDaily}

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMonths, KindRolling, KindCalendar, KindWeekly, KindDaily:
		return k, nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

// Request is one run. Year and Months only apply to KindMonths; a zero Year
// means the current year.
type Request struct {
	Kind   Kind
	Year   int
	Months []time.Month
}

// Summary describes what a run wrote.
type Summary struct {
	Kind      Kind
	Files     []string
	Removed   []string
	Dropped   []layout.Drop
	Optimized int
	Manifest  slides.Manifest
	Published bool
}

// Runner loads events and renders reports. Runs are serialized.
type Runner struct {
	cfg       *config.Config
	loc       *time.Location
	calendar  *render.Calendar
	gantt     *render.Gantt
	fetcher   *ics.Fetcher
	publisher *publish.Git

	// Now defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// NewRunner prepares fonts and sources from cfg.
func NewRunner(cfg *config.Config) (*Runner, error) {
	cal, err := render.NewCalendar(render.DefaultCalendarStyle())
	if err != nil {
		return nil, err
	}
	gantt, err := render.NewGantt(render.DefaultGanttStyle())
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		loc:      ResolveLocation(cfg.Timezone),
		calendar: cal,
		gantt:    gantt,
		fetcher:  ics.NewFetcher(cfg.CacheDir),
		Now:      time.Now,
	}
	if cfg.Publish.Enabled {
		r.publisher = &publish.Git{
			RepoDir: cfg.Publish.RepoDir,
			Remote:  cfg.Publish.Remote,
			Branch:  cfg.Publish.Branch,
		}
	}
	return r, nil
}

// Location is the zone "today" is taken in.
func (r *Runner) Location() *time.Location { return r.loc }

// Today is the current date in the configured zone.
func (r *Runner) Today() time.Time { return model.Date(r.Now().In(r.loc)) }

// LoadEvents reads the workbook and ICS feeds. ICS recurrences are expanded
// over [from, to]. A source that fails is logged and skipped unless every
// configured source failed.
func (r *Runner) LoadEvents(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	var (
		events  []model.Event
		errs    []error
		sources int
	)

	if wb := r.cfg.Workbook; wb.Path != "" {
		sources++
		evs, err := sheet.Load(wb.Path, wb.Sheet, sheet.Columns{
			Name:  wb.NameColumn,
			Start: wb.StartColumn,
			End:   wb.EndColumn,
			Owner: wb.OwnerColumn,
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			events = append(events, evs...)
		}
	}

	if feeds := icsSources(r.cfg.ICS); len(feeds) > 0 {
		sources++
		evs, err := ics.Collect(ctx, r.fetcher, feeds, ics.ExpandConfig{
			DisplayLocation: r.loc,
			RangeStart:      from,
			RangeEnd:        to.AddDate(0, 0, 1),
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			events = append(events, evs...)
		}
	}

	if sources == 0 {
		return nil, ErrNoSources
	}
	if len(errs) == sources {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		appLog.Error("event source failed; continuing with the rest", err)
	}

	appLog.Debug("events loaded", "count", len(events))
	return events, nil
}

func icsSources(cfgs []config.ICSConfig) []ics.Source {
	out := make([]ics.Source, 0, len(cfgs))
	for _, c := range cfgs {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.URL
		}
		out = append(out, ics.Source{ID: id, URL: c.URL, Owner: c.Owner})
	}
	return out
}

// Run renders the slides for req, then optimizes, writes the manifest and
// publishes as configured.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := Summary{Kind: req.Kind}
	today := r.Today()

	from, to, err := r.window(req, today)
	if err != nil {
		return sum, err
	}
	events, err := r.LoadEvents(ctx, from, to)
	if err != nil {
		return sum, err
	}

	appLog.Info("report run", "kind", req.Kind, "from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))

	if err := r.renderKind(req, today, events, &sum); err != nil {
		return sum, err
	}

	if r.cfg.Dashboard {
		if err := r.finishDashboard(&sum); err != nil {
			return sum, err
		}
	}

	if r.publisher != nil {
		committed, err := r.publisher.Publish(ctx, commitMessage(req.Kind, today), r.cfg.OutputDir)
		sum.Published = committed
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (r *Runner) renderKind(req Request, today time.Time, events []model.Event, sum *Summary) error {
	dir := r.cfg.OutputDir

	switch req.Kind {
	case KindMonths:
		year := req.Year
		if year == 0 {
			year = today.Year()
		}
		for _, m := range req.Months {
			path, err := r.renderMonthGantt(events, YearMonth{Year: year, Month: m})
			if err != nil {
				return err
			}
			sum.Files = append(sum.Files, path)
		}

	case KindRolling:
		months := RollingMonths(today, r.cfg.RollingMonths)
		keep := make([]string, 0, len(months))
		for _, ym := range months {
			keep = append(keep, slides.MonthChartName(ym.Year, ym.Month))
		}
		removed, err := slides.CleanupMonthCharts(dir, keep)
		if err != nil {
			appLog.Error("cleanup of old month charts failed", err)
		}
		sum.Removed = append(sum.Removed, removed...)
		for _, ym := range months {
			path, err := r.renderMonthGantt(events, ym)
			if err != nil {
				return err
			}
			sum.Files = append(sum.Files, path)
		}

	case KindCalendar:
		ym := YearMonth{Year: today.Year(), Month: today.Month()}
		removed, err := slides.Cleanup(dir, slides.CalendarPrefix+"*.png", []string{slides.CalendarName(ym.Year, ym.Month)})
		if err != nil {
			appLog.Error("cleanup of old calendars failed", err)
		}
		sum.Removed = append(sum.Removed, removed...)
		path, dropped, err := r.renderCalendar(events, ym)
		if err != nil {
			return err
		}
		sum.Files = append(sum.Files, path)
		sum.Dropped = dropped

	case KindWeekly:
		monday, sunday := CurrentWeek(today)
		removed, err := slides.Cleanup(dir, slides.WeeklyPrefix+"*.png", []string{slides.WeeklyChartName(monday)})
		if err != nil {
			appLog.Error("cleanup of old weekly charts failed", err)
		}
		sum.Removed = append(sum.Removed, removed...)
		title := fmt.Sprintf("Happening This Week: %s - %s", monday.Format("Jan 02"), sunday.Format("Jan 02, 2006"))
		path, err := r.renderWindow(events, layout.ViewWeek, monday, sunday, title, slides.WeeklyChartName(monday))
		if err != nil {
			return err
		}
		sum.Files = append(sum.Files, path)

	case KindDaily:
		day := CurrentDay(today)
		removed, err := slides.Cleanup(dir, slides.DailyPrefix+"*.png", []string{slides.DailyChartName(day)})
		if err != nil {
			appLog.Error("cleanup of old daily charts failed", err)
		}
		sum.Removed = append(sum.Removed, removed...)
		title := "Happening Today: " + day.Format("Monday, January 02, 2006")
		path, err := r.renderWindow(events, layout.ViewDay, day, day, title, slides.DailyChartName(day))
		if err != nil {
			return err
		}
		sum.Files = append(sum.Files, path)

	default:
		return fmt.Errorf("unknown report kind %q", req.Kind)
	}
	return nil
}

func (r *Runner) finishDashboard(sum *Summary) error {
	names, err := slides.List(r.cfg.OutputDir)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(names))
	for _, n := range names {
		paths = append(paths, filepath.Join(r.cfg.OutputDir, n))
	}
	sum.Optimized = len(convert.OptimizeAll(paths))

	m, err := slides.WriteManifest(r.cfg.OutputDir, r.Now())
	if err != nil {
		return err
	}
	sum.Manifest = m
	return nil
}

// window is the date range whose events a request needs.
func (r *Runner) window(req Request, today time.Time) (from, to time.Time, err error) {
	switch req.Kind {
	case KindMonths:
		if len(req.Months) == 0 {
			return from, to, errors.New("report: at least one month is required")
		}
		year := req.Year
		if year == 0 {
			year = today.Year()
		}
		lo, hi := req.Months[0], req.Months[0]
		for _, m := range req.Months {
			lo, hi = min(lo, m), max(hi, m)
		}
		return YearMonth{year, lo}.First(), YearMonth{year, hi}.Last(), nil
	case KindRolling:
		months := RollingMonths(today, r.cfg.RollingMonths)
		return months[0].First(), months[len(months)-1].Last(), nil
	case KindCalendar:
		ym := YearMonth{today.Year(), today.Month()}
		return ym.First(), ym.Last(), nil
	case KindWeekly:
		mon, sun := CurrentWeek(today)
		return mon, sun, nil
	case KindDaily:
		return today, today, nil
	}
	return from, to, fmt.Errorf("unknown report kind %q", req.Kind)
}

func commitMessage(kind Kind, today time.Time) string {
	switch kind {
	case KindCalendar:
		return "Auto-update: Calendar view - " + today.Format("January 2006")
	case KindRolling, KindMonths:
		return "Auto-update: Monthly charts - " + today.Format("January 2006")
	case KindWeekly:
		mon, _ := CurrentWeek(today)
		return "Auto-update: Weekly chart - week of " + mon.Format("2006-01-02")
	case KindDaily:
		return "Auto-update: Daily chart - " + today.Format("2006-01-02")
	}
	return ""
}

// ResolveLocation loads an IANA zone, falling back to time.Local.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
