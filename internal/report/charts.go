package report

import (
	"path/filepath"
	"time"

	"kioskcal/internal/layout"
	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
	"kioskcal/internal/render"
	"kioskcal/internal/slides"
)

// Layout places events on the month calendar of ym exactly as the calendar
// slide would, with labels fitted to the slide's cell width.
func (r *Runner) Layout(events []model.Event, ym YearMonth) (layout.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.monthLayout(events, ym)
}

func (r *Runner) monthLayout(events []model.Event, ym YearMonth) (layout.Result, error) {
	shown := layout.SortForStacking(layout.Filter(events, r.cfg.Excludes, layout.ViewCalendar))
	return layout.Month(shown, layout.Options{
		Year:           ym.Year,
		Month:          ym.Month,
		Today:          r.Today(),
		MaxSlotsPerDay: r.cfg.MaxSlotsPerDay,
		Colors:         r.cfg.Colors,
		Metrics:        r.calendar.LabelMetrics(),
		CellWidth:      r.calendar.CellWidth(),
		LabelPadding:   r.calendar.LabelPadding(),
	})
}

func (r *Runner) renderCalendar(events []model.Event, ym YearMonth) (string, []layout.Drop, error) {
	res, err := r.monthLayout(events, ym)
	if err != nil {
		return "", nil, err
	}
	for _, d := range res.Dropped {
		appLog.Info("event not shown on calendar",
			"event", d.Span.Event.Name,
			"week", d.Span.WeekIndex,
			"reason", d.Reason,
		)
	}

	legend := render.Legend(placedEvents(res.Placed), r.cfg.Colors)
	img := r.calendar.Draw(res, ym.String(), legend)

	path := filepath.Join(r.cfg.OutputDir, slides.CalendarName(ym.Year, ym.Month))
	if err := render.SavePNG(path, img); err != nil {
		return "", nil, err
	}
	appLog.Info("saved calendar", "path", path, "placed", len(res.Placed), "dropped", len(res.Dropped), "slot_rows", res.SlotRows)
	return path, res.Dropped, nil
}

func (r *Runner) renderMonthGantt(events []model.Event, ym YearMonth) (string, error) {
	return r.renderWindow(events, layout.ViewMonth, ym.First(), ym.Last(), ym.String()+" Events", slides.MonthChartName(ym.Year, ym.Month))
}

func (r *Runner) renderWindow(events []model.Event, view layout.View, from, to time.Time, title, name string) (string, error) {
	bars, err := layout.Window(layout.Filter(events, r.cfg.Excludes, view), from, to)
	if err != nil {
		return "", err
	}

	shown := make([]model.Event, 0, len(bars))
	for _, b := range bars {
		shown = append(shown, b.Event)
	}
	img := r.gantt.Draw(bars, from, to, title, r.cfg.Colors, render.Legend(shown, r.cfg.Colors))

	path := filepath.Join(r.cfg.OutputDir, name)
	if err := render.SavePNG(path, img); err != nil {
		return "", err
	}
	appLog.Info("saved chart", "path", path, "events", len(bars))
	return path, nil
}

func placedEvents(placed []layout.PlacedSpan) []model.Event {
	out := make([]model.Event, 0, len(placed))
	for _, p := range placed {
		out = append(out, p.Event)
	}
	return out
}
