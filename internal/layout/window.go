package layout

import (
	"sort"
	"time"

	"kioskcal/internal/model"
)

// Bar is an event clipped to a Gantt chart window.
type Bar struct {
	Event model.Event
	Start time.Time
	End   time.Time // inclusive
}

// Days is the clipped length in whole days.
func (b Bar) Days() int { return model.DaysBetween(b.Start, b.End) + 1 }

// Window clips events to the inclusive date range [from, to] and returns
// bars ordered by descending original start date (most recent on top of
// the chart). Events that do not touch the window are left out.
func Window(events []model.Event, from, to time.Time) ([]Bar, error) {
	if err := Validate(events); err != nil {
		return nil, err
	}
	from, to = model.Date(from), model.Date(to)
	if from.After(to) {
		return nil, invalidf("window starts %s after it ends %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	bars := make([]Bar, 0, len(events))
	for _, ev := range events {
		s, e := model.Date(ev.Start), model.Date(ev.End)
		if e.Before(from) || s.After(to) {
			continue
		}
		if s.Before(from) {
			s = from
		}
		if e.After(to) {
			e = to
		}
		bars = append(bars, Bar{Event: ev, Start: s, End: e})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Event.Start.After(bars[j].Event.Start)
	})
	return bars, nil
}

// SortForStacking orders events by descending start date, the stacking
// priority the month calendar expects. Ties keep their input order.
func SortForStacking(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.After(out[j].Start)
	})
	return out
}
