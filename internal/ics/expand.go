package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation decides which calendar day a timed event falls on.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrences (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ToEvents expands parsed VEVENTs into board events inside the configured
// range. The source owner is used when an event has no ORGANIZER name.
func ToEvents(parsed []ParsedEvent, cfg ExpandConfig) ([]model.Event, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	out := make([]model.Event, 0, len(parsed))
	for _, ev := range parsed {
		if ev.RawRRule == "" {
			if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				out = append(out, toEvent(ev, ev.Start, ev.End, cfg.DisplayLocation))
			}
			continue
		}

		occ, hitCap := expandRecurring(ev, cfg)
		if hitCap {
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
		out = append(out, occ...)
	}
	return out, nil
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	// Widen the lower bound so occurrences that began before the range but
	// are still running get included.
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		out = append(out, toEvent(ev, s, s.Add(dur), cfg.DisplayLocation))
	}
	return out, hitCap
}

// toEvent converts an instance into an inclusive day range. ICS end times
// are exclusive, so an end landing exactly on midnight belongs to the
// previous day.
func toEvent(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Event {
	if !ev.AllDay {
		start, end = start.In(loc), end.In(loc)
	}
	s := model.NewDate(start.Year(), start.Month(), start.Day())
	e := model.NewDate(end.Year(), end.Month(), end.Day())
	if e.After(s) && end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		e = e.AddDate(0, 0, -1)
	}
	if e.Before(s) {
		e = s
	}

	owner := ev.Organizer
	if owner == "" {
		owner = ev.Source.Owner
	}
	return model.Event{Name: ev.Summary, Start: s, End: e, Owner: owner}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
