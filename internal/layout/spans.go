package layout

import (
	"kioskcal/internal/model"
)

// Span is one contiguous run of an event inside a single week row. An event
// crossing a Saturday/Sunday boundary yields one Span per row it touches.
type Span struct {
	Event     model.Event `json:"-"`
	WeekIndex int         `json:"week"`
	StartCol  int         `json:"start_col"`
	EndCol    int         `json:"end_col"`
}

// Width is the number of day columns the span covers.
func (s Span) Width() int { return s.EndCol - s.StartCol + 1 }

// Validate rejects events whose start falls after their end.
func Validate(events []model.Event) error {
	for i, ev := range events {
		if model.Date(ev.Start).After(model.Date(ev.End)) {
			return invalidf("event %d (%q) starts %s after it ends %s",
				i, ev.Name, ev.Start.Format("2006-01-02"), ev.End.Format("2006-01-02"))
		}
	}
	return nil
}

// ResolveSpans clips every event to the grid's month and splits it into
// week-row spans. Output keeps the input event order; spans of one event
// are ordered by week index.
func ResolveSpans(events []model.Event, grid MonthGrid) ([]Span, error) {
	if err := Validate(events); err != nil {
		return nil, err
	}

	monthStart, monthEnd := grid.Start(), grid.End()
	spans := make([]Span, 0, len(events))

	for _, ev := range events {
		start, end := model.Date(ev.Start), model.Date(ev.End)
		if start.Before(monthStart) {
			start = monthStart
		}
		if end.After(monthEnd) {
			end = monthEnd
		}
		if start.After(end) {
			continue
		}

		var cur *Span
		for day := start.Day(); day <= end.Day(); day++ {
			week, col, ok := grid.Locate(day)
			if !ok {
				continue
			}
			if cur != nil && cur.WeekIndex == week && col == cur.EndCol+1 {
				cur.EndCol = col
				continue
			}
			if cur != nil {
				spans = append(spans, *cur)
			}
			cur = &Span{Event: ev, WeekIndex: week, StartCol: col, EndCol: col}
		}
		if cur != nil {
			spans = append(spans, *cur)
		}
	}

	return spans, nil
}
