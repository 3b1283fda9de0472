package layout

import (
	"strings"

	"kioskcal/internal/model"
)

// View identifies which report an event list is being prepared for.
type View string

const (
	ViewMonth    View = "month"    // month Gantt chart
	ViewWeek     View = "week"     // "Happening This Week"
	ViewDay      View = "day"      // "Happening Today"
	ViewCalendar View = "calendar" // month calendar grid
)

// ExcludeRule drops events whose name contains Pattern (case-insensitive).
// An empty Views list applies the rule to every view.
type ExcludeRule struct {
	Pattern string `yaml:"pattern" toml:"pattern" json:"pattern"`
	Views   []View `yaml:"views,omitempty" toml:"views,omitempty" json:"views,omitempty"`
}

// DefaultExcludeRules: in-house placeholder events never show up, ICW
// events stay out of the month views but remain on week/day charts.
func DefaultExcludeRules() []ExcludeRule {
	return []ExcludeRule{
		{Pattern: "Marriott In-House Events 2025"},
		{Pattern: "ICW", Views: []View{ViewMonth, ViewCalendar}},
	}
}

func (r ExcludeRule) appliesTo(v View) bool {
	if len(r.Views) == 0 {
		return true
	}
	for _, rv := range r.Views {
		if rv == v {
			return true
		}
	}
	return false
}

// Filter returns the events that no rule for view excludes, in input order.
func Filter(events []model.Event, rules []ExcludeRule, view View) []model.Event {
	active := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Pattern != "" && r.appliesTo(view) {
			active = append(active, strings.ToLower(r.Pattern))
		}
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		name := strings.ToLower(ev.Name)
		excluded := false
		for _, p := range active {
			if strings.Contains(name, p) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, ev)
		}
	}
	return out
}
