package layout

import (
	"time"

	"kioskcal/internal/model"
)

// DaysPerWeek is the width of every grid row.
const DaysPerWeek = 7

// DayCell is one square of the month grid. Day is 0 for cells that belong
// to the previous or next month.
type DayCell struct {
	Day     int  `json:"day"`
	IsToday bool `json:"is_today,omitempty"`
}

// InMonth reports whether the cell holds a day of the grid's month.
func (c DayCell) InMonth() bool { return c.Day > 0 }

// Week is one grid row, Sunday first.
type Week [DaysPerWeek]DayCell

// MonthGrid is the Sunday-first calendar layout of a single month.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Weeks []Week     `json:"weeks"`

	offset   int // weekday column of day 1
	dayCount int
}

// BuildGrid lays out year/month as week rows. today marks at most one cell;
// pass the zero time to mark none.
func BuildGrid(year int, month time.Month, today time.Time) (MonthGrid, error) {
	if month < time.January || month > time.December {
		return MonthGrid{}, invalidf("month %d out of range 1..12", int(month))
	}

	first := model.NewDate(year, month, 1)
	offset := int(first.Weekday()) // Sunday == 0
	dayCount := daysIn(year, month)

	weeks := make([]Week, (offset+dayCount+DaysPerWeek-1)/DaysPerWeek)
	todayDay := 0
	if !today.IsZero() && today.Year() == year && today.Month() == month {
		todayDay = today.Day()
	}

	for day := 1; day <= dayCount; day++ {
		idx := offset + day - 1
		weeks[idx/DaysPerWeek][idx%DaysPerWeek] = DayCell{
			Day:     day,
			IsToday: day == todayDay,
		}
	}

	return MonthGrid{
		Year:     year,
		Month:    month,
		Weeks:    weeks,
		offset:   offset,
		dayCount: dayCount,
	}, nil
}

// Start returns the first day of the month.
func (g MonthGrid) Start() time.Time { return model.NewDate(g.Year, g.Month, 1) }

// End returns the last day of the month (inclusive).
func (g MonthGrid) End() time.Time { return model.NewDate(g.Year, g.Month, g.dayCount) }

// DayCount is the number of days in the month.
func (g MonthGrid) DayCount() int { return g.dayCount }

// Locate returns the row and column of day within the grid.
func (g MonthGrid) Locate(day int) (week, col int, ok bool) {
	if day < 1 || day > g.dayCount {
		return 0, 0, false
	}
	idx := g.offset + day - 1
	return idx / DaysPerWeek, idx % DaysPerWeek, true
}

// Today returns the position of the today cell, if any.
func (g MonthGrid) Today() (week, col int, ok bool) {
	for w, row := range g.Weeks {
		for c, cell := range row {
			if cell.IsToday {
				return w, c, true
			}
		}
	}
	return 0, 0, false
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
