package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kioskcal/internal/model"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// First is the first day of the month.
func (ym YearMonth) First() time.Time { return model.NewDate(ym.Year, ym.Month, 1) }

// Last is the last day of the month.
func (ym YearMonth) Last() time.Time { return ym.First().AddDate(0, 1, -1) }

func (ym YearMonth) String() string { return fmt.Sprintf("%s %d", ym.Month, ym.Year) }

// ParseMonth accepts a month number ("7", "07"), an abbreviation ("Jul")
// or a full name ("July"), case-insensitively.
func ParseMonth(s string) (time.Month, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(clean); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("unrecognized month: %s", s)
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if clean == name || clean == name[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unrecognized month: %s", s)
}

// ParseMonths parses every value and returns the distinct months in
// calendar order.
func ParseMonths(values []string) ([]time.Month, error) {
	var seen [13]bool
	for _, v := range values {
		m, err := ParseMonth(v)
		if err != nil {
			return nil, err
		}
		seen[m] = true
	}
	out := make([]time.Month, 0, len(values))
	for m := time.January; m <= time.December; m++ {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out, nil
}

// RollingMonths returns the n months following today's month.
func RollingMonths(today time.Time, n int) []YearMonth {
	first := model.NewDate(today.Year(), today.Month(), 1)
	out := make([]YearMonth, 0, n)
	for i := 1; i <= n; i++ {
		d := first.AddDate(0, i, 0)
		out = append(out, YearMonth{Year: d.Year(), Month: d.Month()})
	}
	return out
}

// CurrentWeek returns the Monday and Sunday of today's week.
func CurrentWeek(today time.Time) (monday, sunday time.Time) {
	day := model.Date(today)
	sinceMonday := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -sinceMonday)
	return monday, monday.AddDate(0, 0, 6)
}

// CurrentDay returns today's date.
func CurrentDay(today time.Time) time.Time { return model.Date(today) }
