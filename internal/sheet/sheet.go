// Package sheet loads events from the pipeline workbook.
package sheet

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
)

// Columns names the header cells that hold each event field.
type Columns struct {
	Name  string
	Start string
	End   string
	Owner string // optional
}

// dateLayouts are tried in order for cells that are not Excel serial dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// Load reads every data row of sheetName and returns the events sorted by
// ascending start date. Rows without a name or with unreadable dates are
// skipped and logged; a missing required column is an error.
func Load(path, sheetName string, cols Columns) ([]model.Event, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet: read %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet: %q is empty", sheetName)
	}

	idx, err := headerIndex(rows[0], cols)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		name := strings.TrimSpace(cell(row, idx.name))
		if name == "" {
			continue
		}
		start, err := ParseDate(cell(row, idx.start))
		if err != nil {
			appLog.Error("sheet: bad start date, row skipped", err, "row", rowNum, "event", name)
			continue
		}
		end, err := ParseDate(cell(row, idx.end))
		if err != nil {
			appLog.Error("sheet: bad end date, row skipped", err, "row", rowNum, "event", name)
			continue
		}
		owner := ""
		if idx.owner >= 0 {
			owner = strings.TrimSpace(cell(row, idx.owner))
		}
		events = append(events, model.Event{Name: name, Start: start, End: end, Owner: owner})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	appLog.Info("sheet load completed", "path", path, "sheet", sheetName, "event_count", len(events))
	return events, nil
}

type columnIndex struct {
	name, start, end, owner int
}

func headerIndex(header []string, cols Columns) (columnIndex, error) {
	find := func(label string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(label)) {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		name:  find(cols.Name),
		start: find(cols.Start),
		end:   find(cols.End),
		owner: -1,
	}
	if cols.Owner != "" {
		idx.owner = find(cols.Owner)
	}

	var missing []string
	if idx.name < 0 {
		missing = append(missing, cols.Name)
	}
	if idx.start < 0 {
		missing = append(missing, cols.Start)
	}
	if idx.end < 0 {
		missing = append(missing, cols.End)
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("sheet: missing columns %q", missing)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseDate turns a raw cell into a naive local date. Numeric cells are
// Excel serial dates (1900 system); anything else is matched against a few
// common text layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date cell")
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return model.NewDate(t.Year(), t.Month(), t.Day()), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
