package sheet

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"kioskcal/internal/model"
)

var defaultColumns = Columns{
	Name:  "Event Name",
	Start: "Event Start Date",
	End:   "Event End Date",
	Owner: "Owner",
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	for r, row := range rows {
		for c, v := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, ref, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, "Pipeline", [][]any{
		{"Owner", "Event Name", "Event Start Date", "Event End Date"},
		{"Darren", "Tech Expo", "2025-07-10", "2025-07-12"},
		{"", "Spring Fair", 45836, 45840},
		{"Sarah", "", "2025-07-01", "2025-07-01"},
		{"Dylan", "Broken Row", "someday", "2025-07-01"},
		{"Eder", "Board Dinner", "6/3/2025", "6/3/2025"},
	})

	events, err := Load(path, "Pipeline", defaultColumns)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []model.Event{
		{Name: "Board Dinner", Owner: "Eder", Start: model.NewDate(2025, time.June, 3), End: model.NewDate(2025, time.June, 3)},
		{Name: "Spring Fair", Owner: "", Start: model.NewDate(2025, time.June, 28), End: model.NewDate(2025, time.July, 2)},
		{Name: "Tech Expo", Owner: "Darren", Start: model.NewDate(2025, time.July, 10), End: model.NewDate(2025, time.July, 12)},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %+v, want %d", len(events), events, len(want))
	}
	for i, w := range want {
		g := events[i]
		if g.Name != w.Name || g.Owner != w.Owner || !g.Start.Equal(w.Start) || !g.End.Equal(w.End) {
			t.Errorf("event %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeWorkbook(t, "Pipeline", [][]any{
		{"Event Name", "Start"},
		{"Tech Expo", "2025-07-10"},
	})

	_, err := Load(path, "Pipeline", defaultColumns)
	if err == nil || !strings.Contains(err.Error(), "Event Start Date") {
		t.Fatalf("err = %v, want missing column error", err)
	}
}

func TestLoadUnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Pipeline", [][]any{{"Event Name"}})
	if _, err := Load(path, "Nope", defaultColumns); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "45658", want: model.NewDate(2025, time.January, 1)},
		{raw: "2025-06-28", want: model.NewDate(2025, time.June, 28)},
		{raw: "6/28/2025", want: model.NewDate(2025, time.June, 28)},
		{raw: "Jun 28, 2025", want: model.NewDate(2025, time.June, 28)},
		{raw: "2025-06-28 09:30:00", want: model.NewDate(2025, time.June, 28)},
		{raw: "", wantErr: true},
		{raw: "next week", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) = %v, want error", tt.raw, got)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}
