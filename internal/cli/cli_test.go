package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"kioskcal/internal/report"
)

func TestRenderRequests(t *testing.T) {
	tests := []struct {
		name    string
		opts    renderOpts
		want    []report.Request
		wantErr bool
	}{
		{
			name: "months",
			opts: renderOpts{months: []string{"Aug", "7"}, year: 2025},
			want: []report.Request{{Kind: report.KindMonths, Year: 2025, Months: []time.Month{time.July, time.August}}},
		},
		{
			name: "calendar",
			opts: renderOpts{calendar: true},
			want: []report.Request{{Kind: report.KindCalendar}},
		},
		{
			name: "all",
			opts: renderOpts{all: true},
			want: []report.Request{
				{Kind: report.KindRolling},
				{Kind: report.KindCalendar},
				{Kind: report.KindWeekly},
				{Kind: report.KindDaily},
			},
		},
		{name: "no mode", opts: renderOpts{}, wantErr: true},
		{name: "two modes", opts: renderOpts{weekly: true, daily: true}, wantErr: true},
		{name: "bad month", opts: renderOpts{months: []string{"Smarch"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.requests()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("requests = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderCommandDaily(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	const sheetName = "Marriott Marquis Pipeline"
	if _, err := f.NewSheet(sheetName); err != nil {
		t.Fatal(err)
	}
	today := time.Now().Format("2006-01-02")
	rows := [][]any{
		{"Event Name", "Event Start Date", "Event End Date", "Owner"},
		{"Lobby Reception", today, today, "Darren"},
	}
	for r, row := range rows {
		for c, v := range row {
			ref, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheetName, ref, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	wb := filepath.Join(dir, "pipeline.xlsx")
	if err := f.SaveAs(wb); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{
		"render", wb,
		"--config", filepath.Join(dir, "kioskcal.yaml"),
		"--outdir", filepath.Join(dir, "slides"),
		"--daily",
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "gantt_daily_") {
		t.Errorf("output does not list the daily chart:\n%s", out.String())
	}
}
