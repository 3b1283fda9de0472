package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"kioskcal/internal/config"
	"kioskcal/internal/slides"
)

func writePipeline(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Marriott Marquis Pipeline"
	if _, err := f.NewSheet(sheetName); err != nil {
		t.Fatal(err)
	}
	for r, row := range rows {
		for c, v := range row {
			ref, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheetName, ref, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T, dashboard bool) (*Runner, *config.Config) {
	t.Helper()
	wb := writePipeline(t, [][]any{
		{"Event Name", "Event Start Date", "Event End Date", "Owner"},
		{"Tech Expo", "2025-06-10", "2025-06-12", "Darren"},
		{"Gala", "2025-06-11", "2025-06-11", "Sarah"},
		{"Board Dinner", "2025-06-11", "2025-06-11", "Dylan"},
		{"Week Long Summit", "2025-06-09", "2025-06-15", "Eder"},
		{"ICW Block", "2025-06-11", "2025-06-11", "David"},
		{"Summer Fair", "2025-07-20", "2025-07-22", "David"},
	})

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.OutputDir = filepath.Join(t.TempDir(), "slides")
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Workbook.Path = wb
	cfg.Dashboard = dashboard

	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	r.Now = func() time.Time { return time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC) }
	return r, cfg
}

func TestRunCalendarDashboard(t *testing.T) {
	r, cfg := newTestRunner(t, true)
	stale := filepath.Join(cfg.OutputDir, "calendar_2025_05.png")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := r.Run(context.Background(), Request{Kind: KindCalendar})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := filepath.Join(cfg.OutputDir, "calendar_2025_06.png")
	if len(sum.Files) != 1 || sum.Files[0] != want {
		t.Fatalf("files = %v", sum.Files)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale calendar should be removed, stat err = %v", err)
	}
	if len(sum.Removed) != 1 || sum.Removed[0] != "calendar_2025_05.png" {
		t.Errorf("removed = %v", sum.Removed)
	}
	if sum.Optimized != 1 {
		t.Errorf("optimized = %d, want 1", sum.Optimized)
	}

	m, err := slides.ReadManifest(cfg.OutputDir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Count != 1 || m.Slides[0] != "calendar_2025_06.png" || m.RunID != sum.Manifest.RunID {
		t.Errorf("manifest = %+v", m)
	}
}

func TestRunWeeklyAndDaily(t *testing.T) {
	r, cfg := newTestRunner(t, false)

	sum, err := r.Run(context.Background(), Request{Kind: KindWeekly})
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if filepath.Base(sum.Files[0]) != "gantt_weekly_2025_06_09.png" {
		t.Errorf("weekly file = %s", sum.Files[0])
	}

	sum, err = r.Run(context.Background(), Request{Kind: KindDaily})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if filepath.Base(sum.Files[0]) != "gantt_daily_2025_06_11.png" {
		t.Errorf("daily file = %s", sum.Files[0])
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, slides.ManifestName)); !os.IsNotExist(err) {
		t.Error("manifest should only be written in dashboard mode")
	}
}

func TestRunRollingKeepsWeekly(t *testing.T) {
	r, cfg := newTestRunner(t, false)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"gantt_2025_05.png", "gantt_weekly_2025_06_09.png"} {
		if err := os.WriteFile(filepath.Join(cfg.OutputDir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := r.Run(context.Background(), Request{Kind: KindRolling})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := slides.List(cfg.OutputDir)
	want := []string{"gantt_2025_07.png", "gantt_2025_08.png", "gantt_2025_09.png", "gantt_weekly_2025_06_09.png"}
	if len(got) != len(want) {
		t.Fatalf("slides = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slides[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if len(sum.Removed) != 1 || sum.Removed[0] != "gantt_2025_05.png" {
		t.Errorf("removed = %v", sum.Removed)
	}
}

func TestLayoutDropsOverCapacity(t *testing.T) {
	r, cfg := newTestRunner(t, false)
	cfg.MaxSlotsPerDay = 2

	events, err := r.LoadEvents(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Layout(events, YearMonth{2025, time.June})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	// June 11 carries Summit, Expo, Gala and Board Dinner (ICW is excluded);
	// only two fit.
	if res.SlotRows != 2 {
		t.Errorf("SlotRows = %d, want 2", res.SlotRows)
	}
	if len(res.Dropped) != 2 {
		t.Errorf("dropped = %d, want 2", len(res.Dropped))
	}
	for _, p := range res.Placed {
		if p.Event.Name == "ICW Block" {
			t.Error("ICW events are excluded from the calendar")
		}
	}
	if _, col, ok := res.Grid.Today(); !ok || col != 3 {
		t.Errorf("today col = %d, %v; want Wednesday", col, ok)
	}
}

func TestRunWithoutSources(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.CacheDir = t.TempDir()
	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background(), Request{Kind: KindDaily}); !errors.Is(err, ErrNoSources) {
		t.Errorf("err = %v, want ErrNoSources", err)
	}
}

func TestRunMonthsRequiresMonths(t *testing.T) {
	r, _ := newTestRunner(t, false)
	if _, err := r.Run(context.Background(), Request{Kind: KindMonths}); err == nil {
		t.Error("expected error for empty month list")
	}
}
