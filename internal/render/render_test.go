package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"kioskcal/internal/layout"
	"kioskcal/internal/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{Name: "Tech Expo", Start: model.NewDate(2025, 6, 10), End: model.NewDate(2025, 6, 12), Owner: "Darren"},
		{Name: "Medical Congress With A Very Long Name", Start: model.NewDate(2025, 6, 11), End: model.NewDate(2025, 6, 11), Owner: "Sarah"},
		{Name: "A", Start: model.NewDate(2025, 6, 28), End: model.NewDate(2025, 7, 2), Owner: ""},
	}
}

func TestCalendarDraw(t *testing.T) {
	style := DefaultCalendarStyle()
	cal, err := NewCalendar(style)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	res, err := layout.Month(sampleEvents(), layout.Options{
		Year:           2025,
		Month:          6,
		Today:          model.NewDate(2025, 6, 15),
		MaxSlotsPerDay: layout.DefaultMaxSlotsPerDay,
		Colors:         layout.DefaultColorTable(),
		Metrics:        cal.LabelMetrics(),
		CellWidth:      cal.CellWidth(),
		LabelPadding:   cal.LabelPadding(),
	})
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	for _, p := range res.Placed {
		avail := float64(p.Width())*cal.CellWidth() - cal.LabelPadding()
		if w := cal.LabelMetrics().Measure(p.DisplayText); w > avail {
			t.Errorf("label %q is %.1fpx, wider than %.1fpx", p.DisplayText, w, avail)
		}
	}

	img := cal.Draw(res, "June 2025", Legend(sampleEvents(), layout.DefaultColorTable()))
	b := img.Bounds()
	if b.Dx() != style.Width || b.Dy() != style.Height {
		t.Fatalf("image size = %v, want %dx%d", b.Size(), style.Width, style.Height)
	}

	path := filepath.Join(t.TempDir(), "june.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Fatalf("saved file is not a PNG: %v", err)
	}
}

func TestGanttDraw(t *testing.T) {
	g, err := NewGantt(DefaultGanttStyle())
	if err != nil {
		t.Fatalf("NewGantt: %v", err)
	}

	from, to := model.NewDate(2025, 6, 1), model.NewDate(2025, 6, 30)
	bars, err := layout.Window(sampleEvents(), from, to)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}

	img := g.Draw(bars, from, to, "June 2025", layout.DefaultColorTable(), nil)
	if got, want := img.Bounds().Dy(), g.Height(len(bars)); got != want {
		t.Errorf("height = %d, want %d", got, want)
	}

	// Single-day window with no bars still renders.
	day := model.NewDate(2025, 6, 20)
	empty := g.Draw(nil, day, day, "Friday", layout.DefaultColorTable(), nil)
	if empty.Bounds().Dy() != DefaultGanttStyle().MinHeight {
		t.Errorf("empty chart height = %d", empty.Bounds().Dy())
	}
}

func TestLegend(t *testing.T) {
	colors := layout.DefaultColorTable()
	got := Legend(append(sampleEvents(), model.Event{Name: "x", Owner: "Darren"}), colors)
	if len(got) != 2 {
		t.Fatalf("legend = %+v, want Darren and Sarah", got)
	}
	if got[0].Label != "Darren" || got[1].Label != "Sarah" {
		t.Errorf("legend order = %+v", got)
	}
	if got[0].Color != colors.Lookup("Darren") {
		t.Errorf("Darren colour = %s", got[0].Color)
	}
}
