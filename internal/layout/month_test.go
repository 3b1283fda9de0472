package layout

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"kioskcal/internal/model"
)

func TestMonth(t *testing.T) {
	events := SortForStacking([]model.Event{
		{Name: "Pharmaceutical Leadership Summit", Owner: "Darren", Start: model.NewDate(2025, time.June, 2), End: model.NewDate(2025, time.June, 3)},
		{Name: "Gala", Owner: "", Start: model.NewDate(2025, time.June, 12), End: model.NewDate(2025, time.June, 17)},
		{Name: "Spring Fair", Owner: "Sarah", Start: model.NewDate(2025, time.May, 28), End: model.NewDate(2025, time.June, 1)},
	})

	res, err := Month(events, Options{
		Year:           2025,
		Month:          time.June,
		Today:          model.NewDate(2025, time.June, 12),
		MaxSlotsPerDay: DefaultMaxSlotsPerDay,
		Colors:         DefaultColorTable(),
		Metrics:        CharMetrics{CharWidth: 1},
		CellWidth:      10,
		LabelPadding:   2,
	})
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	if len(res.Placed) != 4 || len(res.Dropped) != 0 {
		t.Fatalf("placed %d dropped %d, want 4 and 0", len(res.Placed), len(res.Dropped))
	}
	if res.SlotRows != 1 {
		t.Errorf("SlotRows = %d, want 1", res.SlotRows)
	}
	if w, c, ok := res.Grid.Today(); !ok || w != 1 || c != 4 {
		t.Errorf("Today() = (%d, %d, %v), want (1, 4, true)", w, c, ok)
	}

	// Descending start order: Gala (2 spans), Summit, Fair.
	gala := res.Placed[0]
	if gala.Event.Name != "Gala" || gala.Color != "#fde047" || gala.DisplayText != "Gala" {
		t.Errorf("gala = %+v", gala)
	}
	summit := res.Placed[2]
	if summit.Color != "#6ee7b7" {
		t.Errorf("summit colour = %s", summit.Color)
	}
	// Two columns of width 10 minus padding leaves 18 characters.
	if summit.DisplayText != "Pharmaceutical…" {
		t.Errorf("summit label = %q", summit.DisplayText)
	}
	fair := res.Placed[3]
	if fair.Color != "#fda4af" || fair.StartCol != 0 || fair.EndCol != 0 {
		t.Errorf("fair = %+v", fair)
	}
	if !strings.HasSuffix(fair.DisplayText, Ellipsis) {
		t.Errorf("fair label %q should be truncated into 8 units", fair.DisplayText)
	}
}

func TestMonthWithoutMetricsKeepsNames(t *testing.T) {
	events := []model.Event{
		{Name: "A very long event name that would never fit", Start: model.NewDate(2025, time.June, 5), End: model.NewDate(2025, time.June, 5)},
	}
	res, err := Month(events, Options{Year: 2025, Month: time.June, MaxSlotsPerDay: 1, Colors: DefaultColorTable()})
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if res.Placed[0].DisplayText != events[0].Name {
		t.Errorf("label = %q", res.Placed[0].DisplayText)
	}
}

func TestMonthErrors(t *testing.T) {
	if _, err := Month(nil, Options{Year: 2025, Month: 13}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("month 13: err = %v", err)
	}
	if _, err := Month(nil, Options{Year: 2025, Month: time.June, MaxSlotsPerDay: -2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative cap: err = %v", err)
	}
	res, err := Month(nil, Options{Year: 2025, Month: time.June, MaxSlotsPerDay: 3})
	if err != nil {
		t.Fatalf("empty month: %v", err)
	}
	if len(res.Placed) != 0 || len(res.Grid.Weeks) != 5 {
		t.Errorf("empty month result = %+v", res)
	}
}

func TestMonthParallelCalls(t *testing.T) {
	events := []model.Event{
		{Name: "Quarterly Review", Start: model.NewDate(2025, time.January, 20), End: model.NewDate(2025, time.December, 10)},
	}

	var wg sync.WaitGroup
	results := make([]Result, 12)
	errs := make([]error, 12)
	for i := range 12 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Month(events, Options{Year: 2025, Month: time.Month(i + 1), MaxSlotsPerDay: 2})
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("month %d: %v", i+1, errs[i])
		}
		if len(res.Placed) == 0 {
			t.Errorf("month %d: no spans placed", i+1)
		}
		for _, p := range res.Placed {
			if p.Slot != 0 {
				t.Errorf("month %d: slot %d for the only event", i+1, p.Slot)
			}
		}
	}
}
