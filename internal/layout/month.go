package layout

import (
	"time"

	"kioskcal/internal/model"
)

// DefaultMaxSlotsPerDay keeps day cells readable on the kiosk.
const DefaultMaxSlotsPerDay = 5

// Options configures one Month layout.
type Options struct {
	Year  int
	Month time.Month
	// Today marks the today cell; zero marks none.
	Today time.Time

	MaxSlotsPerDay int
	Colors         ColorTable

	// Metrics measures labels. If nil, labels are not truncated.
	Metrics FontMetrics
	// CellWidth is the width of one day column in Metrics units; a span's
	// label gets Width()*CellWidth minus LabelPadding.
	CellWidth    float64
	LabelPadding float64
}

// Result is the complete month layout handed to a renderer.
type Result struct {
	Grid     MonthGrid
	Placed   []PlacedSpan
	Dropped  []Drop
	SlotRows int
}

// Month lays out events on the grid of opts.Year/opts.Month. events should
// already be filtered and ordered by the desired stacking priority.
func Month(events []model.Event, opts Options) (Result, error) {
	grid, err := BuildGrid(opts.Year, opts.Month, opts.Today)
	if err != nil {
		return Result{}, err
	}

	spans, err := ResolveSpans(events, grid)
	if err != nil {
		return Result{}, err
	}

	alloc, err := Allocate(spans, opts.MaxSlotsPerDay)
	if err != nil {
		return Result{}, err
	}

	for i := range alloc.Placed {
		p := &alloc.Placed[i]
		p.Color = opts.Colors.Lookup(p.Event.Owner)
		p.DisplayText = p.Event.Name
		if opts.Metrics != nil {
			avail := float64(p.Width())*opts.CellWidth - opts.LabelPadding
			p.DisplayText = Fit(p.Event.Name, avail, opts.Metrics)
		}
	}

	return Result{
		Grid:     grid,
		Placed:   alloc.Placed,
		Dropped:  alloc.Dropped,
		SlotRows: alloc.SlotRows,
	}, nil
}

// SlotHeight is Allocation.SlotHeight for the month's slot rows.
func (r Result) SlotHeight(usable, maxHeight float64) float64 {
	return Allocation{SlotRows: r.SlotRows}.SlotHeight(usable, maxHeight)
}
