package layout

// PlacedSpan is a span with its vertical slot, colour and final label. It
// is what renderers consume.
type PlacedSpan struct {
	Span
	Slot        int    `json:"slot"`
	DisplayText string `json:"text"`
	Color       string `json:"color"`
}

// Drop records a span that did not get a slot.
type Drop struct {
	Span   Span
	Reason string
}

// Allocation is the result of one Allocate call.
type Allocation struct {
	Placed  []PlacedSpan
	Dropped []Drop

	// SlotRows is the busiest day's concurrent event count, capped at the
	// slot limit, and never below the highest placed slot plus one. Every
	// day cell is divided into this many slots so that slot height is
	// uniform across the grid.
	SlotRows int
}

// SlotHeight splits usable cell height into SlotRows equal slots, never
// taller than maxHeight.
func (a Allocation) SlotHeight(usable, maxHeight float64) float64 {
	if a.SlotRows <= 0 {
		return maxHeight
	}
	return min(maxHeight, usable/float64(a.SlotRows))
}

type dayKey struct {
	week, col int
}

// Allocate assigns each span a vertical slot.
//
// Occupancy is tracked per day cell as a set of taken slots. A span takes
// the lowest slot that is free on every day it covers (for a single-day
// span that is simply the day's next counter value) and holds it across
// its whole width, so overlapping spans in a row never share a slot and a
// slot freed by an earlier span ending is reused.
//
// Spans are taken in input order and the first one to reach a day wins the
// lower slot; callers pass events sorted by descending start date, which
// makes that order the tie-break. Spans that would need slot maxSlotsPerDay
// or higher are dropped and reported, leaving occupancy untouched; a cap of
// 0 drops everything.
func Allocate(spans []Span, maxSlotsPerDay int) (Allocation, error) {
	if maxSlotsPerDay < 0 {
		return Allocation{}, invalidf("max slots per day %d is negative", maxSlotsPerDay)
	}

	taken := make(map[dayKey][]bool)
	concurrent := make(map[dayKey]int)
	alloc := Allocation{Placed: make([]PlacedSpan, 0, len(spans))}

	busiest := 0
	for _, sp := range spans {
		for col := sp.StartCol; col <= sp.EndCol; col++ {
			k := dayKey{sp.WeekIndex, col}
			concurrent[k]++
			busiest = max(busiest, concurrent[k])
		}
	}
	alloc.SlotRows = min(busiest, maxSlotsPerDay)

	free := func(sp Span, slot int) bool {
		for col := sp.StartCol; col <= sp.EndCol; col++ {
			used := taken[dayKey{sp.WeekIndex, col}]
			if slot < len(used) && used[slot] {
				return false
			}
		}
		return true
	}

	for _, sp := range spans {
		slot := 0
		for slot < maxSlotsPerDay && !free(sp, slot) {
			slot++
		}
		if slot >= maxSlotsPerDay {
			alloc.Dropped = append(alloc.Dropped, Drop{Span: sp, Reason: "day is full"})
			continue
		}
		for col := sp.StartCol; col <= sp.EndCol; col++ {
			k := dayKey{sp.WeekIndex, col}
			used := taken[k]
			for len(used) <= slot {
				used = append(used, false)
			}
			used[slot] = true
			taken[k] = used
		}
		alloc.Placed = append(alloc.Placed, PlacedSpan{Span: sp, Slot: slot})
		// Input order can force a slot past the busiest day's count.
		alloc.SlotRows = max(alloc.SlotRows, slot+1)
	}

	return alloc, nil
}
