package render

import (
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"kioskcal/internal/layout"
	"kioskcal/internal/model"
)

var weekdayNames = [layout.DaysPerWeek]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// CalendarStyle sets the canvas geometry of the month calendar.
type CalendarStyle struct {
	Width, Height int
	Margin        float64
	TitleHeight   float64
	HeaderHeight  float64
	LegendHeight  float64
	LabelSize     float64
}

// DefaultCalendarStyle matches the 22x18 kiosk slide at 100 px per inch.
func DefaultCalendarStyle() CalendarStyle {
	return CalendarStyle{
		Width:        2200,
		Height:       1800,
		Margin:       40,
		TitleHeight:  110,
		HeaderHeight: 56,
		LegendHeight: 70,
		LabelSize:    16,
	}
}

// Calendar draws layout.Result values as a month grid.
type Calendar struct {
	style      CalendarStyle
	titleFace  font.Face
	headerFace font.Face
	dayFace    font.Face
	labelFace  font.Face
}

// NewCalendar prepares fonts for style.
func NewCalendar(style CalendarStyle) (*Calendar, error) {
	c := &Calendar{style: style}
	var err error
	if c.titleFace, err = BoldFace(56); err != nil {
		return nil, err
	}
	if c.headerFace, err = BoldFace(22); err != nil {
		return nil, err
	}
	if c.dayFace, err = BoldFace(24); err != nil {
		return nil, err
	}
	if c.labelFace, err = BoldFace(style.LabelSize); err != nil {
		return nil, err
	}
	return c, nil
}

// CellWidth is the pixel width of one day column.
func (c *Calendar) CellWidth() float64 {
	return (float64(c.style.Width) - 2*c.style.Margin) / layout.DaysPerWeek
}

// LabelMetrics measures event labels with the face Draw uses for them.
func (c *Calendar) LabelMetrics() layout.FontMetrics {
	return layout.FaceMetrics{Face: c.labelFace}
}

// LabelPadding is the horizontal space of a span not available to text.
func (c *Calendar) LabelPadding() float64 {
	return 0.12*c.CellWidth() + 12
}

// Draw renders the month. title is shown above the grid; legend may be nil.
func (c *Calendar) Draw(res layout.Result, title string, legend []LegendEntry) image.Image {
	s := c.style
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetHexColor("#fafbfc")
	dc.Clear()

	dc.SetFontFace(c.titleFace)
	dc.SetHexColor("#1a202c")
	dc.DrawStringAnchored(title, float64(s.Width)/2, s.Margin+s.TitleHeight/2, 0.5, 0.5)

	cellW := c.CellWidth()
	left := s.Margin
	headerTop := s.Margin + s.TitleHeight
	gridTop := headerTop + s.HeaderHeight
	gridH := float64(s.Height) - gridTop - s.Margin - s.LegendHeight
	weeks := max(1, len(res.Grid.Weeks))
	cellH := gridH / float64(weeks)

	dc.SetFontFace(c.headerFace)
	for col, name := range weekdayNames {
		x := left + float64(col)*cellW
		dc.SetHexColor("#f0f9ff")
		dc.DrawRoundedRectangle(x+4, headerTop+4, cellW-8, s.HeaderHeight-8, 8)
		dc.FillPreserve()
		dc.SetHexColor("#3b82f6")
		dc.SetLineWidth(2)
		dc.Stroke()
		dc.SetHexColor("#1e40af")
		dc.DrawStringAnchored(name, x+cellW/2, headerTop+s.HeaderHeight/2, 0.5, 0.5)
	}

	dc.SetFontFace(c.dayFace)
	for w, week := range res.Grid.Weeks {
		for col, cell := range week {
			x := left + float64(col)*cellW
			y := gridTop + float64(w)*cellH
			c.drawCell(dc, cell, x, y, cellW, cellH)
		}
	}

	// Slots share one height across the grid: the busiest day decides it.
	barTop := 0.22 * cellH
	pitch := res.SlotHeight(0.74*cellH, 0.2*cellH)
	barH := pitch * 0.85

	dc.SetFontFace(c.labelFace)
	for _, p := range res.Placed {
		x := left + float64(p.StartCol)*cellW + 0.06*cellW
		y := gridTop + float64(p.WeekIndex)*cellH + barTop + float64(p.Slot)*pitch
		w := float64(p.Width())*cellW - 0.12*cellW

		dc.SetRGBA(0, 0, 0, 0.1)
		dc.DrawRoundedRectangle(x+2, y+2, w, barH, 6)
		dc.Fill()

		dc.SetHexColor(p.Color)
		dc.DrawRoundedRectangle(x, y, w, barH, 6)
		dc.FillPreserve()
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(2)
		dc.Stroke()

		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(p.DisplayText, x+w/2, y+barH/2, 0.5, 0.5)
	}

	c.drawLegend(dc, legend, float64(s.Height)-s.Margin-s.LegendHeight/2)
	return dc.Image()
}

func (c *Calendar) drawCell(dc *gg.Context, cell layout.DayCell, x, y, w, h float64) {
	if !cell.InMonth() {
		dc.SetHexColor("#f9fafb")
		dc.DrawRectangle(x+2, y+2, w-4, h-4)
		dc.Fill()
		return
	}

	dc.SetHexColor("#ffffff")
	dc.DrawRectangle(x+2, y+2, w-4, h-4)
	dc.FillPreserve()
	dc.SetHexColor("#6b7280")
	dc.SetLineWidth(1.5)
	dc.Stroke()

	dayX, dayY := x+w-30, y+26
	label := strconv.Itoa(cell.Day)
	if cell.IsToday {
		dc.SetHexColor("#3b82f6")
		dc.DrawCircle(dayX, dayY, 20)
		dc.Fill()
		dc.SetHexColor("#ffffff")
	} else {
		dc.SetHexColor("#1f2937")
	}
	dc.DrawStringAnchored(label, dayX, dayY, 0.5, 0.5)
}

func (c *Calendar) drawLegend(dc *gg.Context, legend []LegendEntry, centerY float64) {
	if len(legend) == 0 {
		return
	}
	dc.SetFontFace(c.headerFace)

	const swatch, gap = 26.0, 36.0
	total := 0.0
	for _, e := range legend {
		w, _ := dc.MeasureString(e.Label)
		total += swatch + 10 + w + gap
	}
	x := (float64(c.style.Width) - total + gap) / 2

	for _, e := range legend {
		dc.SetHexColor(e.Color)
		dc.DrawRoundedRectangle(x, centerY-swatch/2, swatch, swatch, 4)
		dc.Fill()
		dc.SetHexColor("#374151")
		dc.DrawStringAnchored(e.Label, x+swatch+10, centerY, 0, 0.5)
		w, _ := dc.MeasureString(e.Label)
		x += swatch + 10 + w + gap
	}
}

// LegendEntry is one owner swatch.
type LegendEntry struct {
	Label string
	Color string
}

// Legend lists the distinct non-empty owners of events, sorted by name,
// with their colours.
func Legend(events []model.Event, colors layout.ColorTable) []LegendEntry {
	seen := make(map[string]bool)
	out := make([]LegendEntry, 0)
	for _, e := range events {
		owner := strings.TrimSpace(e.Owner)
		if owner == "" || seen[owner] {
			continue
		}
		seen[owner] = true
		out = append(out, LegendEntry{Label: owner, Color: colors.Lookup(owner)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
