package render

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"kioskcal/internal/layout"
	"kioskcal/internal/model"
)

// GanttStyle sets the canvas geometry of a timeline chart. The canvas grows
// vertically with the number of bars.
type GanttStyle struct {
	Width      int
	MinHeight  int
	Margin     float64
	LabelWidth float64
	RowHeight  float64
	TitleSize  float64
	LabelSize  float64
}

// DefaultGanttStyle matches the 20 inch wide timeline slide.
func DefaultGanttStyle() GanttStyle {
	return GanttStyle{
		Width:      2000,
		MinHeight:  600,
		Margin:     40,
		LabelWidth: 460,
		RowHeight:  40,
		TitleSize:  40,
		LabelSize:  18,
	}
}

// Gantt draws layout.Window bars as a horizontal timeline.
type Gantt struct {
	style     GanttStyle
	titleFace font.Face
	tickFace  font.Face
	labelFace font.Face
}

// NewGantt prepares fonts for style.
func NewGantt(style GanttStyle) (*Gantt, error) {
	g := &Gantt{style: style}
	var err error
	if g.titleFace, err = BoldFace(style.TitleSize); err != nil {
		return nil, err
	}
	if g.tickFace, err = RegularFace(16); err != nil {
		return nil, err
	}
	if g.labelFace, err = RegularFace(style.LabelSize); err != nil {
		return nil, err
	}
	return g, nil
}

// Height is the canvas height for n bars.
func (g *Gantt) Height(n int) int {
	s := g.style
	h := int(2*s.Margin + 160 + float64(n)*s.RowHeight)
	return max(h, s.MinHeight)
}

// Draw renders bars over the inclusive window [from, to]. Bars are drawn top
// to bottom in the order given.
func (g *Gantt) Draw(bars []layout.Bar, from, to time.Time, title string, colors layout.ColorTable, legend []LegendEntry) image.Image {
	s := g.style
	height := g.Height(len(bars))
	dc := gg.NewContext(s.Width, height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	dc.SetFontFace(g.titleFace)
	dc.SetHexColor("#111827")
	dc.DrawStringAnchored(title, float64(s.Width)/2, s.Margin+30, 0.5, 0.5)

	chartLeft := s.Margin + s.LabelWidth
	chartRight := float64(s.Width) - s.Margin
	chartTop := s.Margin + 100
	chartBottom := chartTop + float64(max(len(bars), 1))*s.RowHeight

	days := model.DaysBetween(from, to) + 1
	if days < 1 {
		days = 1
	}
	dayW := (chartRight - chartLeft) / float64(days)

	g.drawAxis(dc, from, days, dayW, chartLeft, chartTop, chartBottom)

	dc.SetFontFace(g.labelFace)
	labelMetrics := layout.FaceMetrics{Face: g.labelFace}
	for i, b := range bars {
		y := chartTop + float64(i)*s.RowHeight

		if i%2 == 1 {
			dc.SetRGBA(0, 0, 0, 0.03)
			dc.DrawRectangle(s.Margin, y, chartRight-s.Margin, s.RowHeight)
			dc.Fill()
		}

		dc.SetHexColor("#1f2937")
		label := layout.Fit(b.Event.Name, s.LabelWidth-16, labelMetrics)
		dc.DrawStringAnchored(label, chartLeft-12, y+s.RowHeight/2, 1, 0.5)

		x := chartLeft + float64(model.DaysBetween(from, b.Start))*dayW
		w := float64(b.Days()) * dayW
		dc.SetHexColor(colors.Lookup(b.Event.Owner))
		dc.DrawRoundedRectangle(x+1, y+s.RowHeight*0.15, w-2, s.RowHeight*0.7, 4)
		dc.FillPreserve()
		dc.SetHexColor("#1f2937")
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if len(bars) == 0 {
		dc.SetHexColor("#6b7280")
		dc.DrawStringAnchored("No events", (chartLeft+chartRight)/2, chartTop+s.RowHeight/2, 0.5, 0.5)
	}

	g.drawLegend(dc, legend, chartBottom+50)
	return dc.Image()
}

func (g *Gantt) drawAxis(dc *gg.Context, from time.Time, days int, dayW, left, top, bottom float64) {
	dc.SetFontFace(g.tickFace)

	if days == 1 {
		// Single day: hour ticks every three hours.
		for h := 0; h <= 24; h += 3 {
			x := left + float64(h)/24*dayW
			dc.SetHexColor("#e5e7eb")
			dc.SetLineWidth(1)
			dc.DrawLine(x, top, x, bottom)
			dc.Stroke()
			dc.SetHexColor("#374151")
			dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h%24), x, top-14, 0.5, 0.5)
		}
		return
	}

	every := 1
	if dayW < 40 {
		every = 7
	}
	for i := 0; i <= days; i++ {
		x := left + float64(i)*dayW
		day := from.AddDate(0, 0, i)
		monday := day.Weekday() == time.Monday

		if monday {
			dc.SetHexColor("#9ca3af")
			dc.SetLineWidth(1.5)
		} else {
			dc.SetHexColor("#e5e7eb")
			dc.SetLineWidth(1)
		}
		dc.DrawLine(x, top, x, bottom)
		dc.Stroke()

		if i == days {
			break
		}
		if (every == 1) || monday {
			dc.SetHexColor("#374151")
			dc.DrawStringAnchored(day.Format("Jan 02"), x+dayW/2, top-14, 0.5, 0.5)
		}
	}
}

func (g *Gantt) drawLegend(dc *gg.Context, legend []LegendEntry, centerY float64) {
	if len(legend) == 0 {
		return
	}
	dc.SetFontFace(g.labelFace)
	x := g.style.Margin + g.style.LabelWidth
	for _, e := range legend {
		dc.SetHexColor(e.Color)
		dc.DrawRectangle(x, centerY-10, 20, 20)
		dc.Fill()
		dc.SetHexColor("#374151")
		dc.DrawStringAnchored(e.Label, x+28, centerY, 0, 0.5)
		w, _ := dc.MeasureString(e.Label)
		x += 28 + w + 30
	}
}
