package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// Ellipsis is appended to every truncated label.
const Ellipsis = "…"

// FontMetrics measures rendered text width in the same unit as the width
// passed to Fit (pixels for a rasteriser, cell fractions for estimates).
type FontMetrics interface {
	Measure(s string) float64
}

// FaceMetrics measures with a real font face.
type FaceMetrics struct {
	Face font.Face
}

func (m FaceMetrics) Measure(s string) float64 {
	adv := font.MeasureString(m.Face, s)
	return float64(adv) / 64
}

// CharMetrics assumes every rune has the same advance. The original charts
// estimated this as 0.007 cell units per point of font size.
type CharMetrics struct {
	CharWidth float64
}

func (m CharMetrics) Measure(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * m.CharWidth
}

// Fit returns text unchanged when it fits width. Otherwise it keeps as many
// whole leading words as fit together with the ellipsis, and failing that
// as many leading characters as fit (possibly none).
//
// The boundary is inclusive throughout: a label whose measured width equals
// width fits.
func Fit(text string, width float64, m FontMetrics) string {
	if m.Measure(text) <= width {
		return text
	}

	words := strings.Fields(text)
	kept := ""
	for _, w := range words {
		candidate := w
		if kept != "" {
			candidate = kept + " " + w
		}
		if m.Measure(candidate+Ellipsis) > width {
			break
		}
		kept = candidate
	}
	if kept != "" {
		return kept + Ellipsis
	}

	runes := []rune(text)
	n := 0
	for n < len(runes) && m.Measure(string(runes[:n+1])+Ellipsis) <= width {
		n++
	}
	return string(runes[:n]) + Ellipsis
}
