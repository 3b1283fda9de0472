package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"kioskcal/internal/report"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printSummary reports one report run.
func printSummary(w io.Writer, sum report.Summary) {
	fmt.Fprintln(w, styleTitle.Render(string(sum.Kind)))
	for _, f := range sum.Files {
		printFile(w, f)
	}
	for _, name := range sum.Removed {
		fmt.Fprintln(w, "  "+styleDim.Render("removed "+name))
	}
	for _, d := range sum.Dropped {
		printWarning(w, "%s not shown in week %d: %s", d.Span.Event.Name, d.Span.WeekIndex+1, d.Reason)
	}
	if sum.Optimized > 0 {
		printKeyValue(w, "optimized", fmt.Sprintf("%d slides", sum.Optimized))
	}
	if sum.Manifest.Count > 0 {
		printKeyValue(w, "manifest", fmt.Sprintf("%d slides, run %s", sum.Manifest.Count, sum.Manifest.RunID))
	}
	if sum.Published {
		printSuccess(w, "published")
	}
	if len(sum.Files) > 0 {
		printSuccess(w, "wrote %d file(s) to %s", len(sum.Files), filepath.Dir(sum.Files[0]))
	}
}
