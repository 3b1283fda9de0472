// Package slides names the rendered PNGs, maintains the slides.json
// manifest the kiosk player reads, and removes charts that fell out of
// their display window.
package slides

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	appLog "kioskcal/internal/log"
)

// ManifestName is the manifest file inside the slides directory.
const ManifestName = "slides.json"

const manifestNote = "Auto-generated manifest of all PNG files in slides directory"

// Prefixes of the generated chart files.
const (
	MonthPrefix    = "gantt_"
	WeeklyPrefix   = "gantt_weekly_"
	DailyPrefix    = "gantt_daily_"
	CalendarPrefix = "calendar_"
)

// MonthChartName is the Gantt chart of one month.
func MonthChartName(year int, month time.Month) string {
	return fmt.Sprintf("%s%d_%02d.png", MonthPrefix, year, int(month))
}

// CalendarName is the month calendar grid.
func CalendarName(year int, month time.Month) string {
	return fmt.Sprintf("%s%d_%02d.png", CalendarPrefix, year, int(month))
}

// WeeklyChartName is the "Happening This Week" chart, keyed by its Monday.
func WeeklyChartName(monday time.Time) string {
	return WeeklyPrefix + monday.Format("2006_01_02") + ".png"
}

// DailyChartName is the "Happening Today" chart.
func DailyChartName(day time.Time) string {
	return DailyPrefix + day.Format("2006_01_02") + ".png"
}

// Manifest is the JSON document listing the slides to cycle through.
type Manifest struct {
	Slides    []string  `json:"slides"`
	Generated time.Time `json:"generated"`
	Count     int       `json:"count"`
	Note      string    `json:"note"`
	RunID     string    `json:"run_id"`
}

// List returns the PNG file names in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("slides: read dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// WriteManifest lists the PNGs in dir and writes slides.json next to them.
// When dir holds no PNGs nothing is written and the returned manifest is
// empty.
func WriteManifest(dir string, now time.Time) (Manifest, error) {
	names, err := List(dir)
	if err != nil {
		return Manifest{}, err
	}
	if len(names) == 0 {
		appLog.Info("no PNG files in slides directory; manifest not written", "dir", dir)
		return Manifest{Slides: []string{}}, nil
	}

	m := Manifest{
		Slides:    names,
		Generated: now,
		Count:     len(names),
		Note:      manifestNote,
		RunID:     uuid.NewString(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("slides: marshal manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return Manifest{}, fmt.Errorf("slides: write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Manifest{}, fmt.Errorf("slides: replace manifest: %w", err)
	}

	appLog.Info("generated manifest", "path", path, "count", m.Count, "run_id", m.RunID)
	for i, name := range names {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			appLog.Debug("slide", "n", i+1, "name", name, "size", humanize.Bytes(uint64(info.Size())))
		}
	}
	return m, nil
}

// ReadManifest loads dir/slides.json.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("slides: parse manifest: %w", err)
	}
	return m, nil
}

// Cleanup removes files in dir matching the glob pattern unless their name
// is in keep or starts with one of the preserve prefixes. It returns the
// removed names. A missing dir is not an error.
func Cleanup(dir, pattern string, keep []string, preserve ...string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("slides: bad pattern %q: %w", pattern, err)
	}

	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	removed := make([]string, 0)
	var errs []error
	for _, path := range matches {
		name := filepath.Base(path)
		if kept[name] || hasAnyPrefix(name, preserve) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		appLog.Info("removed old chart", "name", name)
		removed = append(removed, name)
	}
	sort.Strings(removed)
	return removed, errors.Join(errs...)
}

// CleanupMonthCharts removes month Gantt charts that are not in keep. Weekly
// and daily charts share the gantt_ prefix and are left alone.
func CleanupMonthCharts(dir string, keep []string) ([]string, error) {
	return Cleanup(dir, MonthPrefix+"*.png", keep, WeeklyPrefix, DailyPrefix)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
