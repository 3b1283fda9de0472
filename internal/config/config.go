package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"kioskcal/internal/layout"
)

// NOTE: This file provides the configuration model and full load/save
// behavior, including first-run config creation and 0600 permissions.
// Files ending in .toml are read and written as TOML, everything else as YAML.

// WorkbookConfig describes the events spreadsheet.
type WorkbookConfig struct {
	// Path is the .xlsx file. Empty disables workbook ingestion.
	Path string `yaml:"path" toml:"path" json:"path"`
	// Sheet is the worksheet name.
	Sheet string `yaml:"sheet" toml:"sheet" json:"sheet"`
	// Column headers for the four event fields.
	NameColumn  string `yaml:"name_column" toml:"name_column" json:"name_column"`
	StartColumn string `yaml:"start_column" toml:"start_column" json:"start_column"`
	EndColumn   string `yaml:"end_column" toml:"end_column" json:"end_column"`
	OwnerColumn string `yaml:"owner_column" toml:"owner_column" json:"owner_column"`
}

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" toml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" toml:"id" json:"id"`
	// Owner is assigned to events that carry no ORGANIZER name.
	Owner string `yaml:"owner" toml:"owner" json:"owner"`
}

// ScheduleConfig holds cron specs per report. Empty disables a job.
type ScheduleConfig struct {
	Monthly  string `yaml:"monthly" toml:"monthly" json:"monthly"`
	Calendar string `yaml:"calendar" toml:"calendar" json:"calendar"`
	Weekly   string `yaml:"weekly" toml:"weekly" json:"weekly"`
	Daily    string `yaml:"daily" toml:"daily" json:"daily"`
}

// PublishConfig controls the git commit/push step.
type PublishConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	RepoDir string `yaml:"repo_dir" toml:"repo_dir" json:"repo_dir"`
	Remote  string `yaml:"remote" toml:"remote" json:"remote"`
	Branch  string `yaml:"branch" toml:"branch" json:"branch"`
}

// BasicAuthConfig protects the kiosk server. Empty fields disable it.
type BasicAuthConfig struct {
	Username string `yaml:"username" toml:"username" json:"username"`
	Password string `yaml:"password" toml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the kiosk server.
	Listen string `yaml:"listen" toml:"listen" json:"listen"`

	// BasicAuth is optional; /health is never protected.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" toml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// Timezone is the IANA zone used to decide "today" (e.g. "America/New_York").
	// Event dates themselves are naive.
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone"`

	// LogLevel is "debug", "info" or "error".
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`

	// OutputDir receives the rendered PNGs and slides.json.
	OutputDir string `yaml:"output_dir" toml:"output_dir" json:"output_dir"`

	// CacheDir keeps the last good copy of each ICS feed.
	CacheDir string `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`

	// Dashboard enables PNG optimisation and manifest generation.
	Dashboard bool `yaml:"dashboard" toml:"dashboard" json:"dashboard"`

	// RollingMonths is how many months ahead the rolling Gantt window covers.
	RollingMonths int `yaml:"rolling_months" toml:"rolling_months" json:"rolling_months"`

	// MaxSlotsPerDay caps stacked events in a calendar day cell.
	MaxSlotsPerDay int `yaml:"max_slots_per_day" toml:"max_slots_per_day" json:"max_slots_per_day"`

	Workbook WorkbookConfig `yaml:"workbook" toml:"workbook" json:"workbook"`
	ICS      []ICSConfig    `yaml:"ics" toml:"ics" json:"ics"`

	Colors   layout.ColorTable    `yaml:"colors" toml:"colors" json:"colors"`
	Excludes []layout.ExcludeRule `yaml:"excludes" toml:"excludes" json:"excludes"`

	Schedule ScheduleConfig `yaml:"schedule" toml:"schedule" json:"schedule"`
	Publish  PublishConfig  `yaml:"publish" toml:"publish" json:"publish"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "Local",
		LogLevel:       "info",
		OutputDir:      "slides",
		CacheDir:       "cache/ics",
		Dashboard:      true,
		RollingMonths:  3,
		MaxSlotsPerDay: layout.DefaultMaxSlotsPerDay,
		Workbook: WorkbookConfig{
			Sheet:       "Marriott Marquis Pipeline",
			NameColumn:  "Event Name",
			StartColumn: "Event Start Date",
			EndColumn:   "Event End Date",
			OwnerColumn: "Owner",
		},
		ICS:      []ICSConfig{},
		Colors:   layout.DefaultColorTable(),
		Excludes: layout.DefaultExcludeRules(),
		Schedule: ScheduleConfig{
			Monthly:  "0 6 1 * *",
			Calendar: "5 6 * * *",
			Weekly:   "0 6 * * 1",
			Daily:    "30 5 * * *",
		},
		Publish: PublishConfig{
			Enabled: false,
			RepoDir: ".",
			Remote:  "origin",
			Branch:  "main",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.LogLevel {
	case "debug", "info", "error":
		// ok
	default:
		c.LogLevel = def.LogLevel
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.RollingMonths <= 0 {
		c.RollingMonths = def.RollingMonths
	}
	// A negative cap is rejected by the layout engine; only fill the unset case.
	if c.MaxSlotsPerDay == 0 {
		c.MaxSlotsPerDay = def.MaxSlotsPerDay
	}

	wb := &c.Workbook
	if wb.Sheet == "" {
		wb.Sheet = def.Workbook.Sheet
	}
	if wb.NameColumn == "" {
		wb.NameColumn = def.Workbook.NameColumn
	}
	if wb.StartColumn == "" {
		wb.StartColumn = def.Workbook.StartColumn
	}
	if wb.EndColumn == "" {
		wb.EndColumn = def.Workbook.EndColumn
	}
	if wb.OwnerColumn == "" {
		wb.OwnerColumn = def.Workbook.OwnerColumn
	}

	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if len(c.Colors.Rules) == 0 {
		c.Colors.Rules = def.Colors.Rules
	}
	if c.Colors.Default == "" {
		c.Colors.Default = def.Colors.Default
	}
	// Excludes left nil means "use defaults"; an explicit empty list disables filtering.
	if c.Excludes == nil {
		c.Excludes = def.Excludes
	}

	if c.Publish.RepoDir == "" {
		c.Publish.RepoDir = def.Publish.RepoDir
	}
	if c.Publish.Remote == "" {
		c.Publish.Remote = def.Publish.Remote
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = def.Publish.Branch
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from the given path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - decode YAML (or TOML) into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

func encode(path string, cfg *Config) ([]byte, error) {
	if !isTOML(path) {
		return yaml.Marshal(cfg)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Encodes cfg as YAML or TOML depending on the extension.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".kioskcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
