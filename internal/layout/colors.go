package layout

import "strings"

// ColorRule maps an owner name pattern to a colour token.
type ColorRule struct {
	Pattern string `yaml:"pattern" toml:"pattern" json:"pattern"`
	Color   string `yaml:"color" toml:"color" json:"color"`
}

// ColorTable resolves owners to colours. Rules are evaluated in order:
// exact matches on the normalised owner first, then substring matches.
type ColorTable struct {
	Rules   []ColorRule `yaml:"rules" toml:"rules" json:"rules"`
	Default string      `yaml:"default" toml:"default" json:"default"`
}

// DefaultColorTable returns the sales team palette. Tones are light enough
// for black label text.
func DefaultColorTable() ColorTable {
	return ColorTable{
		Rules: []ColorRule{
			{Pattern: "darren", Color: "#6ee7b7"}, // light emerald
			{Pattern: "dylan", Color: "#fcd34d"},  // light amber
			{Pattern: "sarah", Color: "#fda4af"},  // light rose
			{Pattern: "eder", Color: "#c4b5fd"},   // light violet
			{Pattern: "david", Color: "#93c5fd"},  // light blue
		},
		Default: "#fde047",
	}
}

// Lookup returns the colour for owner.
func (t ColorTable) Lookup(owner string) string {
	o := normalizeOwner(owner)
	if o != "" {
		for _, r := range t.Rules {
			if normalizeOwner(r.Pattern) == o {
				return r.Color
			}
		}
		for _, r := range t.Rules {
			if p := normalizeOwner(r.Pattern); p != "" && strings.Contains(o, p) {
				return r.Color
			}
		}
	}
	return t.Default
}

func normalizeOwner(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
