package layout

import "testing"

func TestDefaultColorTable(t *testing.T) {
	table := DefaultColorTable()

	tests := []struct {
		owner string
		want  string
	}{
		{owner: "Darren", want: "#6ee7b7"},
		{owner: "  dylan ", want: "#fcd34d"},
		{owner: "Sarah Jones", want: "#fda4af"},
		{owner: "EDER", want: "#c4b5fd"},
		{owner: "david / sarah", want: "#fda4af"},
		{owner: "", want: "#fde047"},
		{owner: "Unassigned", want: "#fde047"},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.owner); got != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.owner, got, tt.want)
		}
	}
}

func TestColorTableExactBeforeSubstring(t *testing.T) {
	table := ColorTable{
		Rules: []ColorRule{
			{Pattern: "an", Color: "red"},
			{Pattern: "Dan", Color: "blue"},
		},
		Default: "grey",
	}

	tests := []struct {
		owner string
		want  string
	}{
		{owner: "dan", want: "blue"},
		{owner: "Jordan", want: "red"},
		{owner: "bob", want: "grey"},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.owner); got != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.owner, got, tt.want)
		}
	}
}
