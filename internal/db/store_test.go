package db

import (
	"strings"
	"testing"
)

func TestCountryOrDefault(t *testing.T) {
	if got := countryOrDefault(""); got != "USA" {
		t.Fatalf("empty country should default to USA, got %q", got)
	}
	if got := countryOrDefault("Kenya"); got != "Kenya" {
		t.Fatalf("explicit country must pass through, got %q", got)
	}
}

func TestSelectColsCoverCuratedFields(t *testing.T) {
	// The dashboard relies on curated fields surviving every read path.
	for _, col := range []string{"o.status", "o.decision", "o.assigned_to_id", "o.notes", "o.ai_brief"} {
		if !strings.Contains(selectCols, col) {
			t.Fatalf("selectCols missing %q", col)
		}
	}
}
