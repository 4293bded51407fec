package api

import "testing"

func TestValidKeywordType(t *testing.T) {
	for _, ok := range []string{"INCLUDE", "EXCLUDE"} {
		if !validKeywordType(ok) {
			t.Errorf("%s must be valid", ok)
		}
	}
	for _, bad := range []string{"include", "BOTH", ""} {
		if validKeywordType(bad) {
			t.Errorf("%q must be rejected", bad)
		}
	}
}

func TestValidKeywordTier(t *testing.T) {
	for _, ok := range []string{"HIGH", "MEDIUM", "LOW"} {
		if !validKeywordTier(ok) {
			t.Errorf("%s must be valid", ok)
		}
	}
	if validKeywordTier("URGENT") {
		t.Error("unknown tier must be rejected")
	}
}

func TestValidStatuses(t *testing.T) {
	if len(validStatuses) != 6 {
		t.Fatalf("expected 6 curation statuses, got %d", len(validStatuses))
	}
}
