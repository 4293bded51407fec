package scoring

import (
	"testing"
	"time"

	"github.com/socio-analytics/opp-radar/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestScoreBudget(t *testing.T) {
	tests := []struct {
		name     string
		value    *float64
		expected int
	}{
		{"missing value is neutral", nil, 50},
		{"zero value is neutral", fptr(0), 50},
		{"above 200k", fptr(250_000), 95},
		{"exactly 200k falls into next bucket", fptr(200_000), 85},
		{"above 100k", fptr(150_000), 85},
		{"above 50k", fptr(75_000), 70},
		{"small value", fptr(10_000), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreBudget(tt.value); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestScoreSector(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		expected    int
	}{
		{"health keyword in title", "Community Health Assessment", "", 95},
		{"health beats social when both present", "Community health study", "", 95},
		{"social keyword", "Workforce development study", "", 85},
		{"education keyword", "Curriculum design services", "", 75},
		{"keyword in description only", "RFP 2026-14", "program evaluation services", 95},
		{"no match with text", "Road paving contract", "asphalt and striping", 60},
		{"no text at all", "", "", 60},
		{"case insensitive", "PUBLIC HEALTH surveillance", "", 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreSector(tt.title, tt.description); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestScoreGeography(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		country  string
		expected int
		isUtah   bool
	}{
		{"UT code", "UT", "USA", 100, true},
		{"full name lowercase", "utah", "USA", 100, true},
		{"padded state", " ut ", "", 100, true},
		{"neighbor state", "CO", "USA", 60, false},
		{"another neighbor", "nm", "", 60, false},
		{"US country only", "", "USA", 50, false},
		{"united states spelled out", "", "United States", 50, false},
		{"foreign country", "", "Kenya", 40, false},
		{"no location signal", "", "", 50, false},
		{"non-neighbor state falls through to country", "TX", "USA", 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isUtah := scoreGeography(tt.state, tt.country)
			if got != tt.expected {
				t.Errorf("expected score %d, got %d", tt.expected, got)
			}
			if isUtah != tt.isUtah {
				t.Errorf("expected isUtah=%v, got %v", tt.isUtah, isUtah)
			}
		})
	}
}

func TestScoreTiming(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	days := func(d int) *time.Time {
		t := now.Add(time.Duration(d) * 24 * time.Hour)
		return &t
	}

	tests := []struct {
		name     string
		deadline *time.Time
		expected int
	}{
		{"missing deadline is neutral", nil, 50},
		{"far out", days(45), 90},
		{"three weeks", days(20), 70},
		{"ten days", days(10), 50},
		{"urgent", days(3), 30},
		{"past due", days(-2), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreTiming(tt.deadline, now); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestCalculate_UtahHealthOpportunity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(20 * 24 * time.Hour)

	res := Calculate(Input{
		EstimatedValue: fptr(250_000),
		Title:          "Community Health Assessment",
		State:          "UT",
		Country:        "USA",
		Deadline:       &deadline,
	}, DefaultWeights(), now)

	want := models.ScoreBreakdown{Budget: 95, Sector: 95, Geography: 100, Timing: 70}
	if res.Breakdown != want {
		t.Fatalf("breakdown mismatch: want %+v, got %+v", want, res.Breakdown)
	}
	if !res.IsUtah {
		t.Fatal("expected isUtah=true")
	}
	// mean = 90, then capped: min(100, 90*1.5) = 100
	if res.Score != 100 {
		t.Fatalf("expected final score 100, got %v", res.Score)
	}
	if res.Tier != models.TierHot {
		t.Fatalf("expected HOT, got %s", res.Tier)
	}
}

func TestCalculate_UtahMultiplierBelowCap(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// budget 50, sector 60, geography 100, timing 50 -> mean 65
	res := Calculate(Input{
		Title: "Snow removal services",
		State: "UTAH",
	}, DefaultWeights(), now)

	if res.Breakdown.Geography != 100 || !res.IsUtah {
		t.Fatalf("expected Utah geography, got %+v isUtah=%v", res.Breakdown, res.IsUtah)
	}
	if res.Score != 97.5 {
		t.Fatalf("expected 65*1.5=97.5, got %v", res.Score)
	}
	if res.Tier != models.TierHot {
		t.Fatalf("expected HOT, got %s", res.Tier)
	}
}

func TestCalculate_NonUtahIgnoresMultiplier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// budget 50, sector 60, geography 50, timing 50 -> mean 52.5
	res := Calculate(Input{
		Title:   "Fleet maintenance",
		Country: "USA",
	}, Weights{UtahMultiplier: 3.0}, now)

	if res.IsUtah {
		t.Fatal("expected isUtah=false")
	}
	if res.Score != 52.5 {
		t.Fatalf("expected unweighted mean 52.5, got %v", res.Score)
	}
	if res.Tier != models.TierCool {
		t.Fatalf("expected COOL, got %s", res.Tier)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		tier  models.Tier
	}{
		{100, models.TierHot},
		{80, models.TierHot},
		{79.99, models.TierWarm},
		{60, models.TierWarm},
		{59.5, models.TierCool},
		{40, models.TierCool},
		{39.99, models.TierCold},
		{0, models.TierCold},
	}

	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.tier {
			t.Errorf("TierFor(%v): expected %s, got %s", tt.score, tt.tier, got)
		}
	}
}
