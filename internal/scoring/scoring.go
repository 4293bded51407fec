// Package scoring computes the ICP fit score for a single opportunity.
// It is pure: no I/O, no clock access (the caller supplies now), and it
// cannot fail on well-typed input.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/socio-analytics/opp-radar/internal/models"
)

var utahNeighborStates = map[string]bool{
	"CO": true, "NV": true, "WY": true, "ID": true, "AZ": true, "NM": true,
}

var healthEvaluationKeywords = []string{
	"health",
	"healthcare",
	"medical",
	"evaluation",
	"assessment",
	"clinical",
	"public health",
	"behavioral health",
	"mental health",
	"epidemiology",
}

var socialCommunityKeywords = []string{
	"social",
	"community",
	"human services",
	"social services",
	"nonprofit",
	"welfare",
	"housing",
	"homelessness",
	"workforce",
}

var educationKeywords = []string{
	"education",
	"school",
	"university",
	"training",
	"curriculum",
	"academic",
	"student",
	"learning",
}

// Weights mirrors the stored scoring configuration. The four dimension
// weights are carried for the dashboard but the aggregation below is an
// unweighted mean; only UtahMultiplier feeds into the final score. This
// matches the shipped behavior and must not be "fixed" silently.
type Weights struct {
	Budget         int
	Sector         int
	Geography      int
	Timing         int
	UtahMultiplier float64
}

// DefaultWeights returns the hard-coded defaults used when no
// configuration row exists yet.
func DefaultWeights() Weights {
	return Weights{Budget: 25, Sector: 25, Geography: 25, Timing: 25, UtahMultiplier: 1.5}
}

// Input carries the signal fields of a raw opportunity.
type Input struct {
	EstimatedValue *float64
	Title          string
	Description    string
	State          string
	Country        string
	Deadline       *time.Time
}

// Result is the full scoring outcome for one opportunity.
type Result struct {
	Score     float64
	Breakdown models.ScoreBreakdown
	Tier      models.Tier
	IsUtah    bool
}

// FromRaw builds a scoring input from a normalized adapter record.
func FromRaw(raw models.RawOpportunity) Input {
	return Input{
		EstimatedValue: raw.EstimatedValue,
		Title:          raw.Title,
		Description:    raw.Description,
		State:          raw.LocationState,
		Country:        raw.LocationCountry,
		Deadline:       raw.Deadline,
	}
}

// Calculate produces the score breakdown, tier and Utah flag for one
// opportunity under the given weights.
func Calculate(in Input, w Weights, now time.Time) Result {
	budget := scoreBudget(in.EstimatedValue)
	sector := scoreSector(in.Title, in.Description)
	geography, isUtah := scoreGeography(in.State, in.Country)
	timing := scoreTiming(in.Deadline, now)

	raw := float64(budget+sector+geography+timing) / 4

	final := raw
	if isUtah {
		final = math.Min(100, raw*w.UtahMultiplier)
	}
	score := math.Round(final*100) / 100

	return Result{
		Score: score,
		Breakdown: models.ScoreBreakdown{
			Budget:    budget,
			Sector:    sector,
			Geography: geography,
			Timing:    timing,
		},
		Tier:   TierFor(score),
		IsUtah: isUtah,
	}
}

// TierFor buckets a final score into HOT/WARM/COOL/COLD.
func TierFor(score float64) models.Tier {
	switch {
	case score >= 80:
		return models.TierHot
	case score >= 60:
		return models.TierWarm
	case score >= 40:
		return models.TierCool
	default:
		return models.TierCold
	}
}

func scoreBudget(value *float64) int {
	if value == nil || *value == 0 {
		return 50
	}
	switch {
	case *value > 200_000:
		return 95
	case *value > 100_000:
		return 85
	case *value > 50_000:
		return 70
	default:
		return 50
	}
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func scoreSector(title, description string) int {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if description != "" {
		parts = append(parts, description)
	}
	if len(parts) == 0 {
		return 60
	}

	text := strings.ToLower(strings.Join(parts, " "))

	// Checked in priority order; the first matching list wins.
	if matchesAny(text, healthEvaluationKeywords) {
		return 95
	}
	if matchesAny(text, socialCommunityKeywords) {
		return 85
	}
	if matchesAny(text, educationKeywords) {
		return 75
	}
	return 60
}

func scoreGeography(state, country string) (int, bool) {
	st := strings.ToUpper(strings.TrimSpace(state))
	ct := strings.ToUpper(strings.TrimSpace(country))

	if st == "UT" || st == "UTAH" {
		return 100, true
	}
	if st != "" && utahNeighborStates[st] {
		return 60, false
	}
	if ct == "US" || ct == "USA" || ct == "UNITED STATES" {
		return 50, false
	}
	if ct != "" {
		return 40, false
	}
	return 50, false
}

func scoreTiming(deadline *time.Time, now time.Time) int {
	if deadline == nil {
		return 50
	}

	daysUntilDue := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	switch {
	case daysUntilDue > 30:
		return 90
	case daysUntilDue > 14:
		return 70
	case daysUntilDue > 7:
		return 50
	default:
		return 30
	}
}
