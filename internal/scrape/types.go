// Package scrape holds the source adapters. Each adapter normalizes one
// external portal into RawOpportunity records; everything downstream
// (scoring, matching, persistence) is source-agnostic.
package scrape

import (
	"context"
	"time"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// FetchResult is the unit of work an adapter hands to the pipeline.
// Adapters never fail outright: a total outage comes back as an empty
// Opportunities slice with the failure described in Errors, so one dead
// portal cannot take down a multi-source run.
type FetchResult struct {
	Opportunities  []models.RawOpportunity
	TotalAvailable int
	Errors         []string
}

// Scraper is implemented by every source adapter.
type Scraper interface {
	Source() models.Source
	Fetch(ctx context.Context) FetchResult
}

const defaultTimeout = 30 * time.Second

// parseFlexibleDate accepts the date shapes the portals actually emit.
func parseFlexibleDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
