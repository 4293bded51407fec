package scrape

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// All returns every configured adapter: the three API sources plus any
// HTML portals declared in the registry.
func All(reg *Registry, logger *zap.Logger) []Scraper {
	scrapers := []Scraper{
		NewSamGovScraper(logger),
		NewWorldBankScraper(logger),
		NewBonfireScraper(logger),
	}
	if reg != nil {
		for _, portal := range reg.Portals {
			scrapers = append(scrapers, NewPortalScraper(portal, logger))
		}
	}
	return scrapers
}

// ForSource resolves one adapter by its source identifier.
func ForSource(reg *Registry, logger *zap.Logger, source models.Source) (Scraper, error) {
	for _, s := range All(reg, logger) {
		if s.Source() == source {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", source)
}
