package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
	"github.com/socio-analytics/opp-radar/internal/pipeline"
	"github.com/socio-analytics/opp-radar/internal/scrape"
)

// handleRunScraper fetches one source and pushes the batch through the
// pipeline synchronously. Scraper failures surface in the run result,
// not as HTTP errors.
func (s *Server) handleRunScraper(c echo.Context) error {
	source := models.Source(strings.ToUpper(c.Param("source")))

	scraper, err := scrape.ForSource(s.Registry, s.Logger, source)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	result, err := s.runOne(c, scraper)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleRunAllScrapers(c echo.Context) error {
	var results []pipeline.RunResult
	for _, scraper := range scrape.All(s.Registry, s.Logger) {
		result, err := s.runOne(c, scraper)
		if err != nil {
			// A broken ledger means the database is gone; stop here.
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		results = append(results, result)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": results})
}

func (s *Server) runOne(c echo.Context, scraper scrape.Scraper) (pipeline.RunResult, error) {
	ctx := c.Request().Context()

	s.Logger.Info("scraper run requested", zap.String("source", string(scraper.Source())))
	fetched := scraper.Fetch(ctx)

	return s.Pipeline.Run(ctx, scraper.Source(), fetched.Opportunities, fetched.Errors)
}

// handleScraperStatus returns the most recent run per source.
func (s *Server) handleScraperStatus(c echo.Context) error {
	runs, err := s.Store.LatestRunsBySource(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	sources := make([]string, 0, len(scrape.All(s.Registry, s.Logger)))
	for _, scraper := range scrape.All(s.Registry, s.Logger) {
		sources = append(sources, string(scraper.Source()))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"latest":  runs,
	})
}

func (s *Server) handleRecentRuns(c echo.Context) error {
	limit := 20
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	runs, err := s.Store.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs, "total": len(runs)})
}
