package api

import (
	"testing"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/scrape"
)

func TestRoutesRegistered(t *testing.T) {
	s := NewServer(nil, &scrape.Registry{}, zap.NewNop())

	registered := map[string]bool{}
	for _, r := range s.Echo.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /api/v1/opportunities",
		"GET /api/v1/opportunities/:id",
		"PATCH /api/v1/opportunities/:id",
		"GET /api/v1/keywords",
		"GET /api/v1/keywords/:id",
		"GET /api/v1/keywords/stats",
		"GET /api/v1/keywords/categories",
		"POST /api/v1/keywords",
		"PATCH /api/v1/keywords/:id",
		"DELETE /api/v1/keywords/:id",
		"GET /api/v1/scoring-config",
		"PATCH /api/v1/scoring-config",
		"GET /api/v1/stats",
		"GET /api/v1/team",
		"POST /api/v1/team",
		"DELETE /api/v1/team/:id",
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/login",
		"POST /api/v1/scraper/run",
		"POST /api/v1/scraper/run/:source",
		"GET /api/v1/scraper/status",
		"GET /api/v1/scraper/runs",
	}
	for _, route := range expected {
		if !registered[route] {
			t.Errorf("route %s is not registered", route)
		}
	}
}
