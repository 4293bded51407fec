package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socio-analytics/opp-radar/internal/models"
)

const samFixture = `{
	"totalRecords": 2,
	"opportunitiesData": [
		{
			"noticeId": "abc123",
			"title": "Community Health Evaluation Services",
			"fullParentPathName": "GENERAL SERVICES ADMINISTRATION.REGION 8",
			"postedDate": "2026-02-10",
			"type": "Solicitation",
			"active": "Yes",
			"uiLink": "https://sam.gov/opp/abc123/view",
			"responseDeadLine": "2026-03-15T17:00:00-06:00",
			"award": {"amount": "$250,000.00", "number": "AW-1"},
			"pointOfContact": [
				{"fullName": "Jane Doe", "email": "jane@gsa.gov", "phone": "555-0100", "type": "primary"}
			],
			"placeOfPerformance": {
				"state": {"code": "UT", "name": "Utah"},
				"city": {"code": "67000", "name": "Salt Lake City"},
				"country": {"code": "USA", "name": "United States"}
			}
		},
		{
			"noticeId": "inactive1",
			"title": "Closed Notice",
			"active": "No",
			"pointOfContact": [],
			"placeOfPerformance": {}
		}
	]
}`

func TestSamGovScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samFixture))
	}))
	defer srv.Close()

	s := NewSamGovScraper(nil)
	s.BaseURL = srv.URL
	s.APIKey = "test-key"

	res := s.Fetch(context.Background())

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.TotalAvailable != 2 {
		t.Fatalf("expected totalAvailable=2, got %d", res.TotalAvailable)
	}
	// Inactive notices are dropped.
	if len(res.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(res.Opportunities))
	}

	opp := res.Opportunities[0]
	if opp.Source != models.SourceSamGov || opp.SourceID != "abc123" {
		t.Fatalf("bad identity: %+v", opp)
	}
	if opp.IssuingOrg != "REGION 8" {
		t.Errorf("expected org from last path segment, got %q", opp.IssuingOrg)
	}
	if opp.EstimatedValue == nil || *opp.EstimatedValue != 250000 {
		t.Errorf("expected award amount 250000, got %v", opp.EstimatedValue)
	}
	if opp.LocationState != "UT" || opp.LocationCity != "Salt Lake City" || opp.LocationCountry != "USA" {
		t.Errorf("bad location: %q %q %q", opp.LocationState, opp.LocationCity, opp.LocationCountry)
	}
	if opp.ContactName != "Jane Doe" {
		t.Errorf("expected primary contact, got %q", opp.ContactName)
	}
	if opp.Deadline == nil || opp.PostedDate == nil {
		t.Errorf("expected parsed dates, got deadline=%v posted=%v", opp.Deadline, opp.PostedDate)
	}
}

func TestSamGovScraper_MissingAPIKey(t *testing.T) {
	s := NewSamGovScraper(nil)
	s.APIKey = ""

	res := s.Fetch(context.Background())

	if len(res.Opportunities) != 0 {
		t.Fatalf("expected no opportunities, got %d", len(res.Opportunities))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "SAM_GOV_API_KEY") {
		t.Fatalf("expected missing key error, got %v", res.Errors)
	}
}

func TestSamGovScraper_HTTPErrorIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSamGovScraper(nil)
	s.BaseURL = srv.URL
	s.APIKey = "test-key"

	res := s.Fetch(context.Background())

	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "429") {
		t.Fatalf("expected a 429 error string, got %v", res.Errors)
	}
}
