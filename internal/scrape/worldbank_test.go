package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socio-analytics/opp-radar/internal/models"
)

const wbFixture = `{
	"total": 2,
	"rows": 200,
	"procnotices": {
		"0": {
			"id": "OP001",
			"notice_type": "Invitation for Bids",
			"noticedate": "2026-02-01",
			"project_name": "Health System Strengthening",
			"project_ctry_name": "Kenya",
			"bid_description": "Consulting services for health program evaluation",
			"submission_deadline_date": "2026-04-01T23:59:00Z",
			"contact_name": "Procurement Office",
			"contact_email": "procurement@example.org",
			"procurement_method_name": "QCBS",
			"notice_text": "Full notice text here",
			"project_id": "P12345"
		},
		"1": {
			"id": "",
			"project_name": "Row without id is skipped"
		}
	}
}`

func TestWorldBankScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(wbFixture))
	}))
	defer srv.Close()

	s := NewWorldBankScraper(nil)
	s.BaseURL = srv.URL

	res := s.Fetch(context.Background())

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.TotalAvailable != 2 {
		t.Fatalf("expected totalAvailable=2, got %d", res.TotalAvailable)
	}
	if len(res.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity (id-less row skipped), got %d", len(res.Opportunities))
	}

	opp := res.Opportunities[0]
	if opp.Source != models.SourceWorldBank || opp.SourceID != "OP001" {
		t.Fatalf("bad identity: %+v", opp)
	}
	if opp.Title != "Health System Strengthening" {
		t.Errorf("bad title: %q", opp.Title)
	}
	if opp.IssuingOrg != "World Bank" {
		t.Errorf("bad org: %q", opp.IssuingOrg)
	}
	if opp.Category != "QCBS" {
		t.Errorf("expected procurement method as category, got %q", opp.Category)
	}
	if opp.LocationCountry != "Kenya" {
		t.Errorf("bad country: %q", opp.LocationCountry)
	}
	if opp.Description == "" || opp.Deadline == nil {
		t.Errorf("expected description and deadline, got %+v", opp)
	}
}

func TestTransformWbNotice_Fallbacks(t *testing.T) {
	opp := transformWbNotice(wbNotice{ID: "X1"})
	if opp.Title != "Untitled" {
		t.Errorf("expected Untitled fallback, got %q", opp.Title)
	}
	if opp.LocationCountry != "International" {
		t.Errorf("expected International fallback, got %q", opp.LocationCountry)
	}
}
