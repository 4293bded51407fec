package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socio-analytics/opp-radar/internal/models"
)

const portalFixture = `<html><body>
<table class="bids-table"><tbody>
<tr>
  <td><a href="/bids/snow-removal">Snow Removal Services 2026</a></td>
  <td>Public Services</td>
  <td>03/10/2026</td>
</tr>
<tr>
  <td><a href="/bids/health-study">Community Health Needs Study</a></td>
  <td>Health Department</td>
  <td>not yet scheduled</td>
</tr>
<tr>
  <td>Row without a link</td>
  <td></td>
  <td></td>
</tr>
</tbody></table>
</body></html>`

func portalTestConfig(listURL string) PortalConfig {
	return PortalConfig{
		ID:      "TEST_PORTAL",
		Name:    "Test City Procurement",
		ListURL: listURL,
		State:   "UT",
		Country: "USA",
		Selectors: SelectorConfig{
			Container: "table.bids-table tbody tr",
			Link:      "td:nth-child(1) a",
			Title:     "td:nth-child(1) a",
			Org:       "td:nth-child(2)",
			Deadline:  "td:nth-child(3)",
		},
		DeadlineLayout: "01/02/2006",
	}
}

func TestPortalScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(portalFixture))
	}))
	defer srv.Close()

	s := NewPortalScraper(portalTestConfig(srv.URL+"/bids"), nil)
	res := s.Fetch(context.Background())

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Opportunities) != 2 {
		t.Fatalf("expected 2 rows (linkless row skipped), got %d", len(res.Opportunities))
	}

	first := res.Opportunities[0]
	if first.Source != models.Source("TEST_PORTAL") {
		t.Fatalf("bad source: %q", first.Source)
	}
	if first.Title != "Snow Removal Services 2026" {
		t.Errorf("bad title: %q", first.Title)
	}
	if first.SourceURL != srv.URL+"/bids/snow-removal" {
		t.Errorf("expected absolute url, got %q", first.SourceURL)
	}
	if first.IssuingOrg != "Public Services" {
		t.Errorf("bad org: %q", first.IssuingOrg)
	}
	if first.Deadline == nil {
		t.Error("expected parsed deadline for first row")
	}
	if first.LocationState != "UT" {
		t.Errorf("portal state should carry through, got %q", first.LocationState)
	}

	second := res.Opportunities[1]
	if second.Deadline != nil {
		t.Errorf("unparseable deadline should stay nil, got %v", second.Deadline)
	}
}

func TestLoadRegistry_Embedded(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("embedded registry must load: %v", err)
	}
	if len(reg.Portals) == 0 {
		t.Fatal("expected at least one portal in embedded registry")
	}
	for _, p := range reg.Portals {
		if p.ID == "" || p.ListURL == "" || p.Selectors.Container == "" {
			t.Fatalf("portal %+v missing required fields", p)
		}
	}
}

func TestForSource(t *testing.T) {
	reg := &Registry{Portals: []PortalConfig{portalTestConfig("https://example.com/bids")}}

	s, err := ForSource(reg, nil, models.SourceSamGov)
	if err != nil {
		t.Fatalf("SAM adapter must resolve: %v", err)
	}
	if s.Source() != models.SourceSamGov {
		t.Fatalf("wrong adapter: %q", s.Source())
	}

	p, err := ForSource(reg, nil, models.Source("TEST_PORTAL"))
	if err != nil {
		t.Fatalf("portal adapter must resolve: %v", err)
	}
	if p.Source() != models.Source("TEST_PORTAL") {
		t.Fatalf("wrong portal adapter: %q", p.Source())
	}

	if _, err := ForSource(reg, nil, models.Source("NOPE")); err == nil {
		t.Fatal("unknown source must error")
	}
}
