package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func queryContext(t *testing.T, rawQuery string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities?"+rawQuery, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestListParamsFromQuery(t *testing.T) {
	p := listParamsFromQuery(queryContext(t, "tier=HOT&status=NEW&source=SAM_GOV&q=health&sort=deadline&limit=50&offset=10&min_score=70"))

	if p.Tier != "HOT" || p.Status != "NEW" || p.Source != "SAM_GOV" {
		t.Errorf("unexpected filters: %+v", p)
	}
	if p.Search != "health" || p.SortBy != "deadline" {
		t.Errorf("unexpected search/sort: %+v", p)
	}
	if p.Limit != 50 || p.Offset != 10 || p.MinScore != 70 {
		t.Errorf("unexpected paging: %+v", p)
	}
	if p.IsUtah != nil {
		t.Error("isUtah must stay unset when absent")
	}
}

func TestListParamsFromQuery_IsUtah(t *testing.T) {
	p := listParamsFromQuery(queryContext(t, "isUtah=true"))
	if p.IsUtah == nil || !*p.IsUtah {
		t.Fatal("isUtah=true must set the filter")
	}

	p = listParamsFromQuery(queryContext(t, "isUtah=false"))
	if p.IsUtah == nil || *p.IsUtah {
		t.Fatal("isUtah=false must filter for non-Utah rows")
	}
}

func TestListParamsFromQuery_Defaults(t *testing.T) {
	p := listParamsFromQuery(queryContext(t, ""))
	if p.Limit != 20 || p.Offset != 0 || p.MinScore != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
