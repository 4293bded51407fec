package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// WorldBankScraper pulls procurement notices from the World Bank search
// API. No auth is required; results are paginated 200 at a time up to a
// hard cap of 1000.
type WorldBankScraper struct {
	Client       *http.Client
	BaseURL      string
	LookbackDays int
	Logger       *zap.Logger
}

func NewWorldBankScraper(logger *zap.Logger) *WorldBankScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorldBankScraper{
		Client:       &http.Client{Timeout: defaultTimeout},
		BaseURL:      "https://search.worldbank.org/api/v2/procnotices",
		LookbackDays: 30,
		Logger:       logger,
	}
}

func (s *WorldBankScraper) Source() models.Source { return models.SourceWorldBank }

type wbNotice struct {
	ID                     string `json:"id"`
	NoticeType             string `json:"notice_type"`
	NoticeDate             string `json:"noticedate"`
	NoticeStatus           string `json:"notice_status"`
	ProjectName            string `json:"project_name"`
	ProjectCountryName     string `json:"project_ctry_name"`
	BidDescription         string `json:"bid_description"`
	SubmissionDeadlineDate string `json:"submission_deadline_date"`
	ContactName            string `json:"contact_name"`
	ContactEmail           string `json:"contact_email"`
	ProcurementMethodName  string `json:"procurement_method_name"`
	NoticeText             string `json:"notice_text"`
	ProjectID              string `json:"project_id"`
}

type wbResponse struct {
	Total       int                 `json:"total"`
	Rows        int                 `json:"rows"`
	Procnotices map[string]wbNotice `json:"procnotices"`
}

func (s *WorldBankScraper) Fetch(ctx context.Context) FetchResult {
	from := time.Now().AddDate(0, 0, -s.LookbackDays).Format("2006-01-02")

	var result FetchResult
	offset := 0

	for offset < 1000 {
		params := url.Values{}
		params.Set("format", "json")
		params.Set("rows", "200")
		params.Set("os", strconv.Itoa(offset))
		params.Set("strdate", from)

		req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"?"+params.Encode(), nil)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("World Bank request build failed: %v", err))
			break
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.Client.Do(req)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("World Bank fetch failed: %v", err))
			break
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			result.Errors = append(result.Errors,
				fmt.Sprintf("World Bank API returned %d: %s", resp.StatusCode, truncate(string(body), 500)))
			break
		}

		var data wbResponse
		err = json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("World Bank response decode failed: %v", err))
			break
		}

		if offset == 0 {
			result.TotalAvailable = data.Total
		}

		if len(data.Procnotices) == 0 {
			break
		}

		for _, notice := range data.Procnotices {
			if notice.ID == "" {
				continue
			}
			result.Opportunities = append(result.Opportunities, transformWbNotice(notice))
		}

		if offset+len(data.Procnotices) >= result.TotalAvailable {
			break
		}
		offset += 200
	}

	s.Logger.Info("World Bank fetch finished",
		zap.Int("notices", len(result.Opportunities)),
		zap.Int("total", result.TotalAvailable))
	return result
}

func transformWbNotice(notice wbNotice) models.RawOpportunity {
	var parts []string
	if notice.BidDescription != "" {
		parts = append(parts, notice.BidDescription)
	}
	if notice.NoticeText != "" {
		parts = append(parts, notice.NoticeText)
	}
	description := truncate(strings.Join(parts, "\n\n"), 10000)

	title := notice.ProjectName
	if title == "" {
		title = truncate(notice.BidDescription, 200)
	}
	if title == "" {
		title = "Untitled"
	}

	category := notice.ProcurementMethodName
	if category == "" {
		category = notice.NoticeType
	}

	country := notice.ProjectCountryName
	if country == "" {
		country = "International"
	}

	rawData, _ := json.Marshal(notice)

	return models.RawOpportunity{
		Source:          models.SourceWorldBank,
		SourceID:        notice.ID,
		SourceURL:       fmt.Sprintf("https://projects.worldbank.org/en/projects-operations/procurement-detail/%s", notice.ID),
		Title:           title,
		Description:     description,
		IssuingOrg:      "World Bank",
		Category:        category,
		PostedDate:      parseFlexibleDate(notice.NoticeDate),
		Deadline:        parseFlexibleDate(notice.SubmissionDeadlineDate),
		LocationCountry: country,
		ContactName:     notice.ContactName,
		ContactEmail:    notice.ContactEmail,
		RawData:         rawData,
	}
}
