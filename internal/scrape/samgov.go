package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// SamGovScraper pulls contract notices from the SAM.gov opportunities
// API. The public API key tier allows very few requests per day, so a
// single page of 1000 covers a daily lookback window.
type SamGovScraper struct {
	Client       *http.Client
	BaseURL      string
	APIKey       string
	LookbackDays int
	Logger       *zap.Logger
}

func NewSamGovScraper(logger *zap.Logger) *SamGovScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SamGovScraper{
		Client:       &http.Client{Timeout: defaultTimeout},
		BaseURL:      "https://api.sam.gov/opportunities/v2/search",
		APIKey:       os.Getenv("SAM_GOV_API_KEY"),
		LookbackDays: 7,
		Logger:       logger,
	}
}

func (s *SamGovScraper) Source() models.Source { return models.SourceSamGov }

type samContact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
}

type samPlaceField struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type samNotice struct {
	NoticeID           string       `json:"noticeId"`
	Title              string       `json:"title"`
	SolicitationNumber string       `json:"solicitationNumber"`
	FullParentPathName string       `json:"fullParentPathName"`
	PostedDate         string       `json:"postedDate"`
	Type               string       `json:"type"`
	Active             string       `json:"active"`
	Description        string       `json:"description"`
	UILink             string       `json:"uiLink"`
	ResponseDeadline   string       `json:"responseDeadLine"`
	Award              *struct {
		Amount string `json:"amount"`
		Number string `json:"number"`
	} `json:"award"`
	PointOfContact     []samContact `json:"pointOfContact"`
	PlaceOfPerformance struct {
		State   *samPlaceField `json:"state"`
		City    *samPlaceField `json:"city"`
		Country *samPlaceField `json:"country"`
	} `json:"placeOfPerformance"`
}

type samResponse struct {
	TotalRecords      int         `json:"totalRecords"`
	OpportunitiesData []samNotice `json:"opportunitiesData"`
}

func (s *SamGovScraper) Fetch(ctx context.Context) FetchResult {
	if s.APIKey == "" {
		return FetchResult{Errors: []string{"SAM_GOV_API_KEY environment variable is not set"}}
	}

	now := time.Now()
	from := now.AddDate(0, 0, -s.LookbackDays)

	params := url.Values{}
	params.Set("api_key", s.APIKey)
	params.Set("postedFrom", from.Format("01/02/2006"))
	params.Set("postedTo", now.Format("01/02/2006"))
	params.Set("limit", "1000")
	params.Set("offset", "0")

	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("SAM.gov request build failed: %v", err)}}
	}
	req.Header.Set("Accept", "application/json")

	s.Logger.Info("fetching SAM.gov notices",
		zap.String("posted_from", params.Get("postedFrom")),
		zap.String("posted_to", params.Get("postedTo")))

	resp, err := s.Client.Do(req)
	if err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("SAM.gov fetch failed: %v", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return FetchResult{Errors: []string{
			fmt.Sprintf("SAM.gov API returned %d: %s", resp.StatusCode, truncate(string(body), 500)),
		}}
	}

	var data samResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("SAM.gov response decode failed: %v", err)}}
	}

	result := FetchResult{TotalAvailable: data.TotalRecords}
	for _, notice := range data.OpportunitiesData {
		if strings.EqualFold(notice.Active, "no") {
			continue
		}
		result.Opportunities = append(result.Opportunities, transformSamNotice(notice))
	}

	if data.TotalRecords > 1000 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("SAM.gov returned %d total results but only first 1000 were fetched", data.TotalRecords))
	}

	s.Logger.Info("SAM.gov fetch finished",
		zap.Int("notices", len(result.Opportunities)),
		zap.Int("total", data.TotalRecords))
	return result
}

func transformSamNotice(notice samNotice) models.RawOpportunity {
	contact := samContact{}
	for _, c := range notice.PointOfContact {
		if strings.EqualFold(c.Type, "primary") {
			contact = c
			break
		}
	}
	if contact == (samContact{}) && len(notice.PointOfContact) > 0 {
		contact = notice.PointOfContact[0]
	}

	var state, city string
	country := "USA"
	if notice.PlaceOfPerformance.State != nil {
		state = notice.PlaceOfPerformance.State.Code
	}
	if notice.PlaceOfPerformance.City != nil {
		city = notice.PlaceOfPerformance.City.Name
	}
	if notice.PlaceOfPerformance.Country != nil {
		code := notice.PlaceOfPerformance.Country.Code
		if code != "" && code != "US" && code != "USA" {
			country = code
		}
	}

	sourceURL := notice.UILink
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("https://sam.gov/opp/%s/view", notice.NoticeID)
	}

	issuingOrg := notice.FullParentPathName
	if idx := strings.LastIndex(issuingOrg, "."); idx >= 0 {
		issuingOrg = strings.TrimSpace(issuingOrg[idx+1:])
	}

	rawData, _ := json.Marshal(notice)

	return models.RawOpportunity{
		Source:          models.SourceSamGov,
		SourceID:        notice.NoticeID,
		SourceURL:       sourceURL,
		Title:           notice.Title,
		Description:     notice.Description,
		IssuingOrg:      issuingOrg,
		Category:        notice.Type,
		PostedDate:      parseFlexibleDate(notice.PostedDate),
		Deadline:        parseFlexibleDate(notice.ResponseDeadline),
		EstimatedValue:  parseSamAwardAmount(notice),
		LocationState:   state,
		LocationCity:    city,
		LocationCountry: country,
		ContactName:     contact.FullName,
		ContactEmail:    contact.Email,
		ContactPhone:    contact.Phone,
		RawData:         rawData,
	}
}

func parseSamAwardAmount(notice samNotice) *float64 {
	if notice.Award == nil || notice.Award.Amount == "" {
		return nil
	}
	clean := strings.NewReplacer("$", "", ",", "").Replace(notice.Award.Amount)
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &val
}
