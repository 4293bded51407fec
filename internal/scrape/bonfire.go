package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// BonfireScraper pulls the open listing set from the Utah Bonfire
// public portal. A single unauthenticated request returns everything
// currently open.
type BonfireScraper struct {
	Client  *http.Client
	BaseURL string
	Logger  *zap.Logger
}

func NewBonfireScraper(logger *zap.Logger) *BonfireScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BonfireScraper{
		Client:  &http.Client{Timeout: defaultTimeout},
		BaseURL: "https://utah.bonfirehub.com/PublicPortal/getOpenPublicOpportunitiesSectionData",
		Logger:  logger,
	}
}

func (s *BonfireScraper) Source() models.Source { return models.SourceUtahBonfire }

type bonfireProject struct {
	ProjectID           string `json:"ProjectID"`
	PrivateProjectID    string `json:"PrivateProjectID"`
	ReferenceID         string `json:"ReferenceID"`
	ProjectStatusID     string `json:"ProjectStatusID"`
	ProjectSubStatusID  string `json:"ProjectSubStatusID"`
	ProjectVisibilityID string `json:"ProjectVisibilityID"`
	ProjectName         string `json:"ProjectName"`
	DateClose           string `json:"DateClose"`
	DepartmentID        string `json:"DepartmentID"`
}

type bonfireDepartment struct {
	DepartmentName string `json:"DepartmentName"`
}

type bonfireResponse struct {
	Success int    `json:"success"`
	Message string `json:"message"`
	Payload struct {
		Projects    map[string]bonfireProject    `json:"projects"`
		Departments map[string]bonfireDepartment `json:"departments"`
	} `json:"payload"`
}

func (s *BonfireScraper) Fetch(ctx context.Context) FetchResult {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL, nil)
	if err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("Bonfire request build failed: %v", err)}}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("Bonfire fetch failed: %v", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return FetchResult{Errors: []string{
			fmt.Sprintf("Bonfire API returned %d: %s", resp.StatusCode, truncate(string(body), 500)),
		}}
	}

	var data bonfireResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("Bonfire response decode failed: %v", err)}}
	}

	if data.Success == 0 || data.Payload.Projects == nil {
		return FetchResult{Errors: []string{
			fmt.Sprintf("Bonfire API returned unsuccessful response: %s", data.Message),
		}}
	}

	result := FetchResult{TotalAvailable: len(data.Payload.Projects)}
	for _, project := range data.Payload.Projects {
		result.Opportunities = append(result.Opportunities,
			transformBonfireProject(project, data.Payload.Departments))
	}

	s.Logger.Info("Bonfire fetch finished", zap.Int("listings", len(result.Opportunities)))
	return result
}

// Bonfire close dates are "YYYY-MM-DD HH:mm:ss" in Mountain Time.
var mountainTime = time.FixedZone("MST", -7*60*60)

func parseBonfireDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, mountainTime)
	if err != nil {
		return nil
	}
	return &t
}

func transformBonfireProject(project bonfireProject, departments map[string]bonfireDepartment) models.RawOpportunity {
	deptName := ""
	if dept, ok := departments[project.DepartmentID]; ok {
		deptName = dept.DepartmentName
	}

	sourceURL := fmt.Sprintf("https://utah.bonfirehub.com/opportunities/%s", project.ProjectID)
	if project.ProjectVisibilityID != "1" {
		sourceURL = fmt.Sprintf("https://utah.bonfirehub.com/opportunities/private/%s", project.PrivateProjectID)
	}

	description := ""
	if deptName != "" {
		description = fmt.Sprintf("%s. Issued by %s. Reference: %s",
			project.ProjectName, deptName, project.ReferenceID)
	}

	rawData, _ := json.Marshal(project)

	return models.RawOpportunity{
		Source:          models.SourceUtahBonfire,
		SourceID:        project.ProjectID,
		SourceURL:       sourceURL,
		Title:           project.ProjectName,
		Description:     description,
		IssuingOrg:      deptName,
		Deadline:        parseBonfireDate(project.DateClose),
		LocationState:   "UT",
		LocationCountry: "USA",
		RawData:         rawData,
	}
}
