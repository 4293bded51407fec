package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/models"
)

// PortalScraper turns one registry-declared HTML listing page into a
// source adapter. Rows are extracted with the portal's CSS selectors;
// pagination follows the configured next link up to MaxPages.
type PortalScraper struct {
	Config PortalConfig
	Logger *zap.Logger
}

func NewPortalScraper(cfg PortalConfig, logger *zap.Logger) *PortalScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalScraper{Config: cfg, Logger: logger}
}

func (s *PortalScraper) Source() models.Source { return models.Source(s.Config.ID) }

func (s *PortalScraper) collector(host string) *colly.Collector {
	userAgent := s.Config.Fetch.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowedDomains(host),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)

	timeout := defaultTimeout
	if s.Config.Fetch.TimeoutSeconds > 0 {
		timeout = time.Duration(s.Config.Fetch.TimeoutSeconds) * time.Second
	}
	c.SetRequestTimeout(timeout)

	delay := 1 * time.Second
	if s.Config.Fetch.RateLimitRPS > 0 {
		delay = time.Duration(float64(time.Second) / s.Config.Fetch.RateLimitRPS)
	}
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	})

	return c
}

func (s *PortalScraper) Fetch(ctx context.Context) FetchResult {
	var result FetchResult

	listURL, err := url.Parse(s.Config.ListURL)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: invalid list_url: %v", s.Config.ID, err))
		return result
	}

	maxPages := s.Config.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	c := s.collector(listURL.Hostname())

	pagesVisited := 0
	var nextPage string

	c.OnRequest(func(r *colly.Request) {
		if err := ctx.Err(); err != nil {
			r.Abort()
		}
	})

	c.OnHTML(s.Config.Selectors.Container, func(e *colly.HTMLElement) {
		raw, ok := s.extractRow(e.DOM, e.Request)
		if !ok {
			return
		}
		result.Opportunities = append(result.Opportunities, raw)
	})

	if s.Config.Pagination != "" {
		c.OnHTML(s.Config.Pagination, func(e *colly.HTMLElement) {
			nextPage = e.Request.AbsoluteURL(e.Attr("href"))
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: fetch of %s failed: %v", s.Config.ID, r.Request.URL, err))
	})

	page := s.Config.ListURL
	for page != "" && pagesVisited < maxPages {
		nextPage = ""
		if err := c.Visit(page); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: visit of %s failed: %v", s.Config.ID, page, err))
			break
		}
		c.Wait()
		pagesVisited++
		page = nextPage
	}

	result.TotalAvailable = len(result.Opportunities)
	s.Logger.Info("portal fetch finished",
		zap.String("portal", s.Config.ID),
		zap.Int("listings", len(result.Opportunities)),
		zap.Int("pages", pagesVisited))
	return result
}

// extractRow pulls one listing out of a container node. Rows without a
// title and link are header or filler rows and get skipped.
func (s *PortalScraper) extractRow(sel *goquery.Selection, req *colly.Request) (models.RawOpportunity, bool) {
	selectors := s.Config.Selectors

	title := strings.TrimSpace(sel.Find(selectors.Title).First().Text())
	if title == "" {
		return models.RawOpportunity{}, false
	}

	linkSel := sel.Find(selectors.Link).First()
	href, _ := linkSel.Attr("href")
	if href == "" {
		return models.RawOpportunity{}, false
	}
	link := req.AbsoluteURL(href)

	org := ""
	if selectors.Org != "" {
		org = strings.TrimSpace(sel.Find(selectors.Org).First().Text())
	}
	if org == "" {
		org = s.Config.Name
	}

	description := ""
	if selectors.Description != "" {
		description = strings.TrimSpace(sel.Find(selectors.Description).First().Text())
	}

	var deadline *time.Time
	if selectors.Deadline != "" {
		deadlineStr := strings.TrimSpace(sel.Find(selectors.Deadline).First().Text())
		if s.Config.DeadlineLayout != "" {
			if t, err := time.Parse(s.Config.DeadlineLayout, deadlineStr); err == nil {
				deadline = &t
			}
		} else {
			deadline = parseFlexibleDate(deadlineStr)
		}
	}

	country := s.Config.Country
	if country == "" {
		country = "USA"
	}

	rawData, _ := json.Marshal(map[string]string{
		"portal": s.Config.ID,
		"title":  title,
		"link":   link,
	})

	return models.RawOpportunity{
		Source:          models.Source(s.Config.ID),
		SourceID:        link,
		SourceURL:       link,
		Title:           title,
		Description:     description,
		IssuingOrg:      org,
		Deadline:        deadline,
		LocationState:   s.Config.State,
		LocationCountry: country,
		RawData:         rawData,
	}, true
}
