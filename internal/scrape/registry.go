package scrape

import (
	"embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for HTML portal sources. The API
// adapters (SAM.gov, World Bank, Bonfire) are code; small municipal
// portals that are plain HTML tables get declared here instead.
type Registry struct {
	Portals []PortalConfig `yaml:"portals"`
}

// PortalConfig declares one scrapeable HTML listing page.
type PortalConfig struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	ListURL        string         `yaml:"list_url"`
	State          string         `yaml:"state,omitempty"`
	Country        string         `yaml:"country,omitempty"`
	MaxPages       int            `yaml:"max_pages,omitempty"`
	Selectors      SelectorConfig `yaml:"selectors"`
	Pagination     string         `yaml:"pagination_next,omitempty"` // CSS selector for the next page link
	DeadlineLayout string         `yaml:"deadline_layout,omitempty"` // Go time layout; flexible parsing when empty
	Fetch          FetchConfig    `yaml:"fetch,omitempty"`
}

// SelectorConfig names the CSS selectors for one listing row.
type SelectorConfig struct {
	Container   string `yaml:"container"`
	Link        string `yaml:"link,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Org         string `yaml:"org,omitempty"`
	Deadline    string `yaml:"deadline,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// FetchConfig tunes the collector per portal.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`
	UserAgent      string  `yaml:"user_agent,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml, falling back to the
// given path for local development. Environment variables in the YAML
// are expanded.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}
