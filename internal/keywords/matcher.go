// Package keywords matches the curated keyword set against opportunity
// text. Like the scoring engine it is pure; loading the active set is
// the caller's job.
package keywords

import (
	"strings"

	"github.com/google/uuid"
	"github.com/socio-analytics/opp-radar/internal/models"
)

const (
	LocationTitle       = "title"
	LocationDescription = "description"
	LocationBoth        = "both"
)

// Match is one keyword hit against an opportunity's text.
type Match struct {
	KeywordID     uuid.UUID
	Term          string
	Type          models.KeywordType
	Tier          models.KeywordTier
	MatchLocation string
}

// MatchResult aggregates all hits for one opportunity.
//
// HasExcludeMatch is informational: the pipeline records it nowhere and
// never suppresses an opportunity because of it. Keep it that way unless
// the product decides otherwise.
type MatchResult struct {
	Matched         []Match
	IncludeTerms    []string
	HasExcludeMatch bool
}

// MatchKeywords checks each keyword term as a case-insensitive substring
// of the title and description independently. Callers pass only active
// keywords; an empty set or empty text yields an empty result.
func MatchKeywords(title, description string, kws []models.Keyword) MatchResult {
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	result := MatchResult{}
	seenInclude := make(map[string]bool)

	for _, kw := range kws {
		term := strings.ToLower(kw.Term)
		if term == "" {
			continue
		}

		inTitle := titleLower != "" && strings.Contains(titleLower, term)
		inDesc := descLower != "" && strings.Contains(descLower, term)
		if !inTitle && !inDesc {
			continue
		}

		location := LocationDescription
		if inTitle && inDesc {
			location = LocationBoth
		} else if inTitle {
			location = LocationTitle
		}

		result.Matched = append(result.Matched, Match{
			KeywordID:     kw.ID,
			Term:          kw.Term,
			Type:          kw.Type,
			Tier:          kw.Tier,
			MatchLocation: location,
		})

		switch kw.Type {
		case models.KeywordInclude:
			if !seenInclude[term] {
				seenInclude[term] = true
				result.IncludeTerms = append(result.IncludeTerms, kw.Term)
			}
		case models.KeywordExclude:
			result.HasExcludeMatch = true
		}
	}

	return result
}
