package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/socio-analytics/opp-radar/internal/models"
)

// ReconcileParams is everything the pipeline computed for one scraped
// opportunity: the normalized record plus its score and keyword matches.
type ReconcileParams struct {
	Raw       models.RawOpportunity
	Score     float64
	Breakdown models.ScoreBreakdown
	Tier      models.Tier
	IsUtah    bool
	Matches   []models.KeywordMatchRow
	Terms     []string
}

// ReconcileOpportunity upserts one opportunity keyed on (source, source_id)
// and rebuilds its keyword associations, all in a single transaction. The
// curated columns (status, decision, assigned_to_id, notes, ai_brief) are
// set only on insert and never overwritten on update.
//
// isNew is true when the row was inserted rather than updated.
func (s *Store) ReconcileOpportunity(ctx context.Context, p ReconcileParams) (bool, error) {
	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return false, fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	terms := p.Terms
	if terms == nil {
		terms = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var oppID uuid.UUID
	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO opportunities (
			source, source_id, source_url, title, description,
			issuing_org, category, posted_date, deadline,
			estimated_value, estimated_value_low, estimated_value_high,
			location_state, location_city, location_country, is_utah,
			contact_name, contact_email, contact_phone,
			icp_score, score_breakdown, tier, keywords_matched, raw_data
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), $8, $9,
			$10, $11, $12,
			NULLIF($13, ''), NULLIF($14, ''), $15, $16,
			NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''),
			$20, $21, $22, $23, $24
		)
		ON CONFLICT (source, source_id) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			issuing_org = EXCLUDED.issuing_org,
			category = EXCLUDED.category,
			posted_date = EXCLUDED.posted_date,
			deadline = EXCLUDED.deadline,
			estimated_value = EXCLUDED.estimated_value,
			estimated_value_low = EXCLUDED.estimated_value_low,
			estimated_value_high = EXCLUDED.estimated_value_high,
			location_state = EXCLUDED.location_state,
			location_city = EXCLUDED.location_city,
			location_country = EXCLUDED.location_country,
			is_utah = EXCLUDED.is_utah,
			contact_name = EXCLUDED.contact_name,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			icp_score = EXCLUDED.icp_score,
			score_breakdown = EXCLUDED.score_breakdown,
			tier = EXCLUDED.tier,
			keywords_matched = EXCLUDED.keywords_matched,
			raw_data = EXCLUDED.raw_data,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`,
		p.Raw.Source, p.Raw.SourceID, p.Raw.SourceURL, p.Raw.Title, p.Raw.Description,
		p.Raw.IssuingOrg, p.Raw.Category, p.Raw.PostedDate, p.Raw.Deadline,
		p.Raw.EstimatedValue, p.Raw.EstimatedValueLow, p.Raw.EstimatedValueHigh,
		p.Raw.LocationState, p.Raw.LocationCity, countryOrDefault(p.Raw.LocationCountry), p.IsUtah,
		p.Raw.ContactName, p.Raw.ContactEmail, p.Raw.ContactPhone,
		p.Score, breakdown, p.Tier, terms, p.Raw.RawData,
	).Scan(&oppID, &createdAt, &updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to upsert opportunity: %w", err)
	}

	// Fresh inserts get identical timestamps; anything reconciled later
	// will have drifted apart by more than the clock resolution.
	isNew := updatedAt.Sub(createdAt).Abs() < time.Second

	if _, err := tx.Exec(ctx, "DELETE FROM opportunity_keywords WHERE opportunity_id = $1", oppID); err != nil {
		return false, fmt.Errorf("failed to clear keyword matches: %w", err)
	}

	seen := make(map[uuid.UUID]bool)
	var keywordIDs []uuid.UUID
	for _, m := range p.Matches {
		if _, err := tx.Exec(ctx, `
			INSERT INTO opportunity_keywords (opportunity_id, keyword_id, match_location, matched_text)
			VALUES ($1, $2, $3, $4)
		`, oppID, m.KeywordID, m.MatchLocation, m.MatchedText); err != nil {
			return false, fmt.Errorf("failed to record keyword match: %w", err)
		}
		if !seen[m.KeywordID] {
			seen[m.KeywordID] = true
			keywordIDs = append(keywordIDs, m.KeywordID)
		}
	}

	if len(keywordIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE keywords SET match_count = match_count + 1, last_match_at = NOW()
			WHERE id = ANY($1)
		`, keywordIDs); err != nil {
			return false, fmt.Errorf("failed to bump keyword counters: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return isNew, nil
}

func countryOrDefault(country string) string {
	if country == "" {
		return "USA"
	}
	return country
}
