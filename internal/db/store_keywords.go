package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/socio-analytics/opp-radar/internal/models"
)

const keywordCols = `id, term, type, tier, category, is_active, match_count, last_match_at, created_at, updated_at`

func scanKeyword(scan func(dest ...interface{}) error) (models.Keyword, error) {
	var k models.Keyword
	var category *string
	err := scan(&k.ID, &k.Term, &k.Type, &k.Tier, &category, &k.IsActive,
		&k.MatchCount, &k.LastMatchAt, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return k, err
	}
	if category != nil {
		k.Category = *category
	}
	return k, nil
}

// KeywordListParams filters the keyword list. Zero values mean no filter.
type KeywordListParams struct {
	Type     string
	Tier     string
	Category string
	IsActive *bool
	Search   string
}

func (s *Store) ListKeywords(ctx context.Context, p KeywordListParams) ([]models.Keyword, error) {
	where := []string{"1=1"}
	var args []interface{}
	argIdx := 1

	if p.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, p.Type)
		argIdx++
	}
	if p.Tier != "" {
		where = append(where, fmt.Sprintf("tier = $%d", argIdx))
		args = append(args, p.Tier)
		argIdx++
	}
	if p.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, p.Category)
		argIdx++
	}
	if p.IsActive != nil {
		where = append(where, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *p.IsActive)
		argIdx++
	}
	if p.Search != "" {
		where = append(where, fmt.Sprintf("term ILIKE $%d", argIdx))
		args = append(args, "%"+p.Search+"%")
		argIdx++
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM keywords WHERE %s ORDER BY type, lower(term)",
		keywordCols, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("keywords query failed: %w", err)
	}
	defer rows.Close()

	kws := []models.Keyword{}
	for rows.Next() {
		k, err := scanKeyword(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("keyword scan failed: %w", err)
		}
		kws = append(kws, k)
	}
	return kws, rows.Err()
}

// ListActiveKeywords returns the match set the pipeline works with.
func (s *Store) ListActiveKeywords(ctx context.Context) ([]models.Keyword, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM keywords WHERE is_active ORDER BY lower(term)", keywordCols))
	if err != nil {
		return nil, fmt.Errorf("active keywords query failed: %w", err)
	}
	defer rows.Close()

	var kws []models.Keyword
	for rows.Next() {
		k, err := scanKeyword(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("keyword scan failed: %w", err)
		}
		kws = append(kws, k)
	}
	return kws, rows.Err()
}

type KeywordInput struct {
	Term     string
	Type     models.KeywordType
	Tier     models.KeywordTier
	Category string
	IsActive *bool
}

func (s *Store) CreateKeyword(ctx context.Context, in KeywordInput) (*models.Keyword, error) {
	tier := in.Tier
	if tier == "" {
		tier = models.KeywordTierMedium
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO keywords (term, type, tier, category, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING %s
	`, keywordCols), strings.TrimSpace(in.Term), in.Type, tier, in.Category, active)

	k, err := scanKeyword(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTerm
		}
		return nil, fmt.Errorf("keyword insert failed: %w", err)
	}
	return &k, nil
}

type KeywordUpdate struct {
	Term     *string
	Type     *models.KeywordType
	Tier     *models.KeywordTier
	Category *string
	IsActive *bool
}

func (s *Store) UpdateKeyword(ctx context.Context, id string, upd KeywordUpdate) (*models.Keyword, error) {
	set := []string{"updated_at = NOW()"}
	var args []interface{}
	argIdx := 1

	if upd.Term != nil {
		set = append(set, fmt.Sprintf("term = $%d", argIdx))
		args = append(args, strings.TrimSpace(*upd.Term))
		argIdx++
	}
	if upd.Type != nil {
		set = append(set, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *upd.Type)
		argIdx++
	}
	if upd.Tier != nil {
		set = append(set, fmt.Sprintf("tier = $%d", argIdx))
		args = append(args, *upd.Tier)
		argIdx++
	}
	if upd.Category != nil {
		set = append(set, fmt.Sprintf("category = NULLIF($%d, '')", argIdx))
		args = append(args, *upd.Category)
		argIdx++
	}
	if upd.IsActive != nil {
		set = append(set, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *upd.IsActive)
		argIdx++
	}

	sql := fmt.Sprintf("UPDATE keywords SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), argIdx, keywordCols)
	args = append(args, id)

	k, err := scanKeyword(s.pool.QueryRow(ctx, sql, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTerm
		}
		return nil, fmt.Errorf("keyword update failed: %w", err)
	}
	return &k, nil
}

// KeywordMatchedOpportunity is the slim projection shown on a keyword's
// detail view.
type KeywordMatchedOpportunity struct {
	ID            uuid.UUID                `json:"id"`
	Title         string                   `json:"title"`
	Source        models.Source            `json:"source"`
	Tier          models.Tier              `json:"tier"`
	ICPScore      float64                  `json:"icpScore"`
	Status        models.OpportunityStatus `json:"status"`
	Deadline      *time.Time               `json:"deadline"`
	MatchLocation string                   `json:"matchLocation"`
}

type KeywordDetail struct {
	models.Keyword
	MatchedOpportunities []KeywordMatchedOpportunity `json:"matchedOpportunities"`
}

// GetKeyword returns one keyword with the opportunities it matched,
// highest scored first.
func (s *Store) GetKeyword(ctx context.Context, id string) (*KeywordDetail, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM keywords WHERE id = $1", keywordCols), id)
	k, err := scanKeyword(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("keyword query failed: %w", err)
	}

	detail := &KeywordDetail{Keyword: k, MatchedOpportunities: []KeywordMatchedOpportunity{}}

	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.title, o.source, o.tier, o.icp_score, o.status, o.deadline, ok.match_location
		FROM opportunity_keywords ok
		JOIN opportunities o ON o.id = ok.opportunity_id
		WHERE ok.keyword_id = $1
		ORDER BY o.icp_score DESC
		LIMIT 50
	`, id)
	if err != nil {
		return nil, fmt.Errorf("keyword matches query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m KeywordMatchedOpportunity
		if err := rows.Scan(&m.ID, &m.Title, &m.Source, &m.Tier, &m.ICPScore,
			&m.Status, &m.Deadline, &m.MatchLocation); err != nil {
			return nil, fmt.Errorf("keyword match scan failed: %w", err)
		}
		detail.MatchedOpportunities = append(detail.MatchedOpportunities, m)
	}
	return detail, rows.Err()
}

type KeywordTypeStats struct {
	Active  int `json:"active"`
	Paused  int `json:"paused"`
	Matches int `json:"matches"`
}

type KeywordStats struct {
	Total   int              `json:"total"`
	Active  int              `json:"active"`
	Include KeywordTypeStats `json:"include"`
	Exclude KeywordTypeStats `json:"exclude"`
}

// KeywordStatsSummary aggregates active and paused counts per keyword
// type for the dashboard header.
func (s *Store) KeywordStatsSummary(ctx context.Context) (*KeywordStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT type,
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE NOT is_active),
		       COALESCE(SUM(match_count), 0)
		FROM keywords
		GROUP BY type
	`)
	if err != nil {
		return nil, fmt.Errorf("keyword stats query failed: %w", err)
	}
	defer rows.Close()

	var stats KeywordStats
	for rows.Next() {
		var typ string
		var ts KeywordTypeStats
		if err := rows.Scan(&typ, &ts.Active, &ts.Paused, &ts.Matches); err != nil {
			return nil, fmt.Errorf("keyword stats scan failed: %w", err)
		}
		switch models.KeywordType(typ) {
		case models.KeywordInclude:
			stats.Include = ts
		case models.KeywordExclude:
			stats.Exclude = ts
		}
		stats.Total += ts.Active + ts.Paused
		stats.Active += ts.Active
	}
	return &stats, rows.Err()
}

// ListKeywordCategories returns the distinct categories in use.
func (s *Store) ListKeywordCategories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT category FROM keywords WHERE category IS NOT NULL ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("keyword categories query failed: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("keyword category scan failed: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) DeleteKeyword(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM keywords WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("keyword delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
