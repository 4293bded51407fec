package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/socio-analytics/opp-radar/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateTerm = errors.New("keyword term already exists")
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type ListParams struct {
	Tier         string
	Status       string
	Source       string
	AssignedToID string
	IsUtah       *bool
	MinScore     float64
	Search       string
	SortBy       string // "score" (default), "deadline", "newest"
	Limit        int
	Offset       int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// selectCols is the comprehensive column list for all opportunity queries.
const selectCols = `o.id, o.source, o.source_id, o.source_url, o.title, o.description,
	o.issuing_org, o.category, o.posted_date, o.deadline,
	o.estimated_value, o.estimated_value_low, o.estimated_value_high,
	o.location_state, o.location_city, o.location_country, o.is_utah,
	o.contact_name, o.contact_email, o.contact_phone,
	o.icp_score, o.score_breakdown, o.tier, o.keywords_matched, o.raw_data,
	o.status, o.decision, o.assigned_to_id, o.notes, o.ai_brief,
	o.created_at, o.updated_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	var sourceURL, description, issuingOrg, category *string
	var locationState, locationCity *string
	var contactName, contactEmail, contactPhone *string
	var decision, notes *string
	var breakdownRaw []byte

	err := scan(
		&o.ID, &o.Source, &o.SourceID, &sourceURL, &o.Title, &description,
		&issuingOrg, &category, &o.PostedDate, &o.Deadline,
		&o.EstimatedValue, &o.EstimatedValueLow, &o.EstimatedValueHigh,
		&locationState, &locationCity, &o.LocationCountry, &o.IsUtah,
		&contactName, &contactEmail, &contactPhone,
		&o.ICPScore, &breakdownRaw, &o.Tier, &o.KeywordsMatched, &o.RawData,
		&o.Status, &decision, &o.AssignedToID, &notes, &o.AIBrief,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if sourceURL != nil {
		o.SourceURL = *sourceURL
	}
	if description != nil {
		o.Description = *description
	}
	if issuingOrg != nil {
		o.IssuingOrg = *issuingOrg
	}
	if category != nil {
		o.Category = *category
	}
	if locationState != nil {
		o.LocationState = *locationState
	}
	if locationCity != nil {
		o.LocationCity = *locationCity
	}
	if contactName != nil {
		o.ContactName = *contactName
	}
	if contactEmail != nil {
		o.ContactEmail = *contactEmail
	}
	if contactPhone != nil {
		o.ContactPhone = *contactPhone
	}
	if decision != nil {
		o.Decision = *decision
	}
	if notes != nil {
		o.Notes = *notes
	}
	if len(breakdownRaw) > 0 {
		_ = json.Unmarshal(breakdownRaw, &o.ScoreBreakdown)
	}
	if o.KeywordsMatched == nil {
		o.KeywordsMatched = []string{}
	}

	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Tier != "" {
		where += fmt.Sprintf(" AND o.tier = $%d", argIdx)
		args = append(args, strings.ToUpper(params.Tier))
		argIdx++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND o.status = $%d", argIdx)
		args = append(args, strings.ToUpper(params.Status))
		argIdx++
	}
	if params.Source != "" {
		where += fmt.Sprintf(" AND o.source = $%d", argIdx)
		args = append(args, params.Source)
		argIdx++
	}
	if params.AssignedToID != "" {
		where += fmt.Sprintf(" AND o.assigned_to_id = $%d", argIdx)
		args = append(args, params.AssignedToID)
		argIdx++
	}
	if params.IsUtah != nil {
		where += fmt.Sprintf(" AND o.is_utah = $%d", argIdx)
		args = append(args, *params.IsUtah)
		argIdx++
	}
	if params.MinScore > 0 {
		where += fmt.Sprintf(" AND o.icp_score >= $%d", argIdx)
		args = append(args, params.MinScore)
		argIdx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (o.title ILIKE '%%' || $%d || '%%' OR o.issuing_org ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Search)
		argIdx++
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM opportunities o " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities o %s", selectCols, where)

	switch params.SortBy {
	case "deadline":
		selectSQL += " ORDER BY o.deadline ASC NULLS LAST"
	case "newest":
		selectSQL += " ORDER BY o.created_at DESC"
	default: // "score"
		selectSQL += " ORDER BY o.icp_score DESC, o.created_at DESC"
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if opps == nil {
		opps = []models.Opportunity{}
	}

	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf("SELECT %s FROM opportunities o WHERE o.id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	o, err := scanOpportunity(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if o.AssignedToID != nil {
		var tm models.TeamMember
		err := s.pool.QueryRow(ctx,
			"SELECT id, name, email, created_at FROM team_members WHERE id = $1",
			*o.AssignedToID,
		).Scan(&tm.ID, &tm.Name, &tm.Email, &tm.CreatedAt)
		if err == nil {
			o.AssignedTo = &tm
		}
	}

	kwRows, err := s.pool.Query(ctx, `
		SELECT k.id, k.term, k.type, k.tier, ok.match_location, ok.matched_text
		FROM opportunity_keywords ok
		JOIN keywords k ON k.id = ok.keyword_id
		WHERE ok.opportunity_id = $1
		ORDER BY k.term
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("keyword matches query failed: %w", err)
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var m models.KeywordMatchRow
		if err := kwRows.Scan(&m.KeywordID, &m.Term, &m.Type, &m.Tier, &m.MatchLocation, &m.MatchedText); err != nil {
			return nil, fmt.Errorf("keyword match scan failed: %w", err)
		}
		o.MatchedKeywords = append(o.MatchedKeywords, m)
	}
	if err := kwRows.Err(); err != nil {
		return nil, fmt.Errorf("keyword matches iteration failed: %w", err)
	}

	return &o, nil
}

// CurationUpdate carries the user-editable fields of an opportunity.
// Nil pointers leave the column untouched; ClearAssignee wins over
// AssignedToID when both are set.
type CurationUpdate struct {
	Status        *models.OpportunityStatus
	Decision      *string
	AssignedToID  *uuid.UUID
	ClearAssignee bool
	Notes         *string
	AIBrief       json.RawMessage
}

func (s *Store) UpdateCuration(ctx context.Context, id string, upd CurationUpdate) (*models.Opportunity, error) {
	set := []string{"updated_at = NOW()"}
	var args []interface{}
	argIdx := 1

	if upd.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *upd.Status)
		argIdx++
	}
	if upd.Decision != nil {
		set = append(set, fmt.Sprintf("decision = NULLIF($%d, '')", argIdx))
		args = append(args, *upd.Decision)
		argIdx++
	}
	if upd.ClearAssignee {
		set = append(set, "assigned_to_id = NULL")
	} else if upd.AssignedToID != nil {
		set = append(set, fmt.Sprintf("assigned_to_id = $%d", argIdx))
		args = append(args, *upd.AssignedToID)
		argIdx++
	}
	if upd.Notes != nil {
		set = append(set, fmt.Sprintf("notes = NULLIF($%d, '')", argIdx))
		args = append(args, *upd.Notes)
		argIdx++
	}
	if upd.AIBrief != nil {
		set = append(set, fmt.Sprintf("ai_brief = $%d", argIdx))
		args = append(args, upd.AIBrief)
		argIdx++
	}

	sql := fmt.Sprintf("UPDATE opportunities SET %s WHERE id = $%d", strings.Join(set, ", "), argIdx)
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("curation update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return s.GetOpportunity(ctx, id)
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total)
	stats["total"] = total

	tierCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT tier, COUNT(*) FROM opportunities GROUP BY tier")
	if err == nil {
		for rows.Next() {
			var tier string
			var count int
			if scanErr := rows.Scan(&tier, &count); scanErr == nil {
				tierCounts[tier] = count
			}
		}
		rows.Close()
	}
	stats["tier_counts"] = tierCounts

	statusCounts := map[string]int{}
	rows, err = s.pool.Query(ctx, "SELECT status, COUNT(*) FROM opportunities GROUP BY status")
	if err == nil {
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				statusCounts[status] = count
			}
		}
		rows.Close()
	}
	stats["status_counts"] = statusCounts

	var newThisWeek int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE created_at >= NOW() - INTERVAL '7 days'").Scan(&newThisWeek)
	stats["new_this_week"] = newThisWeek

	var hotWithDeadline int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE tier = 'HOT' AND deadline IS NOT NULL AND deadline > NOW()").Scan(&hotWithDeadline)
	stats["hot_open"] = hotWithDeadline

	var avgScore *float64
	s.pool.QueryRow(ctx, "SELECT AVG(icp_score) FROM opportunities").Scan(&avgScore)
	if avgScore != nil {
		stats["avg_score"] = *avgScore
	} else {
		stats["avg_score"] = 0
	}

	var pipelineValue *float64
	s.pool.QueryRow(ctx, `
		SELECT SUM(COALESCE(estimated_value, estimated_value_high))
		FROM opportunities
		WHERE status IN ('REVIEWING', 'PURSUING')
	`).Scan(&pipelineValue)
	if pipelineValue != nil {
		stats["pipeline_value"] = *pipelineValue
	} else {
		stats["pipeline_value"] = 0
	}

	var dueSoon int
	s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM opportunities
		WHERE deadline BETWEEN NOW() AND NOW() + INTERVAL '7 days'
		  AND status NOT IN ('PASSED', 'LOST')
	`).Scan(&dueSoon)
	stats["due_soon"] = dueSoon

	var lastSyncAt *time.Time
	var lastSyncStatus *string
	s.pool.QueryRow(ctx, `
		SELECT started_at, status FROM scraper_runs
		ORDER BY started_at DESC LIMIT 1
	`).Scan(&lastSyncAt, &lastSyncStatus)
	if lastSyncAt != nil {
		stats["last_sync_at"] = *lastSyncAt
		stats["last_sync_status"] = *lastSyncStatus
	}

	return stats, nil
}
