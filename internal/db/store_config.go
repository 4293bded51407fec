package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/socio-analytics/opp-radar/internal/models"
)

const scoringConfigID = "default"

// GetScoringConfig returns the singleton config row, creating it with
// defaults on first access.
func (s *Store) GetScoringConfig(ctx context.Context) (*models.ScoringConfig, error) {
	var cfg models.ScoringConfig
	err := s.pool.QueryRow(ctx, `
		INSERT INTO scoring_config (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, budget_weight, sector_weight, geography_weight, timing_weight, utah_multiplier, updated_at
	`, scoringConfigID).Scan(
		&cfg.ID, &cfg.BudgetWeight, &cfg.SectorWeight, &cfg.GeographyWeight,
		&cfg.TimingWeight, &cfg.UtahMultiplier, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scoring config fetch failed: %w", err)
	}
	return &cfg, nil
}

type ScoringConfigUpdate struct {
	BudgetWeight    *int
	SectorWeight    *int
	GeographyWeight *int
	TimingWeight    *int
	UtahMultiplier  *float64
}

func (s *Store) UpdateScoringConfig(ctx context.Context, upd ScoringConfigUpdate) (*models.ScoringConfig, error) {
	if _, err := s.GetScoringConfig(ctx); err != nil {
		return nil, err
	}

	set := []string{"updated_at = NOW()"}
	var args []interface{}
	argIdx := 1

	if upd.BudgetWeight != nil {
		set = append(set, fmt.Sprintf("budget_weight = $%d", argIdx))
		args = append(args, *upd.BudgetWeight)
		argIdx++
	}
	if upd.SectorWeight != nil {
		set = append(set, fmt.Sprintf("sector_weight = $%d", argIdx))
		args = append(args, *upd.SectorWeight)
		argIdx++
	}
	if upd.GeographyWeight != nil {
		set = append(set, fmt.Sprintf("geography_weight = $%d", argIdx))
		args = append(args, *upd.GeographyWeight)
		argIdx++
	}
	if upd.TimingWeight != nil {
		set = append(set, fmt.Sprintf("timing_weight = $%d", argIdx))
		args = append(args, *upd.TimingWeight)
		argIdx++
	}
	if upd.UtahMultiplier != nil {
		set = append(set, fmt.Sprintf("utah_multiplier = $%d", argIdx))
		args = append(args, *upd.UtahMultiplier)
		argIdx++
	}

	sql := fmt.Sprintf(`
		UPDATE scoring_config SET %s WHERE id = $%d
		RETURNING id, budget_weight, sector_weight, geography_weight, timing_weight, utah_multiplier, updated_at
	`, strings.Join(set, ", "), argIdx)
	args = append(args, scoringConfigID)

	var cfg models.ScoringConfig
	err := s.pool.QueryRow(ctx, sql, args...).Scan(
		&cfg.ID, &cfg.BudgetWeight, &cfg.SectorWeight, &cfg.GeographyWeight,
		&cfg.TimingWeight, &cfg.UtahMultiplier, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scoring config update failed: %w", err)
	}
	return &cfg, nil
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, email, created_at FROM team_members ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("team members query failed: %w", err)
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		var tm models.TeamMember
		if err := rows.Scan(&tm.ID, &tm.Name, &tm.Email, &tm.CreatedAt); err != nil {
			return nil, fmt.Errorf("team member scan failed: %w", err)
		}
		members = append(members, tm)
	}
	return members, rows.Err()
}

func (s *Store) CreateTeamMember(ctx context.Context, name, email string) (*models.TeamMember, error) {
	var tm models.TeamMember
	err := s.pool.QueryRow(ctx, `
		INSERT INTO team_members (name, email) VALUES ($1, $2)
		RETURNING id, name, email, created_at
	`, name, email).Scan(&tm.ID, &tm.Name, &tm.Email, &tm.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("team member email already exists: %w", err)
		}
		return nil, fmt.Errorf("team member insert failed: %w", err)
	}
	return &tm, nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM team_members WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("team member delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
