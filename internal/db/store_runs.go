package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/socio-analytics/opp-radar/internal/models"
)

// CreateRun opens a RUNNING ledger row before any scraping work starts,
// so a crashed pipeline still leaves a visible trace.
func (s *Store) CreateRun(ctx context.Context, source models.Source, found int) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		"INSERT INTO scraper_runs (source, status, opportunities_found) VALUES ($1, 'RUNNING', $2) RETURNING id",
		source, found,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun finalizes a ledger row. errorMessage is stored as NULL when
// empty.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, status models.RunStatus, found, created int, errorMessage string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scraper_runs
		SET status = $2, opportunities_found = $3, opportunities_new = $4,
			error_message = NULLIF($5, ''), completed_at = NOW()
		WHERE id = $1
	`, id, status, found, created, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

const runCols = `id, source, started_at, completed_at, status, opportunities_found, opportunities_new, error_message`

func scanRun(scan func(dest ...interface{}) error) (models.ScraperRun, error) {
	var r models.ScraperRun
	var errorMessage *string
	err := scan(&r.ID, &r.Source, &r.StartedAt, &r.CompletedAt, &r.Status,
		&r.OpportunitiesFound, &r.OpportunitiesNew, &errorMessage)
	if err != nil {
		return r, err
	}
	if errorMessage != nil {
		r.ErrorMessage = *errorMessage
	}
	return r, nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*models.ScraperRun, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM scraper_runs WHERE id = $1", runCols), id)
	r, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.ScraperRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM scraper_runs ORDER BY started_at DESC LIMIT $1", runCols), limit)
	if err != nil {
		return nil, fmt.Errorf("runs query failed: %w", err)
	}
	defer rows.Close()

	runs := []models.ScraperRun{}
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("run scan failed: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRunsBySource returns the most recent ledger row per source, for
// the scraper status panel.
func (s *Store) LatestRunsBySource(ctx context.Context) ([]models.ScraperRun, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT DISTINCT ON (source) %s
		FROM scraper_runs
		ORDER BY source, started_at DESC
	`, runCols))
	if err != nil {
		return nil, fmt.Errorf("latest runs query failed: %w", err)
	}
	defer rows.Close()

	runs := []models.ScraperRun{}
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("run scan failed: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
