// Package pipeline reconciles scraped opportunities into the database:
// score, match keywords, upsert, and log the run in the ledger.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/keywords"
	"github.com/socio-analytics/opp-radar/internal/models"
	"github.com/socio-analytics/opp-radar/internal/scoring"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetScoringConfig(ctx context.Context) (*models.ScoringConfig, error)
	ListActiveKeywords(ctx context.Context) ([]models.Keyword, error)
	CreateRun(ctx context.Context, source models.Source, found int) (uuid.UUID, error)
	CompleteRun(ctx context.Context, id uuid.UUID, status models.RunStatus, found, created int, errorMessage string) error
	ReconcileOpportunity(ctx context.Context, p db.ReconcileParams) (bool, error)
}

// RunResult summarizes one pipeline execution.
type RunResult struct {
	Source             models.Source    `json:"source"`
	Status             models.RunStatus `json:"status"`
	OpportunitiesFound int              `json:"opportunitiesFound"`
	OpportunitiesNew   int              `json:"opportunitiesNew"`
	Errors             []string         `json:"errors"`
	DurationMs         int64            `json:"durationMs"`
}

type Pipeline struct {
	store     Store
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func New(store Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Run reconciles one source's scraped batch. A run ledger row is opened
// before any work happens; every outcome after that point is recorded on
// the ledger rather than returned as an error. The only error Run itself
// returns is a failure to open the ledger row.
func (p *Pipeline) Run(ctx context.Context, source models.Source, raws []models.RawOpportunity, fetchErrors []string) (RunResult, error) {
	startedAt := p.now()
	errs := append([]string{}, fetchErrors...)

	runID, err := p.store.CreateRun(ctx, source, len(raws))
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to create run: %w", err)
	}

	cfg, err := p.store.GetScoringConfig(ctx)
	if err != nil {
		return p.fail(ctx, runID, source, len(raws), startedAt, fmt.Sprintf("failed to load scoring config: %v", err))
	}
	weights := scoring.Weights{
		Budget:         cfg.BudgetWeight,
		Sector:         cfg.SectorWeight,
		Geography:      cfg.GeographyWeight,
		Timing:         cfg.TimingWeight,
		UtahMultiplier: cfg.UtahMultiplier,
	}

	kws, err := p.store.ListActiveKeywords(ctx)
	if err != nil {
		return p.fail(ctx, runID, source, len(raws), startedAt, fmt.Sprintf("failed to load keywords: %v", err))
	}

	created := 0
	for _, raw := range raws {
		raw.Description = strings.TrimSpace(strings.ToValidUTF8(p.sanitizer.Sanitize(raw.Description), ""))

		score := scoring.Calculate(scoring.FromRaw(raw), weights, p.now())
		matchResult := keywords.MatchKeywords(raw.Title, raw.Description, kws)

		matches := make([]models.KeywordMatchRow, 0, len(matchResult.Matched))
		for _, m := range matchResult.Matched {
			matches = append(matches, models.KeywordMatchRow{
				KeywordID:     m.KeywordID,
				Term:          m.Term,
				Type:          m.Type,
				Tier:          m.Tier,
				MatchLocation: m.MatchLocation,
				MatchedText:   m.Term,
			})
		}

		isNew, err := p.store.ReconcileOpportunity(ctx, db.ReconcileParams{
			Raw:       raw,
			Score:     score.Score,
			Breakdown: score.Breakdown,
			Tier:      score.Tier,
			IsUtah:    score.IsUtah,
			Matches:   matches,
			Terms:     matchResult.IncludeTerms,
		})
		if err != nil {
			msg := fmt.Sprintf("failed to process %s: %v", raw.SourceID, err)
			errs = append(errs, msg)
			p.logger.Error("reconcile failed",
				zap.String("source", string(source)),
				zap.String("source_id", raw.SourceID),
				zap.Error(err))
			continue
		}
		if isNew {
			created++
		}
	}

	status := models.RunSuccess
	if len(errs) > len(fetchErrors) {
		status = models.RunPartial
	}

	if err := p.store.CompleteRun(ctx, runID, status, len(raws), created, joinErrors(errs)); err != nil {
		p.logger.Error("failed to finalize run", zap.String("source", string(source)), zap.Error(err))
	}

	duration := p.now().Sub(startedAt)
	p.logger.Info("pipeline run finished",
		zap.String("source", string(source)),
		zap.String("status", string(status)),
		zap.Int("found", len(raws)),
		zap.Int("new", created),
		zap.Int("errors", len(errs)),
		zap.Duration("duration", duration))

	return RunResult{
		Source:             source,
		Status:             status,
		OpportunitiesFound: len(raws),
		OpportunitiesNew:   created,
		Errors:             errs,
		DurationMs:         duration.Milliseconds(),
	}, nil
}

// fail marks the run FAILED on the ledger. Setup failures are an outcome
// of the run, not an error to the caller.
func (p *Pipeline) fail(ctx context.Context, runID uuid.UUID, source models.Source, found int, startedAt time.Time, msg string) (RunResult, error) {
	p.logger.Error("pipeline run failed", zap.String("source", string(source)), zap.String("reason", msg))

	if err := p.store.CompleteRun(ctx, runID, models.RunFailed, found, 0, msg); err != nil {
		p.logger.Error("failed to finalize run", zap.String("source", string(source)), zap.Error(err))
	}

	return RunResult{
		Source:             source,
		Status:             models.RunFailed,
		OpportunitiesFound: found,
		Errors:             []string{msg},
		DurationMs:         p.now().Sub(startedAt).Milliseconds(),
	}, nil
}

// joinErrors collapses the error list into one ledger column, capped so a
// pathological run cannot bloat the row.
func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	joined := strings.Join(errs, "\n")
	if len(joined) > 5000 {
		joined = joined[:5000]
	}
	return joined
}
