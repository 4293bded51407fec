package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/models"
)

type fakeStore struct {
	configErr   error
	keywordsErr error
	createErr   error
	reconcileErr func(p db.ReconcileParams) error
	existing    map[string]bool

	keywords []models.Keyword

	runCreated   bool
	runSource    models.Source
	runFound     int
	finalStatus  models.RunStatus
	finalFound   int
	finalCreated int
	finalErrMsg  string
	reconciled   []db.ReconcileParams
}

func (f *fakeStore) GetScoringConfig(ctx context.Context) (*models.ScoringConfig, error) {
	if f.configErr != nil {
		return nil, f.configErr
	}
	return &models.ScoringConfig{
		ID: "default", BudgetWeight: 25, SectorWeight: 25,
		GeographyWeight: 25, TimingWeight: 25, UtahMultiplier: 1.5,
	}, nil
}

func (f *fakeStore) ListActiveKeywords(ctx context.Context) ([]models.Keyword, error) {
	if f.keywordsErr != nil {
		return nil, f.keywordsErr
	}
	return f.keywords, nil
}

func (f *fakeStore) CreateRun(ctx context.Context, source models.Source, found int) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.runCreated = true
	f.runSource = source
	f.runFound = found
	return uuid.New(), nil
}

func (f *fakeStore) CompleteRun(ctx context.Context, id uuid.UUID, status models.RunStatus, found, created int, errorMessage string) error {
	f.finalStatus = status
	f.finalFound = found
	f.finalCreated = created
	f.finalErrMsg = errorMessage
	return nil
}

func (f *fakeStore) ReconcileOpportunity(ctx context.Context, p db.ReconcileParams) (bool, error) {
	if f.reconcileErr != nil {
		if err := f.reconcileErr(p); err != nil {
			return false, err
		}
	}
	f.reconciled = append(f.reconciled, p)
	return !f.existing[p.Raw.SourceID], nil
}

func newTestPipeline(store Store) *Pipeline {
	return New(store, zap.NewNop())
}

func rawOpp(sourceID, title string) models.RawOpportunity {
	return models.RawOpportunity{
		Source:          models.SourceSamGov,
		SourceID:        sourceID,
		Title:           title,
		LocationCountry: "USA",
	}
}

func TestRun_Success(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{"old-1": true}}
	p := newTestPipeline(store)

	raws := []models.RawOpportunity{
		rawOpp("new-1", "Community Health Assessment"),
		rawOpp("old-1", "Program Evaluation Services"),
	}

	res, err := p.Run(context.Background(), models.SourceSamGov, raws, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !store.runCreated || store.runSource != models.SourceSamGov || store.runFound != 2 {
		t.Fatalf("run ledger row not opened correctly: %+v", store)
	}
	if res.Status != models.RunSuccess {
		t.Fatalf("expected SUCCESS, got %s", res.Status)
	}
	if res.OpportunitiesFound != 2 || res.OpportunitiesNew != 1 {
		t.Fatalf("expected found=2 new=1, got found=%d new=%d", res.OpportunitiesFound, res.OpportunitiesNew)
	}
	if store.finalStatus != models.RunSuccess || store.finalCreated != 1 {
		t.Fatalf("ledger not finalized correctly: %+v", store)
	}
	if len(store.reconciled) != 2 {
		t.Fatalf("expected both items reconciled, got %d", len(store.reconciled))
	}
	if store.reconciled[0].Score <= 0 || store.reconciled[0].Tier == "" {
		t.Fatalf("reconcile params missing score data: %+v", store.reconciled[0])
	}
}

func TestRun_ItemFailureIsPartial(t *testing.T) {
	store := &fakeStore{
		reconcileErr: func(p db.ReconcileParams) error {
			if p.Raw.SourceID == "item-5" {
				return errors.New("boom")
			}
			return nil
		},
	}
	p := newTestPipeline(store)

	var raws []models.RawOpportunity
	for i := 1; i <= 10; i++ {
		raws = append(raws, rawOpp(fmt.Sprintf("item-%d", i), "Workforce Development Study"))
	}

	res, err := p.Run(context.Background(), models.SourceSamGov, raws, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != models.RunPartial {
		t.Fatalf("expected PARTIAL, got %s", res.Status)
	}
	if len(store.reconciled) != 9 {
		t.Fatalf("expected 9 items to survive, got %d", len(store.reconciled))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "failed to process item-5: boom") {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !strings.Contains(store.finalErrMsg, "item-5") {
		t.Fatalf("ledger error message missing failed item: %q", store.finalErrMsg)
	}
}

func TestRun_FetchErrorsAloneStaySuccess(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store)

	fetchErrors := []string{"SAM.gov returned 12000 total results but only first 1000 were fetched"}
	res, err := p.Run(context.Background(), models.SourceSamGov,
		[]models.RawOpportunity{rawOpp("a", "Medicaid study")}, fetchErrors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != models.RunSuccess {
		t.Fatalf("fetch errors alone must not demote the run, got %s", res.Status)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("fetch errors must still be reported: %v", res.Errors)
	}
	if !strings.Contains(store.finalErrMsg, "12000") {
		t.Fatalf("fetch errors must reach the ledger: %q", store.finalErrMsg)
	}
}

func TestRun_SetupFailureMarksFailed(t *testing.T) {
	store := &fakeStore{configErr: errors.New("db down")}
	p := newTestPipeline(store)

	res, err := p.Run(context.Background(), models.SourceWorldBank,
		[]models.RawOpportunity{rawOpp("a", "x")}, nil)
	if err != nil {
		t.Fatalf("setup failure is a run outcome, not a caller error: %v", err)
	}

	if res.Status != models.RunFailed {
		t.Fatalf("expected FAILED, got %s", res.Status)
	}
	if store.finalStatus != models.RunFailed {
		t.Fatalf("ledger must record FAILED, got %s", store.finalStatus)
	}
	if len(store.reconciled) != 0 {
		t.Fatal("no items may be processed after setup failure")
	}
}

func TestRun_CreateRunFailureReturnsError(t *testing.T) {
	store := &fakeStore{createErr: errors.New("no connection")}
	p := newTestPipeline(store)

	_, err := p.Run(context.Background(), models.SourceUtahBonfire, nil, nil)
	if err == nil {
		t.Fatal("expected error when the ledger row cannot be opened")
	}
}

func TestRun_SanitizesDescriptions(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store)

	raw := rawOpp("html-1", "RFP 2026-14")
	raw.Description = `<p onclick="evil()">Community <b>health</b> evaluation</p><script>x()</script>`

	if _, err := p.Run(context.Background(), models.SourceSamGov, []models.RawOpportunity{raw}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.reconciled[0].Raw.Description
	if strings.Contains(got, "<") || strings.Contains(got, "script") {
		t.Fatalf("description not sanitized: %q", got)
	}
	if !strings.Contains(got, "health evaluation") {
		t.Fatalf("sanitizer must keep the text content: %q", got)
	}
}

func TestRun_ExcludeMatchDoesNotSuppress(t *testing.T) {
	store := &fakeStore{
		keywords: []models.Keyword{
			{ID: uuid.New(), Term: "construction", Type: models.KeywordExclude, Tier: models.KeywordTierMedium, IsActive: true},
		},
	}
	p := newTestPipeline(store)

	res, err := p.Run(context.Background(), models.SourceSamGov,
		[]models.RawOpportunity{rawOpp("x", "Road construction project")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.reconciled) != 1 {
		t.Fatal("exclude matches are recorded, never used to drop opportunities")
	}
	if res.OpportunitiesFound != 1 {
		t.Fatalf("expected found=1, got %d", res.OpportunitiesFound)
	}
	// The exclude hit is stored as an association but not as a display tag.
	rec := store.reconciled[0]
	if len(rec.Matches) != 1 {
		t.Fatalf("expected the exclude association to persist, got %d", len(rec.Matches))
	}
	if len(rec.Terms) != 0 {
		t.Fatalf("exclude terms must not appear in the tag list: %v", rec.Terms)
	}
}
