package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source identifies an external listing portal. Registry-defined HTML
// portals use their registry id as the source value.
type Source string

const (
	SourceSamGov      Source = "SAM_GOV"
	SourceWorldBank   Source = "WORLD_BANK"
	SourceUtahBonfire Source = "UTAH_BONFIRE"
)

// OpportunityStatus is the user-curated review state.
type OpportunityStatus string

const (
	StatusNew       OpportunityStatus = "NEW"
	StatusReviewing OpportunityStatus = "REVIEWING"
	StatusPursuing  OpportunityStatus = "PURSUING"
	StatusPassed    OpportunityStatus = "PASSED"
	StatusWon       OpportunityStatus = "WON"
	StatusLost      OpportunityStatus = "LOST"
)

// Tier is the coarse fit bucket derived from the final ICP score.
type Tier string

const (
	TierHot  Tier = "HOT"
	TierWarm Tier = "WARM"
	TierCool Tier = "COOL"
	TierCold Tier = "COLD"
)

type KeywordType string

const (
	KeywordInclude KeywordType = "INCLUDE"
	KeywordExclude KeywordType = "EXCLUDE"
)

type KeywordTier string

const (
	KeywordTierHigh   KeywordTier = "HIGH"
	KeywordTierMedium KeywordTier = "MEDIUM"
	KeywordTierLow    KeywordTier = "LOW"
)

type RunStatus string

const (
	RunRunning RunStatus = "RUNNING"
	RunSuccess RunStatus = "SUCCESS"
	RunPartial RunStatus = "PARTIAL"
	RunFailed  RunStatus = "FAILED"
)

// RawOpportunity is the normalized shape every source adapter must produce.
// It maps to the Opportunity create fields minus everything computed by the
// scoring engine and keyword matcher.
type RawOpportunity struct {
	Source             Source
	SourceID           string
	SourceURL          string
	Title              string
	Description        string
	IssuingOrg         string
	Category           string
	PostedDate         *time.Time
	Deadline           *time.Time
	EstimatedValue     *float64
	EstimatedValueLow  *float64
	EstimatedValueHigh *float64
	LocationState      string
	LocationCity       string
	LocationCountry    string
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	RawData            json.RawMessage
}

// ScoreBreakdown holds the four independent sub-scores, each in [0,100].
type ScoreBreakdown struct {
	Budget    int `json:"budget"`
	Sector    int `json:"sector"`
	Geography int `json:"geography"`
	Timing    int `json:"timing"`
}

// ScoringConfig is the singleton weight configuration (id "default").
// The per-dimension weights are stored and user-adjustable but the score
// aggregation only consumes UtahMultiplier; see internal/scoring.
type ScoringConfig struct {
	ID              string    `json:"id"`
	BudgetWeight    int       `json:"budgetWeight"`
	SectorWeight    int       `json:"sectorWeight"`
	GeographyWeight int       `json:"geographyWeight"`
	TimingWeight    int       `json:"timingWeight"`
	UtahMultiplier  float64   `json:"utahMultiplier"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Keyword is a curated match rule. MatchCount and LastMatchAt are only
// ever written by the reconciliation pipeline.
type Keyword struct {
	ID          uuid.UUID   `json:"id"`
	Term        string      `json:"term"`
	Type        KeywordType `json:"type"`
	Tier        KeywordTier `json:"tier"`
	Category    string      `json:"category,omitempty"`
	IsActive    bool        `json:"isActive"`
	MatchCount  int         `json:"matchCount"`
	LastMatchAt *time.Time  `json:"lastMatchAt"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Opportunity is the reconciled, persisted entity. The curated fields
// (Status, Decision, AssignedToID, Notes, AIBrief) are never touched by
// the pipeline after creation.
type Opportunity struct {
	ID                 uuid.UUID         `json:"id"`
	Source             Source            `json:"source"`
	SourceID           string            `json:"sourceId"`
	SourceURL          string            `json:"sourceUrl,omitempty"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	IssuingOrg         string            `json:"issuingOrg,omitempty"`
	Category           string            `json:"category,omitempty"`
	PostedDate         *time.Time        `json:"postedDate"`
	Deadline           *time.Time        `json:"deadline"`
	EstimatedValue     *float64          `json:"estimatedValue"`
	EstimatedValueLow  *float64          `json:"estimatedValueLow"`
	EstimatedValueHigh *float64          `json:"estimatedValueHigh"`
	LocationState      string            `json:"locationState,omitempty"`
	LocationCity       string            `json:"locationCity,omitempty"`
	LocationCountry    string            `json:"locationCountry"`
	IsUtah             bool              `json:"isUtah"`
	ContactName        string            `json:"contactName,omitempty"`
	ContactEmail       string            `json:"contactEmail,omitempty"`
	ContactPhone       string            `json:"contactPhone,omitempty"`
	ICPScore           float64           `json:"icpScore"`
	ScoreBreakdown     ScoreBreakdown    `json:"scoreBreakdown"`
	Tier               Tier              `json:"tier"`
	KeywordsMatched    []string          `json:"keywordsMatched"`
	RawData            json.RawMessage   `json:"rawData,omitempty"`
	Status             OpportunityStatus `json:"status"`
	Decision           string            `json:"decision,omitempty"`
	AssignedToID       *uuid.UUID        `json:"assignedToId"`
	AssignedTo         *TeamMember       `json:"assignedTo,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	AIBrief            json.RawMessage   `json:"aiBrief,omitempty"`
	MatchedKeywords    []KeywordMatchRow `json:"matchedKeywords,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// KeywordMatchRow is one opportunity_keywords association row as served
// to the dashboard.
type KeywordMatchRow struct {
	KeywordID     uuid.UUID   `json:"keywordId"`
	Term          string      `json:"term"`
	Type          KeywordType `json:"type"`
	Tier          KeywordTier `json:"tier"`
	MatchLocation string      `json:"matchLocation"`
	MatchedText   string      `json:"matchedText"`
}

// ScraperRun is one append-only ledger row for a pipeline execution.
type ScraperRun struct {
	ID                 uuid.UUID  `json:"id"`
	Source             Source     `json:"source"`
	StartedAt          time.Time  `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt"`
	Status             RunStatus  `json:"status"`
	OpportunitiesFound int        `json:"opportunitiesFound"`
	OpportunitiesNew   int        `json:"opportunitiesNew"`
	ErrorMessage       string     `json:"errorMessage,omitempty"`
}

// TeamMember is a reference entity opportunities may be assigned to.
type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
