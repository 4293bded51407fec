package main

import (
	"context"
	"log"

	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/models"
)

type seedKeyword struct {
	term     string
	typ      models.KeywordType
	tier     models.KeywordTier
	category string
}

// Starter keyword set for a Utah-focused social research consultancy.
var seedKeywords = []seedKeyword{
	{"program evaluation", models.KeywordInclude, models.KeywordTierHigh, "evaluation"},
	{"needs assessment", models.KeywordInclude, models.KeywordTierHigh, "evaluation"},
	{"community health", models.KeywordInclude, models.KeywordTierHigh, "health"},
	{"behavioral health", models.KeywordInclude, models.KeywordTierHigh, "health"},
	{"public health", models.KeywordInclude, models.KeywordTierMedium, "health"},
	{"survey", models.KeywordInclude, models.KeywordTierMedium, "research"},
	{"data analysis", models.KeywordInclude, models.KeywordTierMedium, "research"},
	{"workforce development", models.KeywordInclude, models.KeywordTierMedium, "social"},
	{"homelessness", models.KeywordInclude, models.KeywordTierLow, "social"},
	{"construction", models.KeywordExclude, models.KeywordTierMedium, ""},
	{"janitorial", models.KeywordExclude, models.KeywordTierMedium, ""},
	{"paving", models.KeywordExclude, models.KeywordTierLow, ""},
}

var seedTeam = []struct{ name, email string }{
	{"Avery Chen", "avery@example.com"},
	{"Jordan Willis", "jordan@example.com"},
}

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)

	for _, kw := range seedKeywords {
		_, err := store.CreateKeyword(ctx, db.KeywordInput{
			Term:     kw.term,
			Type:     kw.typ,
			Tier:     kw.tier,
			Category: kw.category,
		})
		if err == db.ErrDuplicateTerm {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to seed keyword %q: %v", kw.term, err)
		}
		log.Printf("Seeded keyword: %s (%s)", kw.term, kw.typ)
	}

	for _, m := range seedTeam {
		if _, err := store.CreateTeamMember(ctx, m.name, m.email); err != nil {
			log.Printf("Skipping team member %s: %v", m.email, err)
			continue
		}
		log.Printf("Seeded team member: %s", m.name)
	}

	if _, err := store.GetScoringConfig(ctx); err != nil {
		log.Fatalf("Failed to initialize scoring config: %v", err)
	}
	log.Print("Scoring config initialized")
}
