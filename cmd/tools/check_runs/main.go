package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/socio-analytics/opp-radar/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
		SELECT source, status, opportunities_found, opportunities_new, started_at, completed_at
		FROM scraper_runs ORDER BY started_at DESC LIMIT 10
	`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Status", "Found", "New", "Duration", "Started At"})

	for rows.Next() {
		var source, status string
		var found, created int
		var startedAt time.Time
		var completedAt *time.Time

		if err := rows.Scan(&source, &status, &found, &created, &startedAt, &completedAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		duration := "Running..."
		if completedAt != nil {
			duration = completedAt.Sub(startedAt).Round(time.Second).String()
		}

		t.AppendRow(table.Row{source, status, found, created, duration, startedAt.Format("15:04:05")})
	}
	t.Render()
}
