package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/api"
	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/logger"
	"github.com/socio-analytics/opp-radar/internal/scrape"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	zlog, err := logger.New(os.Getenv("LOG_FORMAT") == "json", os.Getenv("LOG_LEVEL") == "debug")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}

	reg, err := scrape.LoadRegistry("internal/scrape/config/sources.yaml")
	if err != nil {
		zlog.Fatal("Failed to load source registry", zap.Error(err))
	}

	srv := api.NewServer(pool, reg, zlog)
	zlog.Info("Server starting", zap.String("port", port))
	if err := srv.Start(port); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
}
