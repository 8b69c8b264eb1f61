// Command seedslots loads the published schedule into the slot inventory once.
//
//	seedslots [-config path] [-source horarios.json]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/db"
	"slot-booking-backend/internal/logging"
	"slot-booking-backend/internal/schedule"
	"slot-booking-backend/internal/store"
)

func main() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config/config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the YAML configuration")
	source := flag.String("source", "", "schedule file or URL; overrides schedule.source")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", *configPath, err)
	}
	if *source != "" {
		cfg.Schedule.Source = *source
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc := schedule.NewService(schedule.NewLoader(cfg.Schedule, logger), store.NewGormStore(gormDB), 0, false, logger)
	res, err := svc.SyncOnce(ctx)
	if err != nil {
		logger.Fatal("seeding failed", zap.String("source", cfg.Schedule.Source), zap.Error(err))
	}
	logger.Info("seeding finished",
		zap.String("source", cfg.Schedule.Source),
		zap.Int("dates", res.Dates),
		zap.Int("slots", res.Slots),
		zap.Int64("rows_affected", res.Affected))
}
