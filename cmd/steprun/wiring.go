package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hairizuan-noorazman/steprunner/database"
	"github.com/hairizuan-noorazman/steprunner/evidence"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/step"
)

func newLogger(cfg *Config) logger.Logger {
	return logger.NewLogrusLoggerWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}

// openOutcomeStore connects to the configured database. With auto_migrate on it also
// creates the outcome tables; otherwise `steprun migrate up` owns the schema. The returned
// function closes the connection.
func openOutcomeStore(ctx context.Context, cfg *Config, log logger.Logger) (*outcome.SQLStore, func(), error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	store := outcome.NewSQLStore(db, log)
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
	}

	log.Info(ctx, "database connected", map[string]interface{}{
		"driver":   cfg.Database.Driver,
		"database": cfg.Database.Database,
	})
	return store, func() { sqlDB.Close() }, nil
}

// evidenceHook builds the screenshot hook, or nil when capture is off.
func evidenceHook(ctx context.Context, cfg *Config, log logger.Logger) (step.EvidenceHook, evidence.Store, error) {
	mode, err := evidence.ParseMode(cfg.Evidence.Mode)
	if err != nil {
		return nil, nil, err
	}
	if mode == evidence.ModeNone {
		return nil, nil, nil
	}
	store, err := evidence.NewStore(ctx, cfg.Evidence.Store())
	if err != nil {
		return nil, nil, err
	}
	return evidence.NewScreenshotHook(store, mode, log), store, nil
}
