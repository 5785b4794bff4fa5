package database

import (
	"context"
	"fmt"

	"eventify/internal/database/migrations"
	eventsdb "eventify/internal/events/db"
	"eventify/internal/logger"

	"github.com/uptrace/bun"
)

// EnsureSchema brings the events schema up to date: embedded migrations on
// postgres, bun's CREATE TABLE IF NOT EXISTS on sqlite.
func EnsureSchema(ctx context.Context, db *bun.DB, log *logger.Logger) error {
	if !IsPostgres(db) {
		if err := eventsdb.CreateSchema(ctx, db); err != nil {
			return err
		}
		log.LogDatabase("SCHEMA", "events", "sqlite schema ensured")
		return nil
	}

	// The runner is not closed: closing it would close db as well.
	runner := migrations.NewRunner(db, log)
	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.LogDatabase("MIGRATE", "events", "migrations applied")
	return nil
}
