package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/infrastructure/repository/memory"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

// BootstrapSeed loads the baseline calendar, rider roster, and sync sources
// into an empty database. A database that already has races is left alone.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, feedBaseURL string) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM races`); err != nil {
		return fmt.Errorf("count races for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	races := NewRaceRepository(db)
	for _, item := range memory.SeedRaces() {
		if _, err := races.Upsert(ctx, item); err != nil {
			return fmt.Errorf("seed race %s: %w", item.ID, err)
		}
	}

	riders := NewRiderRepository(db)
	for _, item := range memory.SeedRiders() {
		if _, err := riders.Upsert(ctx, item); err != nil {
			return fmt.Errorf("seed rider %s: %w", item.ID, err)
		}
	}

	for _, item := range memory.SeedSources(feedBaseURL) {
		query, args, err := qb.InsertModel("sync_sources", sourceToRow(item), "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed sync source %s query: %w", item.ID, err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed sync source %s: %w", item.ID, err)
		}
	}

	return nil
}
