package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/result"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) GetByRace(ctx context.Context, raceID string) (result.RaceResult, bool, error) {
	query, args, err := qb.Select("*").From("race_results").
		Where(qb.Eq("race_id", raceID)).
		ToSQL()
	if err != nil {
		return result.RaceResult{}, false, fmt.Errorf("build get race result query: %w", err)
	}

	var row raceResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return result.RaceResult{}, false, nil
		}
		return result.RaceResult{}, false, fmt.Errorf("get race result: %w", err)
	}

	entriesQuery, entriesArgs, err := qb.Select("*").From("race_result_entries").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return result.RaceResult{}, false, fmt.Errorf("build get result entries query: %w", err)
	}

	var entryRows []resultEntryTableModel
	if err := r.db.SelectContext(ctx, &entryRows, entriesQuery, entriesArgs...); err != nil {
		return result.RaceResult{}, false, fmt.Errorf("get result entries: %w", err)
	}

	entries := make([]result.Entry, 0, len(entryRows))
	for _, entryRow := range entryRows {
		entries = append(entries, entryFromRow(entryRow))
	}

	return result.RaceResult{
		RaceID:     row.RaceID,
		Entries:    entries,
		RevealedAt: row.RevealedAt,
	}, true, nil
}

func (r *ResultRepository) Upsert(ctx context.Context, item result.RaceResult) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert race result tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("race_results", raceResultTableModel{
		RaceID:     item.RaceID,
		RevealedAt: item.RevealedAt,
	}, `ON CONFLICT (race_id)
DO UPDATE SET revealed_at = EXCLUDED.revealed_at
RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return false, fmt.Errorf("build upsert race result query: %w", err)
	}

	var inserted bool
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert race result: %w", err)
	}

	clearQuery, clearArgs, err := qb.DeleteFrom("race_result_entries").
		Where(qb.Eq("race_id", item.RaceID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build clear result entries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return false, fmt.Errorf("clear result entries: %w", err)
	}

	for _, entry := range item.Entries {
		entryQuery, entryArgs, err := qb.InsertModel("race_result_entries", entryToRow(item.RaceID, entry), "")
		if err != nil {
			return false, fmt.Errorf("build insert result entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, entryQuery, entryArgs...); err != nil {
			return false, fmt.Errorf("insert result entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert race result tx: %w", err)
	}
	return inserted, nil
}

func (r *ResultRepository) DeleteByRace(ctx context.Context, raceID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete race result tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	entriesQuery, entriesArgs, err := qb.DeleteFrom("race_result_entries").
		Where(qb.Eq("race_id", raceID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete result entries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, entriesQuery, entriesArgs...); err != nil {
		return fmt.Errorf("delete result entries: %w", err)
	}

	query, args, err := qb.DeleteFrom("race_results").
		Where(qb.Eq("race_id", raceID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete race result query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete race result: %w", err)
	}

	return tx.Commit()
}
