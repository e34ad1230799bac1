package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/race"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type RaceRepository struct {
	db *sqlx.DB
}

func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

func (r *RaceRepository) GetByID(ctx context.Context, id string) (race.Race, bool, error) {
	query, args, err := qb.Select("*").From("races").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return race.Race{}, false, fmt.Errorf("build get race by id query: %w", err)
	}

	var row raceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return race.Race{}, false, nil
		}
		return race.Race{}, false, fmt.Errorf("get race by id: %w", err)
	}

	return raceFromRow(row), true, nil
}

func (r *RaceRepository) List(ctx context.Context) ([]race.Race, error) {
	query, args, err := qb.Select("*").From("races").
		OrderBy("scheduled_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list races query: %w", err)
	}

	var rows []raceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}

	out := make([]race.Race, 0, len(rows))
	for _, row := range rows {
		out = append(out, raceFromRow(row))
	}
	return out, nil
}

func (r *RaceRepository) ListSimulation(ctx context.Context) ([]race.Race, error) {
	query, args, err := qb.Select("*").From("races").
		Where(qb.Eq("is_simulation", true)).
		OrderBy("scheduled_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list simulation races query: %w", err)
	}

	var rows []raceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list simulation races: %w", err)
	}

	out := make([]race.Race, 0, len(rows))
	for _, row := range rows {
		out = append(out, raceFromRow(row))
	}
	return out, nil
}

func (r *RaceRepository) Upsert(ctx context.Context, item race.Race) (bool, error) {
	query, args, err := qb.InsertModel("races", raceToRow(item), `ON CONFLICT (id)
DO UPDATE SET
    series = EXCLUDED.series,
    round = EXCLUDED.round,
    name = EXCLUDED.name,
    venue = EXCLUDED.venue,
    scheduled_at = EXCLUDED.scheduled_at,
    status = EXCLUDED.status,
    is_simulation = EXCLUDED.is_simulation,
    has_results = EXCLUDED.has_results,
    opened_at = EXCLUDED.opened_at,
    closes_at = EXCLUDED.closes_at,
    results_revealed_at = EXCLUDED.results_revealed_at
RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return false, fmt.Errorf("build upsert race query: %w", err)
	}

	// xmax = 0 holds only for freshly inserted rows.
	var inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert race: %w", err)
	}
	return inserted, nil
}

func (r *RaceRepository) Update(ctx context.Context, item race.Race) error {
	row := raceToRow(item)
	query, args, err := qb.Update("races").
		Set("series", row.Series).
		Set("round", row.Round).
		Set("name", row.Name).
		Set("venue", row.Venue).
		Set("scheduled_at", row.ScheduledAt).
		Set("status", row.Status).
		Set("is_simulation", row.IsSimulation).
		Set("has_results", row.HasResults).
		Set("opened_at", row.OpenedAt).
		Set("closes_at", row.ClosesAt).
		Set("results_revealed_at", row.ResultsRevealedAt).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update race query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update race: %w", err)
	}
	return nil
}

func (r *RaceRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("races").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete race query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete race: %w", err)
	}
	return nil
}
