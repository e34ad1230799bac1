package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/rider"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type RiderRepository struct {
	db *sqlx.DB
}

func NewRiderRepository(db *sqlx.DB) *RiderRepository {
	return &RiderRepository{db: db}
}

func (r *RiderRepository) GetByID(ctx context.Context, id string) (rider.Rider, bool, error) {
	query, args, err := qb.Select("*").From("riders").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return rider.Rider{}, false, fmt.Errorf("build get rider by id query: %w", err)
	}

	var row riderTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rider.Rider{}, false, nil
		}
		return rider.Rider{}, false, fmt.Errorf("get rider by id: %w", err)
	}

	return riderFromRow(row), true, nil
}

func (r *RiderRepository) List(ctx context.Context) ([]rider.Rider, error) {
	query, args, err := qb.Select("*").From("riders").
		OrderBy("number", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list riders query: %w", err)
	}

	var rows []riderTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}

	out := make([]rider.Rider, 0, len(rows))
	for _, row := range rows {
		out = append(out, riderFromRow(row))
	}
	return out, nil
}

func (r *RiderRepository) ListBySeries(ctx context.Context, series string) ([]rider.Rider, error) {
	query, args, err := qb.Select("*").From("riders").
		Where(qb.Eq("series", series)).
		OrderBy("number", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list riders by series query: %w", err)
	}

	var rows []riderTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list riders by series: %w", err)
	}

	out := make([]rider.Rider, 0, len(rows))
	for _, row := range rows {
		out = append(out, riderFromRow(row))
	}
	return out, nil
}

func (r *RiderRepository) Upsert(ctx context.Context, item rider.Rider) (bool, error) {
	query, args, err := qb.InsertModel("riders", riderToRow(item), `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    number = EXCLUDED.number,
    team = EXCLUDED.team,
    series = EXCLUDED.series,
    status = EXCLUDED.status,
    injury_note = EXCLUDED.injury_note
RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return false, fmt.Errorf("build upsert rider query: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert rider: %w", err)
	}
	return inserted, nil
}
