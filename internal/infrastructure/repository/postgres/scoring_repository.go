package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/scoring"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) Upsert(ctx context.Context, item scoring.Score) error {
	query, args, err := qb.InsertModel("scores", scoreToRow(item), `ON CONFLICT (prediction_id)
DO UPDATE SET
    race_id = EXCLUDED.race_id,
    user_id = EXCLUDED.user_id,
    exact_matches = EXCLUDED.exact_matches,
    top5_matches = EXCLUDED.top5_matches,
    points = EXCLUDED.points,
    bonus_points = EXCLUDED.bonus_points,
    perfect = EXCLUDED.perfect,
    computed_at = EXCLUDED.computed_at`)
	if err != nil {
		return fmt.Errorf("build upsert score query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (r *ScoringRepository) GetByPrediction(ctx context.Context, predictionID string) (scoring.Score, bool, error) {
	query, args, err := qb.Select("*").From("scores").
		Where(qb.Eq("prediction_id", predictionID)).
		ToSQL()
	if err != nil {
		return scoring.Score{}, false, fmt.Errorf("build get score by prediction query: %w", err)
	}

	var row scoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Score{}, false, nil
		}
		return scoring.Score{}, false, fmt.Errorf("get score by prediction: %w", err)
	}

	return scoreFromRow(row), true, nil
}

func (r *ScoringRepository) ListByRace(ctx context.Context, raceID string) ([]scoring.Score, error) {
	query, args, err := qb.Select("*").From("scores").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scores by race query: %w", err)
	}

	var rows []scoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scores by race: %w", err)
	}

	out := make([]scoring.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromRow(row))
	}
	return out, nil
}

func (r *ScoringRepository) ListByUser(ctx context.Context, userID string) ([]scoring.Score, error) {
	query, args, err := qb.Select("*").From("scores").
		Where(qb.Eq("user_id", userID)).
		OrderBy("race_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scores by user query: %w", err)
	}

	var rows []scoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scores by user: %w", err)
	}

	out := make([]scoring.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromRow(row))
	}
	return out, nil
}

func (r *ScoringRepository) DeleteByRace(ctx context.Context, raceID string) error {
	query, args, err := qb.DeleteFrom("scores").
		Where(qb.Eq("race_id", raceID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete scores by race query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete scores by race: %w", err)
	}
	return nil
}
