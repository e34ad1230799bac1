package scoring

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Score) error
	GetByPrediction(ctx context.Context, predictionID string) (Score, bool, error)
	ListByRace(ctx context.Context, raceID string) ([]Score, error)
	ListByUser(ctx context.Context, userID string) ([]Score, error)
	// DeleteByRace cascade-invalidates scores when a result record is removed.
	DeleteByRace(ctx context.Context, raceID string) error
}
