package result

import "context"

type Repository interface {
	GetByRace(ctx context.Context, raceID string) (RaceResult, bool, error)
	Upsert(ctx context.Context, item RaceResult) (created bool, err error)
	// DeleteByRace removes a result record; callers cascade score invalidation.
	DeleteByRace(ctx context.Context, raceID string) error
}
