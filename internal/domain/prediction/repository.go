package prediction

import "context"

type Repository interface {
	// Create fails with ErrAlreadyExists when the (user, race) pair is taken.
	Create(ctx context.Context, item Prediction) error
	GetByUserAndRace(ctx context.Context, userID, raceID string) (Prediction, bool, error)
	ListByRace(ctx context.Context, raceID string) ([]Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	DeleteByUserAndRace(ctx context.Context, userID, raceID string) error
}
