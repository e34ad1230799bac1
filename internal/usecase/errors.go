package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrDuplicatePrediction rejects a second submission for the same race;
	// the original prediction is never overwritten.
	ErrDuplicatePrediction = errors.New("prediction already submitted for this race")
	// ErrPredictionsLocked rejects submissions past the race's lock deadline
	// or for races not currently accepting picks.
	ErrPredictionsLocked = errors.New("predictions are locked for this race")

	ErrSourceInactive = errors.New("data source is inactive")
	ErrRateLimited    = errors.New("rate limit exceeded for data source")

	ErrNoRoundOpen     = errors.New("no round is currently open")
	ErrNoMoreRounds    = errors.New("no more rounds to open")
	ErrNoPreviousRound = errors.New("no previous round to reopen")
)
