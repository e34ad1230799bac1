package scoring

import "time"

// Rules holds the point constants. The partial-credit and bonus values differ
// between deployments, so they are configuration, not literals.
type Rules struct {
	ExactPoints  int
	Top5Points   int
	PerfectBonus int
}

func DefaultRules() Rules {
	return Rules{
		ExactPoints:  10,
		Top5Points:   3,
		PerfectBonus: 25,
	}
}

// Breakdown is the outcome of scoring one prediction against one result.
type Breakdown struct {
	ExactMatches int
	Top5Matches  int
	Points       int
	BonusPoints  int
	Perfect      bool
}

// Score is the persisted form of a Breakdown, derived from exactly one
// (prediction, result) pair. Never hand-edited; recomputed on either change.
type Score struct {
	PredictionID string
	RaceID       string
	UserID       string
	ExactMatches int
	Top5Matches  int
	Points       int
	BonusPoints  int
	Perfect      bool
	ComputedAt   time.Time
}
