package prediction

import (
	"errors"
	"time"
)

// PickCount is the fixed length of a ranked prediction.
const PickCount = 5

const (
	ConfidenceMin     = 1
	ConfidenceMax     = 5
	ConfidenceNeutral = 3
)

// ErrAlreadyExists is returned by repositories when a (user, race) prediction
// already exists. A second submission never overwrites the first.
var ErrAlreadyExists = errors.New("prediction already exists for user and race")

// Prediction is a user's ranked top-5 pick for one race. Read-only after the
// race's lock deadline.
type Prediction struct {
	ID          string
	UserID      string
	RaceID      string
	Picks       []string
	Confidence  int
	SubmittedAt time.Time
}

// HasDuplicatePicks reports whether the same rider appears twice.
func HasDuplicatePicks(picks []string) bool {
	seen := make(map[string]struct{}, len(picks))
	for _, id := range picks {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
