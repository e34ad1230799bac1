package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func predictionKey(userID, raceID string) string {
	return userID + "|" + raceID
}

func (r *PredictionRepository) Create(_ context.Context, item prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(item.UserID, item.RaceID)
	if _, exists := r.items[key]; exists {
		return prediction.ErrAlreadyExists
	}
	r.items[key] = item
	return nil
}

func (r *PredictionRepository) GetByUserAndRace(_ context.Context, userID, raceID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[predictionKey(userID, raceID)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	return item, true, nil
}

func (r *PredictionRepository) ListByRace(_ context.Context, raceID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.RaceID == raceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].RaceID < out[j].RaceID
	})
	return out, nil
}

func (r *PredictionRepository) DeleteByUserAndRace(_ context.Context, userID, raceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, predictionKey(userID, raceID))
	return nil
}
