package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/scoring"
)

type ScoringRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.Score
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{items: make(map[string]scoring.Score)}
}

func (r *ScoringRepository) Upsert(_ context.Context, item scoring.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.PredictionID] = item
	return nil
}

func (r *ScoringRepository) GetByPrediction(_ context.Context, predictionID string) (scoring.Score, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[predictionID]
	if !ok {
		return scoring.Score{}, false, nil
	}
	return item, true, nil
}

func (r *ScoringRepository) ListByRace(_ context.Context, raceID string) ([]scoring.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Score, 0)
	for _, item := range r.items {
		if item.RaceID == raceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *ScoringRepository) ListByUser(_ context.Context, userID string) ([]scoring.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Score, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaceID < out[j].RaceID })
	return out, nil
}

func (r *ScoringRepository) DeleteByRace(_ context.Context, raceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.RaceID == raceID {
			delete(r.items, key)
		}
	}
	return nil
}
