package memory

import (
	"context"
	"sync"

	"github.com/motosense/backend/internal/domain/result"
)

type ResultRepository struct {
	mu    sync.RWMutex
	items map[string]result.RaceResult
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{items: make(map[string]result.RaceResult)}
}

func (r *ResultRepository) GetByRace(_ context.Context, raceID string) (result.RaceResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[raceID]
	if !ok {
		return result.RaceResult{}, false, nil
	}
	return item, true, nil
}

func (r *ResultRepository) Upsert(_ context.Context, item result.RaceResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[item.RaceID]
	r.items[item.RaceID] = item
	return !exists, nil
}

func (r *ResultRepository) DeleteByRace(_ context.Context, raceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, raceID)
	return nil
}
