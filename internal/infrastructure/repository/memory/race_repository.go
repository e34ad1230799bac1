package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/race"
)

type RaceRepository struct {
	mu    sync.RWMutex
	items map[string]race.Race
}

func NewRaceRepository(races []race.Race) *RaceRepository {
	items := make(map[string]race.Race, len(races))
	for _, r := range races {
		items[r.ID] = r
	}
	return &RaceRepository{items: items}
}

func (r *RaceRepository) GetByID(_ context.Context, id string) (race.Race, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return race.Race{}, false, nil
	}
	return item, true, nil
}

func (r *RaceRepository) List(_ context.Context) ([]race.Race, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]race.Race, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sortRaces(out)
	return out, nil
}

func (r *RaceRepository) ListSimulation(_ context.Context) ([]race.Race, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]race.Race, 0, len(r.items))
	for _, item := range r.items {
		if item.IsSimulation {
			out = append(out, item)
		}
	}
	sortRaces(out)
	return out, nil
}

func (r *RaceRepository) Upsert(_ context.Context, item race.Race) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[item.ID]
	r.items[item.ID] = item
	return !exists, nil
}

func (r *RaceRepository) Update(_ context.Context, item race.Race) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

func (r *RaceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func sortRaces(out []race.Race) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
}
