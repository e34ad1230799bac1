package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/rider"
)

type RiderRepository struct {
	mu    sync.RWMutex
	items map[string]rider.Rider
}

func NewRiderRepository(riders []rider.Rider) *RiderRepository {
	items := make(map[string]rider.Rider, len(riders))
	for _, item := range riders {
		items[item.ID] = item
	}
	return &RiderRepository{items: items}
}

func (r *RiderRepository) GetByID(_ context.Context, id string) (rider.Rider, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return rider.Rider{}, false, nil
	}
	return item, true, nil
}

func (r *RiderRepository) List(_ context.Context) ([]rider.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rider.Rider, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sortRiders(out)
	return out, nil
}

func (r *RiderRepository) ListBySeries(_ context.Context, series string) ([]rider.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rider.Rider, 0, len(r.items))
	for _, item := range r.items {
		if item.Series == series {
			out = append(out, item)
		}
	}
	sortRiders(out)
	return out, nil
}

func (r *RiderRepository) Upsert(_ context.Context, item rider.Rider) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[item.ID]
	r.items[item.ID] = item
	return !exists, nil
}

func sortRiders(out []rider.Rider) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
}
