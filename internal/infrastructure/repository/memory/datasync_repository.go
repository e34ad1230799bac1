package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/datasync"
)

type DataSyncRepository struct {
	mu        sync.RWMutex
	sources   map[string]datasync.Source
	snapshots map[string]datasync.Snapshot
	runs      map[string]datasync.Run
	changes   []datasync.Change
}

func NewDataSyncRepository(sources []datasync.Source) *DataSyncRepository {
	items := make(map[string]datasync.Source, len(sources))
	for _, src := range sources {
		items[src.ID] = src
	}
	return &DataSyncRepository{
		sources:   items,
		snapshots: make(map[string]datasync.Snapshot),
		runs:      make(map[string]datasync.Run),
	}
}

func (r *DataSyncRepository) GetSource(_ context.Context, id string) (datasync.Source, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.sources[id]
	if !ok {
		return datasync.Source{}, false, nil
	}
	return item, true, nil
}

func (r *DataSyncRepository) ListActiveSources(_ context.Context) ([]datasync.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]datasync.Source, 0, len(r.sources))
	for _, item := range r.sources {
		if item.Active {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DataSyncRepository) UpdateSource(_ context.Context, item datasync.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[item.ID] = item
	return nil
}

func snapshotKey(sourceID, url string) string {
	return sourceID + "|" + url
}

func (r *DataSyncRepository) GetSnapshot(_ context.Context, sourceID, url string) (datasync.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.snapshots[snapshotKey(sourceID, url)]
	if !ok {
		return datasync.Snapshot{}, false, nil
	}
	return item, true, nil
}

func (r *DataSyncRepository) UpsertSnapshot(_ context.Context, item datasync.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshotKey(item.SourceID, item.URL)] = item
	return nil
}

func (r *DataSyncRepository) CreateRun(_ context.Context, item datasync.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[item.ID] = item
	return nil
}

func (r *DataSyncRepository) UpdateRun(_ context.Context, item datasync.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[item.ID] = item
	return nil
}

func (r *DataSyncRepository) ListRunsBySource(_ context.Context, sourceID string, limit int) ([]datasync.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]datasync.Run, 0)
	for _, item := range r.runs {
		if item.SourceID == sourceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *DataSyncRepository) AppendChanges(_ context.Context, items []datasync.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.changes = append(r.changes, items...)
	return nil
}

func (r *DataSyncRepository) ListChangesByEntity(_ context.Context, entityType, entityID string) ([]datasync.Change, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]datasync.Change, 0)
	for _, item := range r.changes {
		if item.EntityType == entityType && item.EntityID == entityID {
			out = append(out, item)
		}
	}
	return out, nil
}
