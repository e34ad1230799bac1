package datasync

import "context"

type Repository interface {
	GetSource(ctx context.Context, id string) (Source, bool, error)
	ListActiveSources(ctx context.Context) ([]Source, error)
	UpdateSource(ctx context.Context, item Source) error

	GetSnapshot(ctx context.Context, sourceID, url string) (Snapshot, bool, error)
	UpsertSnapshot(ctx context.Context, item Snapshot) error

	CreateRun(ctx context.Context, item Run) error
	UpdateRun(ctx context.Context, item Run) error
	ListRunsBySource(ctx context.Context, sourceID string, limit int) ([]Run, error)

	AppendChanges(ctx context.Context, items []Change) error
	ListChangesByEntity(ctx context.Context, entityType, entityID string) ([]Change, error)
}
