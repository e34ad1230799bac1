package race

import "context"

// Repository exposes race read/write operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Race, bool, error)
	List(ctx context.Context) ([]Race, error)
	// ListSimulation returns demo-season races ordered by scheduled date.
	ListSimulation(ctx context.Context) ([]Race, error)
	Upsert(ctx context.Context, item Race) (created bool, err error)
	// Update replaces the stored row; the caller re-reads before calling.
	Update(ctx context.Context, item Race) error
	Delete(ctx context.Context, id string) error
}
