package rider

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Rider, bool, error)
	List(ctx context.Context) ([]Rider, error)
	ListBySeries(ctx context.Context, series string) ([]Rider, error)
	Upsert(ctx context.Context, item Rider) (created bool, err error)
}
