package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/rider"
	"github.com/motosense/backend/internal/platform/logging"
)

// CatalogService serves the read-only race and rider listings backing the
// public browse screens.
type CatalogService struct {
	raceRepo  race.Repository
	riderRepo rider.Repository
	logger    *logging.Logger
}

func NewCatalogService(raceRepo race.Repository, riderRepo rider.Repository, logger *logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CatalogService{
		raceRepo:  raceRepo,
		riderRepo: riderRepo,
		logger:    logger,
	}
}

func (s *CatalogService) ListRaces(ctx context.Context) ([]race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListRaces")
	defer span.End()

	return s.raceRepo.List(ctx)
}

func (s *CatalogService) GetRace(ctx context.Context, raceID string) (race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.GetRace")
	defer span.End()

	item, found, err := s.raceRepo.GetByID(ctx, strings.TrimSpace(raceID))
	if err != nil {
		return race.Race{}, err
	}
	if !found {
		return race.Race{}, fmt.Errorf("%w: race %q", ErrNotFound, raceID)
	}
	return item, nil
}

func (s *CatalogService) ListRiders(ctx context.Context, series string) ([]rider.Rider, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListRiders")
	defer span.End()

	series = strings.ToLower(strings.TrimSpace(series))
	if series == "" {
		return s.riderRepo.List(ctx)
	}
	if !race.IsValidSeries(series) {
		return nil, fmt.Errorf("%w: unknown series %q", ErrInvalidInput, series)
	}
	return s.riderRepo.ListBySeries(ctx, series)
}
