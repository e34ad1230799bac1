package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/motosense/backend/internal/domain/prediction"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/platform/logging"
)

// StatsUpdater folds a freshly computed score into the user's aggregate
// profile and achievement state. Applied once per scored prediction.
type StatsUpdater interface {
	ApplyScoredPrediction(ctx context.Context, userID string, raceDate time.Time, item scoring.Score) error
}

type ScoringConfig struct {
	Rules scoring.Rules
	// MaxWorkers caps concurrent score computation within one race.
	MaxWorkers int
}

// ScoringService recomputes prediction scores whenever a race's results
// change. Scoring is deterministic: the same prediction and result always
// produce the same score, so recomputation is safe to repeat.
type ScoringService struct {
	predictionRepo prediction.Repository
	resultRepo     result.Repository
	scoreRepo      scoring.Repository
	raceRepo       race.Repository
	stats          StatsUpdater
	cfg            ScoringConfig
	logger         *logging.Logger
	now            func() time.Time
}

func NewScoringService(
	predictionRepo prediction.Repository,
	resultRepo result.Repository,
	scoreRepo scoring.Repository,
	raceRepo race.Repository,
	stats StatsUpdater,
	cfg ScoringConfig,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Rules == (scoring.Rules{}) {
		cfg.Rules = scoring.DefaultRules()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}

	return &ScoringService{
		predictionRepo: predictionRepo,
		resultRepo:     resultRepo,
		scoreRepo:      scoreRepo,
		raceRepo:       raceRepo,
		stats:          stats,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// RecalculateRace scores every prediction on the race against its current
// result record and returns how many were scored. Profile and achievement
// updates run after all scores are stored, in deterministic user order.
func (s *ScoringService) RecalculateRace(ctx context.Context, raceID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecalculateRace")
	defer span.End()

	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return 0, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}

	raceItem, found, err := s.raceRepo.GetByID(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("get race id=%s: %w", raceID, err)
	}
	if !found {
		return 0, fmt.Errorf("%w: race id=%s", ErrNotFound, raceID)
	}

	resultItem, haveResult, err := s.resultRepo.GetByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("get race result race=%s: %w", raceID, err)
	}
	if !haveResult {
		return 0, fmt.Errorf("%w: results for race id=%s", ErrNotFound, raceID)
	}

	predictions, err := s.predictionRepo.ListByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list predictions race=%s: %w", raceID, err)
	}
	if len(predictions) == 0 {
		return 0, nil
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].UserID < predictions[j].UserID
	})

	finishing := resultItem.TopFinishers(len(resultItem.Entries))
	computedAt := s.now().UTC()

	scores := make([]scoring.Score, len(predictions))
	workers := pool.New().WithErrors().WithMaxGoroutines(s.cfg.MaxWorkers)
	for idx, item := range predictions {
		idx, item := idx, item
		workers.Go(func() error {
			breakdown := s.cfg.Rules.Score(item.Picks, finishing)
			scores[idx] = scoring.Score{
				PredictionID: item.ID,
				RaceID:       raceID,
				UserID:       item.UserID,
				ExactMatches: breakdown.ExactMatches,
				Top5Matches:  breakdown.Top5Matches,
				Points:       breakdown.Points,
				BonusPoints:  breakdown.BonusPoints,
				Perfect:      breakdown.Perfect,
				ComputedAt:   computedAt,
			}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return 0, fmt.Errorf("compute scores race=%s: %w", raceID, err)
	}

	for _, item := range scores {
		if err := s.scoreRepo.Upsert(ctx, item); err != nil {
			return 0, fmt.Errorf("upsert score prediction=%s race=%s: %w", item.PredictionID, raceID, err)
		}
	}

	if s.stats != nil {
		for _, item := range scores {
			if err := s.stats.ApplyScoredPrediction(ctx, item.UserID, raceItem.ScheduledAt, item); err != nil {
				s.logger.ErrorContext(ctx, "profile update failed after scoring", "user_id", item.UserID, "race_id", raceID, "error", err.Error())
			}
		}
	}

	s.logger.InfoContext(ctx, "race scored", "race_id", raceID, "prediction_count", len(scores))
	return len(scores), nil
}

// InvalidateRace removes a race's result record and cascade-deletes every
// score derived from it, clearing the has_results flag on the race.
func (s *ScoringService) InvalidateRace(ctx context.Context, raceID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.InvalidateRace")
	defer span.End()

	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}

	raceItem, found, err := s.raceRepo.GetByID(ctx, raceID)
	if err != nil {
		return fmt.Errorf("get race id=%s: %w", raceID, err)
	}
	if !found {
		return fmt.Errorf("%w: race id=%s", ErrNotFound, raceID)
	}

	if err := s.scoreRepo.DeleteByRace(ctx, raceID); err != nil {
		return fmt.Errorf("delete scores race=%s: %w", raceID, err)
	}
	if err := s.resultRepo.DeleteByRace(ctx, raceID); err != nil {
		return fmt.Errorf("delete race result race=%s: %w", raceID, err)
	}

	raceItem.HasResults = false
	raceItem.ResultsRevealedAt = nil
	if err := s.raceRepo.Update(ctx, raceItem); err != nil {
		return fmt.Errorf("clear has_results race=%s: %w", raceID, err)
	}

	s.logger.InfoContext(ctx, "race result invalidated", "race_id", raceID)
	return nil
}
