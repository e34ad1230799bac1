package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/motosense/backend/internal/domain/prediction"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/platform/id"
	"github.com/motosense/backend/internal/platform/logging"
)

type SubmitPredictionInput struct {
	UserID     string   `json:"user_id"`
	RaceID     string   `json:"race_id"`
	Picks      []string `json:"picks"`
	Confidence int      `json:"confidence"`
}

type PredictionConfig struct {
	// LockWindow is how long before the scheduled start real races stop
	// accepting picks.
	LockWindow time.Duration
}

// PredictionService owns submission and retrieval of race predictions. A
// prediction is immutable once stored: no updates, no overwrites.
type PredictionService struct {
	predictionRepo prediction.Repository
	raceRepo       race.Repository
	scoreRepo      scoring.Repository
	ids            id.Generator
	cfg            PredictionConfig
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	predictionRepo prediction.Repository,
	raceRepo race.Repository,
	scoreRepo scoring.Repository,
	ids id.Generator,
	cfg PredictionConfig,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if cfg.LockWindow <= 0 {
		cfg.LockWindow = time.Hour
	}

	return &PredictionService{
		predictionRepo: predictionRepo,
		raceRepo:       raceRepo,
		scoreRepo:      scoreRepo,
		ids:            ids,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	raceID := strings.TrimSpace(input.RaceID)
	if userID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if raceID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}

	picks, err := normalizePicks(input.Picks)
	if err != nil {
		return prediction.Prediction{}, err
	}

	confidence := input.Confidence
	if confidence == 0 {
		confidence = prediction.ConfidenceNeutral
	}
	if confidence < prediction.ConfidenceMin || confidence > prediction.ConfidenceMax {
		return prediction.Prediction{}, fmt.Errorf("%w: confidence must be between %d and %d", ErrInvalidInput, prediction.ConfidenceMin, prediction.ConfidenceMax)
	}

	raceItem, found, err := s.raceRepo.GetByID(ctx, raceID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get race id=%s: %w", raceID, err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: race id=%s", ErrNotFound, raceID)
	}

	now := s.now()
	if err := s.checkLock(raceItem, now); err != nil {
		return prediction.Prediction{}, err
	}

	predictionID, err := s.ids.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}
	item := prediction.Prediction{
		ID:          predictionID,
		UserID:      userID,
		RaceID:      raceID,
		Picks:       picks,
		Confidence:  confidence,
		SubmittedAt: now.UTC(),
	}

	if err := s.predictionRepo.Create(ctx, item); err != nil {
		if errors.Is(err, prediction.ErrAlreadyExists) {
			return prediction.Prediction{}, fmt.Errorf("%w: race id=%s", ErrDuplicatePrediction, raceID)
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction user=%s race=%s: %w", userID, raceID, err)
	}

	s.logger.InfoContext(ctx, "prediction submitted", "user_id", userID, "race_id", raceID, "confidence", confidence)
	return item, nil
}

func (s *PredictionService) Get(ctx context.Context, userID, raceID string) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	raceID = strings.TrimSpace(raceID)
	if userID == "" || raceID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id and race id are required", ErrInvalidInput)
	}

	item, found, err := s.predictionRepo.GetByUserAndRace(ctx, userID, raceID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction user=%s race=%s: %w", userID, raceID, err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction user=%s race=%s", ErrNotFound, userID, raceID)
	}
	return item, nil
}

func (s *PredictionService) GetScore(ctx context.Context, userID, raceID string) (scoring.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetScore")
	defer span.End()

	userID = strings.TrimSpace(userID)
	raceID = strings.TrimSpace(raceID)
	if userID == "" || raceID == "" {
		return scoring.Score{}, fmt.Errorf("%w: user id and race id are required", ErrInvalidInput)
	}

	pred, found, err := s.predictionRepo.GetByUserAndRace(ctx, userID, raceID)
	if err != nil {
		return scoring.Score{}, fmt.Errorf("get prediction user=%s race=%s: %w", userID, raceID, err)
	}
	if !found {
		return scoring.Score{}, fmt.Errorf("%w: prediction user=%s race=%s", ErrNotFound, userID, raceID)
	}

	item, found, err := s.scoreRepo.GetByPrediction(ctx, pred.ID)
	if err != nil {
		return scoring.Score{}, fmt.Errorf("get prediction score prediction=%s: %w", pred.ID, err)
	}
	if !found {
		return scoring.Score{}, fmt.Errorf("%w: score prediction=%s", ErrNotFound, pred.ID)
	}
	return item, nil
}

func (s *PredictionService) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions user=%s: %w", userID, err)
	}
	return items, nil
}

// checkLock enforces the submission deadline. Simulation races are driven by
// the round state machine and accept picks only while open; real races lock
// a fixed window before their scheduled start.
func (s *PredictionService) checkLock(item race.Race, now time.Time) error {
	if item.IsSimulation {
		if item.Status != race.StatusOpen {
			return fmt.Errorf("%w: race id=%s status=%s", ErrPredictionsLocked, item.ID, item.Status)
		}
		if item.ClosesAt != nil && !now.Before(*item.ClosesAt) {
			return fmt.Errorf("%w: race id=%s closed at %s", ErrPredictionsLocked, item.ID, item.ClosesAt.UTC().Format(time.RFC3339))
		}
		return nil
	}

	if item.HasResults {
		return fmt.Errorf("%w: results already published for race id=%s", ErrPredictionsLocked, item.ID)
	}
	deadline := item.ScheduledAt.Add(-s.cfg.LockWindow)
	if !now.Before(deadline) {
		return fmt.Errorf("%w: race id=%s locks at %s", ErrPredictionsLocked, item.ID, deadline.UTC().Format(time.RFC3339))
	}
	return nil
}

func normalizePicks(raw []string) ([]string, error) {
	if len(raw) != prediction.PickCount {
		return nil, fmt.Errorf("%w: exactly %d picks are required, got %d", ErrInvalidInput, prediction.PickCount, len(raw))
	}

	picks := make([]string, 0, len(raw))
	for idx, pick := range raw {
		pick = strings.TrimSpace(pick)
		if pick == "" {
			return nil, fmt.Errorf("%w: pick at position %d is empty", ErrInvalidInput, idx+1)
		}
		picks = append(picks, pick)
	}
	if prediction.HasDuplicatePicks(picks) {
		return nil, fmt.Errorf("%w: picks must be distinct riders", ErrInvalidInput)
	}
	return picks, nil
}
