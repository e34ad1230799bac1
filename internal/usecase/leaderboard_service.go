package usecase

import (
	"context"
	"fmt"

	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/platform/cache"
	"github.com/motosense/backend/internal/platform/logging"
)

const (
	defaultLeaderboardLimit = 25
	maxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"user_id"`
	TotalPoints       int     `json:"total_points"`
	ScoredPredictions int     `json:"scored_predictions"`
	Accuracy          float64 `json:"accuracy"`
	CurrentStreak     int     `json:"current_streak"`
	PerfectRaces      int     `json:"perfect_races"`
}

// LeaderboardService serves the points standings. Reads go through a short
// TTL cache because the board only moves when a race is scored.
type LeaderboardService struct {
	profileRepo profile.Repository
	store       *cache.Store
	logger      *logging.Logger
}

func NewLeaderboardService(profileRepo profile.Repository, store *cache.Store, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeaderboardService{
		profileRepo: profileRepo,
		store:       store,
		logger:      logger,
	}
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Top")
	defer span.End()

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	load := func(ctx context.Context) (any, error) {
		profiles, err := s.profileRepo.ListTopProfiles(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list top profiles limit=%d: %w", limit, err)
		}

		out := make([]LeaderboardEntry, 0, len(profiles))
		for idx, item := range profiles {
			out = append(out, LeaderboardEntry{
				Rank:              idx + 1,
				UserID:            item.UserID,
				TotalPoints:       item.TotalPoints,
				ScoredPredictions: item.ScoredPredictions,
				Accuracy:          item.Accuracy(),
				CurrentStreak:     item.CurrentStreak,
				PerfectRaces:      item.PerfectRaces,
			})
		}
		return out, nil
	}

	if s.store == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]LeaderboardEntry), nil
	}

	value, err := s.store.GetOrLoad(ctx, fmt.Sprintf("leaderboard:top:%d", limit), load)
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]LeaderboardEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache payload for limit=%d", limit)
	}
	return entries, nil
}

// Invalidate drops cached standings, called after a race is scored.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.store.DeletePrefix(ctx, "leaderboard:top:")
}
