package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/platform/logging"
)

// StreakWindow is how long after one scored race the next one still extends
// the streak.
const StreakWindow = 14 * 24 * time.Hour

// AchievementService maintains per-user aggregate stats and the achievement
// catalog. Aggregates are rebuilt from the full score history on every
// update, so re-scoring a race never double-counts and unlocks stay
// unlocked exactly once.
type AchievementService struct {
	profileRepo profile.Repository
	scoreRepo   scoring.Repository
	raceRepo    race.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewAchievementService(
	profileRepo profile.Repository,
	scoreRepo scoring.Repository,
	raceRepo race.Repository,
	logger *logging.Logger,
) *AchievementService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AchievementService{
		profileRepo: profileRepo,
		scoreRepo:   scoreRepo,
		raceRepo:    raceRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// ApplyScoredPrediction implements StatsUpdater.
func (s *AchievementService) ApplyScoredPrediction(ctx context.Context, userID string, _ time.Time, _ scoring.Score) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.ApplyScoredPrediction")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	updated, err := s.rebuildProfile(ctx, userID)
	if err != nil {
		return err
	}
	return s.applyCatalog(ctx, &updated)
}

// GetProfile returns the stored aggregate profile for a user, zero-valued if
// the user has no scored predictions yet.
func (s *AchievementService) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.GetProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, found, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile user=%s: %w", userID, err)
	}
	if !found {
		return profile.Profile{UserID: userID}, nil
	}
	return item, nil
}

// ListAchievements returns the full catalog joined with the user's progress.
// Definitions the user has no state for yet come back with zero progress.
func (s *AchievementService) ListAchievements(ctx context.Context, userID string) ([]AchievementView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.ListAchievements")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	states, err := s.profileRepo.ListAchievementStates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievement states user=%s: %w", userID, err)
	}
	byID := make(map[string]profile.AchievementState, len(states))
	for _, state := range states {
		byID[state.AchievementID] = state
	}

	catalog := profile.Catalog()
	out := make([]AchievementView, 0, len(catalog))
	for _, def := range catalog {
		view := AchievementView{
			ID:           def.ID,
			Name:         def.Name,
			Description:  def.Description,
			Target:       def.Target,
			RewardPoints: def.RewardPoints,
		}
		if state, ok := byID[def.ID]; ok {
			view.Progress = state.Progress
			view.UnlockedAt = state.UnlockedAt
		}
		out = append(out, view)
	}
	return out, nil
}

type AchievementView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Target       int        `json:"target"`
	RewardPoints int        `json:"reward_points"`
	Progress     int        `json:"progress"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
}

type scoredRace struct {
	score  scoring.Score
	raceAt time.Time
}

func (s *AchievementService) rebuildProfile(ctx context.Context, userID string) (profile.Profile, error) {
	scores, err := s.scoreRepo.ListByUser(ctx, userID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("list scores user=%s: %w", userID, err)
	}

	rows := make([]scoredRace, 0, len(scores))
	for _, item := range scores {
		raceItem, found, err := s.raceRepo.GetByID(ctx, item.RaceID)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("get race id=%s: %w", item.RaceID, err)
		}
		if !found {
			continue
		}
		rows = append(rows, scoredRace{score: item, raceAt: raceItem.ScheduledAt})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].raceAt.Equal(rows[j].raceAt) {
			return rows[i].raceAt.Before(rows[j].raceAt)
		}
		return rows[i].score.RaceID < rows[j].score.RaceID
	})

	out := profile.Profile{UserID: userID, UpdatedAt: s.now().UTC()}
	streak := 0
	var lastRaceAt time.Time
	for _, row := range rows {
		out.ScoredPredictions++
		out.TotalPoints += row.score.Points
		out.ExactPicks += row.score.ExactMatches
		if row.score.Perfect {
			out.PerfectRaces++
		}

		if streak > 0 && row.raceAt.After(lastRaceAt) && row.raceAt.Sub(lastRaceAt) <= StreakWindow {
			streak++
		} else {
			streak = 1
		}
		if streak > out.LongestStreak {
			out.LongestStreak = streak
		}
		lastRaceAt = row.raceAt

		raceAt := row.raceAt
		out.LastRaceAt = &raceAt
	}
	out.CurrentStreak = streak

	return out, nil
}

func (s *AchievementService) applyCatalog(ctx context.Context, p *profile.Profile) error {
	states, err := s.profileRepo.ListAchievementStates(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("list achievement states user=%s: %w", p.UserID, err)
	}
	byID := make(map[string]profile.AchievementState, len(states))
	for _, state := range states {
		byID[state.AchievementID] = state
	}

	now := s.now().UTC()
	for _, def := range profile.Catalog() {
		state, ok := byID[def.ID]
		if !ok {
			state = profile.AchievementState{UserID: p.UserID, AchievementID: def.ID}
		}

		progress := achievementProgress(def, *p)
		if state.UnlockedAt != nil {
			// Unlocked achievements keep their reward and never regress.
			p.TotalPoints += def.RewardPoints
			if progress > state.Progress {
				state.Progress = progress
				if err := s.profileRepo.UpsertAchievementState(ctx, state); err != nil {
					return fmt.Errorf("update achievement state user=%s achievement=%s: %w", p.UserID, def.ID, err)
				}
			}
			continue
		}

		state.Progress = progress
		if progress >= def.Target {
			unlockedAt := now
			state.UnlockedAt = &unlockedAt
			p.TotalPoints += def.RewardPoints
			s.logger.InfoContext(ctx, "achievement unlocked", "user_id", p.UserID, "achievement_id", def.ID, "reward_points", def.RewardPoints)
		}
		if err := s.profileRepo.UpsertAchievementState(ctx, state); err != nil {
			return fmt.Errorf("update achievement state user=%s achievement=%s: %w", p.UserID, def.ID, err)
		}
	}

	if err := s.profileRepo.UpsertProfile(ctx, *p); err != nil {
		return fmt.Errorf("upsert profile user=%s: %w", p.UserID, err)
	}
	return nil
}

func achievementProgress(def profile.AchievementDef, p profile.Profile) int {
	switch def.Trigger {
	case profile.TriggerFirstPrediction, profile.TriggerPredictionCount:
		return p.ScoredPredictions
	case profile.TriggerStreak:
		return p.LongestStreak
	case profile.TriggerAccuracy:
		return int(p.Accuracy())
	case profile.TriggerPerfectRace:
		return p.PerfectRaces
	default:
		return 0
	}
}
