package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/platform/logging"
)

type stubProfileRepo struct {
	profiles map[string]profile.Profile
	states   map[string]profile.AchievementState
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		profiles: make(map[string]profile.Profile),
		states:   make(map[string]profile.AchievementState),
	}
}

func (r *stubProfileRepo) GetProfile(_ context.Context, userID string) (profile.Profile, bool, error) {
	item, ok := r.profiles[userID]
	return item, ok, nil
}

func (r *stubProfileRepo) UpsertProfile(_ context.Context, item profile.Profile) error {
	r.profiles[item.UserID] = item
	return nil
}

func (r *stubProfileRepo) ListTopProfiles(_ context.Context, limit int) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(r.profiles))
	for _, item := range r.profiles {
		out = append(out, item)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalPoints > out[i].TotalPoints ||
				(out[j].TotalPoints == out[i].TotalPoints && out[j].UserID < out[i].UserID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubProfileRepo) ListAchievementStates(_ context.Context, userID string) ([]profile.AchievementState, error) {
	out := make([]profile.AchievementState, 0, len(r.states))
	for _, item := range r.states {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *stubProfileRepo) UpsertAchievementState(_ context.Context, item profile.AchievementState) error {
	r.states[item.UserID+"|"+item.AchievementID] = item
	return nil
}

func raceOn(id string, scheduledAt time.Time) race.Race {
	return race.Race{
		ID:          id,
		Series:      race.SeriesMotoGP,
		Name:        id,
		ScheduledAt: scheduledAt,
		Status:      race.StatusCompleted,
		HasResults:  true,
	}
}

func scoreFor(userID, raceID string, points, exact int, perfect bool) scoring.Score {
	return scoring.Score{
		PredictionID: "pred-" + userID + "-" + raceID,
		RaceID:       raceID,
		UserID:       userID,
		ExactMatches: exact,
		Points:       points,
		Perfect:      perfect,
	}
}

func newTestAchievementService(profileRepo *stubProfileRepo, scoreRepo *stubScoreRepo, raceRepo *stubRaceRepo, now time.Time) *AchievementService {
	svc := NewAchievementService(profileRepo, scoreRepo, raceRepo, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestApplyScoredPredictionFirstUnlock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	raceAt := now.Add(-48 * time.Hour)
	raceRepo := newStubRaceRepo(raceOn("race-1", raceAt))
	score := scoreFor("user-1", "race-1", 16, 1, false)
	scoreRepo := newStubScoreRepo(score)
	profileRepo := newStubProfileRepo()
	svc := newTestAchievementService(profileRepo, scoreRepo, raceRepo, now)

	if err := svc.ApplyScoredPrediction(context.Background(), "user-1", raceAt, score); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := profileRepo.profiles["user-1"]
	if got.ScoredPredictions != 1 || got.CurrentStreak != 1 || got.LongestStreak != 1 {
		t.Fatalf("unexpected profile counters: %+v", got)
	}
	// 16 race points plus the first_prediction reward.
	if got.TotalPoints != 16+10 {
		t.Fatalf("unexpected total points: got=%d want=26", got.TotalPoints)
	}

	state := profileRepo.states["user-1|first_prediction"]
	if state.UnlockedAt == nil {
		t.Fatalf("expected first_prediction unlocked")
	}
	if locked := profileRepo.states["user-1|five_predictions"]; locked.UnlockedAt != nil {
		t.Fatalf("five_predictions must stay locked at one prediction")
	}
}

func TestApplyScoredPredictionStreakRules(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	// Three races a week apart, then a gap far beyond the streak window.
	races := []race.Race{
		raceOn("race-1", base),
		raceOn("race-2", base.Add(7*24*time.Hour)),
		raceOn("race-3", base.Add(14*24*time.Hour)),
		raceOn("race-4", base.Add(60*24*time.Hour)),
	}
	raceRepo := newStubRaceRepo(races...)
	scoreRepo := newStubScoreRepo(
		scoreFor("user-1", "race-1", 10, 1, false),
		scoreFor("user-1", "race-2", 13, 1, false),
		scoreFor("user-1", "race-3", 6, 0, false),
		scoreFor("user-1", "race-4", 20, 2, false),
	)
	profileRepo := newStubProfileRepo()
	svc := newTestAchievementService(profileRepo, scoreRepo, raceRepo, now)

	if err := svc.ApplyScoredPrediction(context.Background(), "user-1", races[3].ScheduledAt, scoring.Score{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := profileRepo.profiles["user-1"]
	if got.LongestStreak != 3 {
		t.Fatalf("unexpected longest streak: got=%d want=3", got.LongestStreak)
	}
	if got.CurrentStreak != 1 {
		t.Fatalf("gap beyond streak window must reset the streak: got=%d want=1", got.CurrentStreak)
	}
	if state := profileRepo.states["user-1|streak_3"]; state.UnlockedAt == nil {
		t.Fatalf("expected streak_3 unlocked from longest streak")
	}
}

func TestApplyScoredPredictionPerfectUnlocksOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	raceAt := now.Add(-48 * time.Hour)
	raceRepo := newStubRaceRepo(raceOn("race-1", raceAt))
	score := scoreFor("user-1", "race-1", 75, 5, true)
	scoreRepo := newStubScoreRepo(score)
	profileRepo := newStubProfileRepo()
	svc := newTestAchievementService(profileRepo, scoreRepo, raceRepo, now)

	if err := svc.ApplyScoredPrediction(context.Background(), "user-1", raceAt, score); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstUnlock := profileRepo.states["user-1|perfect_prediction"].UnlockedAt
	if firstUnlock == nil {
		t.Fatalf("expected perfect_prediction unlocked")
	}
	firstPoints := profileRepo.profiles["user-1"].TotalPoints

	// Re-scoring the same race must not re-award or re-unlock anything.
	later := now.Add(time.Hour)
	svc.now = func() time.Time { return later }
	if err := svc.ApplyScoredPrediction(context.Background(), "user-1", raceAt, score); err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}

	state := profileRepo.states["user-1|perfect_prediction"]
	if state.UnlockedAt == nil || !state.UnlockedAt.Equal(*firstUnlock) {
		t.Fatalf("perfect_prediction must unlock exactly once: first=%v now=%v", firstUnlock, state.UnlockedAt)
	}
	if got := profileRepo.profiles["user-1"].TotalPoints; got != firstPoints {
		t.Fatalf("re-scoring must not change total points: got=%d want=%d", got, firstPoints)
	}
}

func TestApplyScoredPredictionAccuracyUnlock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	races := make([]race.Race, 0, 2)
	scores := make([]scoring.Score, 0, 2)
	for idx := 0; idx < 2; idx++ {
		id := []string{"race-1", "race-2"}[idx]
		races = append(races, raceOn(id, base.Add(time.Duration(idx)*7*24*time.Hour)))
		// 3 exact picks out of 5 per race: 60% accuracy overall.
		scores = append(scores, scoreFor("user-1", id, 36, 3, false))
	}
	profileRepo := newStubProfileRepo()
	svc := newTestAchievementService(profileRepo, newStubScoreRepo(scores...), newStubRaceRepo(races...), now)

	if err := svc.ApplyScoredPrediction(context.Background(), "user-1", races[1].ScheduledAt, scores[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state := profileRepo.states["user-1|sharpshooter"]; state.UnlockedAt == nil {
		t.Fatalf("expected sharpshooter unlocked at 60%% accuracy, progress=%d", state.Progress)
	}
}

func TestListAchievementsJoinsCatalog(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	profileRepo := newStubProfileRepo()
	unlockedAt := now.Add(-time.Hour)
	profileRepo.states["user-1|first_prediction"] = profile.AchievementState{
		UserID:        "user-1",
		AchievementID: "first_prediction",
		Progress:      1,
		UnlockedAt:    &unlockedAt,
	}
	svc := newTestAchievementService(profileRepo, newStubScoreRepo(), newStubRaceRepo(), now)

	views, err := svc.ListAchievements(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != len(profile.Catalog()) {
		t.Fatalf("unexpected view count: got=%d want=%d", len(views), len(profile.Catalog()))
	}

	var unlockedCount int
	for _, view := range views {
		if view.UnlockedAt != nil {
			unlockedCount++
			if view.ID != "first_prediction" {
				t.Fatalf("unexpected unlocked achievement: %s", view.ID)
			}
		}
	}
	if unlockedCount != 1 {
		t.Fatalf("unexpected unlocked count: got=%d want=1", unlockedCount)
	}
}
