package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/platform/cache"
	"github.com/motosense/backend/internal/platform/logging"
)

func seedProfiles(repo *stubProfileRepo) {
	repo.profiles["user-a"] = profile.Profile{UserID: "user-a", TotalPoints: 120, ScoredPredictions: 6, ExactPicks: 14, CurrentStreak: 3}
	repo.profiles["user-b"] = profile.Profile{UserID: "user-b", TotalPoints: 80, ScoredPredictions: 4, ExactPicks: 6, CurrentStreak: 1}
	repo.profiles["user-c"] = profile.Profile{UserID: "user-c", TotalPoints: 200, ScoredPredictions: 8, ExactPicks: 22, CurrentStreak: 5, PerfectRaces: 1}
}

func TestLeaderboardTopRanksByPoints(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	seedProfiles(repo)
	svc := NewLeaderboardService(repo, cache.NewStore(time.Minute), logging.NewNop())

	entries, err := svc.Top(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=2", len(entries))
	}
	if entries[0].UserID != "user-c" || entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].UserID != "user-a" || entries[1].Rank != 2 {
		t.Fatalf("unexpected runner-up: %+v", entries[1])
	}
}

func TestLeaderboardTopCachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	seedProfiles(repo)
	svc := NewLeaderboardService(repo, cache.NewStore(time.Minute), logging.NewNop())

	first, err := svc.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A profile change is invisible until the cache is dropped.
	repo.profiles["user-b"] = profile.Profile{UserID: "user-b", TotalPoints: 999, ScoredPredictions: 5}
	cached, err := svc.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached[0].UserID != first[0].UserID {
		t.Fatalf("expected cached standings, got leader %s", cached[0].UserID)
	}

	svc.Invalidate(context.Background())
	fresh, err := svc.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh[0].UserID != "user-b" {
		t.Fatalf("expected fresh standings after invalidation, got leader %s", fresh[0].UserID)
	}
}

func TestLeaderboardTopWithoutCache(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	seedProfiles(repo)
	svc := NewLeaderboardService(repo, nil, logging.NewNop())

	entries, err := svc.Top(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("unexpected entry count: got=%d want=3", len(entries))
	}
}
