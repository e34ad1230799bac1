package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/platform/logging"
)

func simulationSeason(base time.Time) []race.Race {
	out := make([]race.Race, 0, 3)
	names := []string{"Round One", "Round Two", "Round Three"}
	for idx, name := range names {
		out = append(out, race.Race{
			ID:           "sim-" + string(rune('1'+idx)),
			Series:       race.SeriesMotoGP,
			Round:        idx + 1,
			Name:         name,
			ScheduledAt:  base.Add(time.Duration(idx) * 7 * 24 * time.Hour),
			Status:       race.StatusUpcoming,
			IsSimulation: true,
		})
	}
	return out
}

func newTestRoundService(raceRepo *stubRaceRepo, now time.Time) *RoundService {
	svc := NewRoundService(raceRepo, RoundConfig{}, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func openRaceCount(repo *stubRaceRepo) int {
	count := 0
	for _, item := range repo.races {
		if item.Status == race.StatusOpen {
			count++
		}
	}
	return count
}

func TestProgressOpensFirstRound(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newStubRaceRepo(simulationSeason(now.Add(24 * time.Hour))...)
	svc := newTestRoundService(repo, now)

	out, err := svc.Progress(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OpenedRaceID != "sim-1" {
		t.Fatalf("unexpected opened race: got=%s want=sim-1", out.OpenedRaceID)
	}
	if out.ClosedRaceID != "" {
		t.Fatalf("nothing should be closed on first progress: got=%s", out.ClosedRaceID)
	}

	opened := repo.races["sim-1"]
	if opened.Status != race.StatusOpen {
		t.Fatalf("unexpected status: got=%s want=%s", opened.Status, race.StatusOpen)
	}
	if opened.OpenedAt == nil || !opened.OpenedAt.Equal(now) {
		t.Fatalf("expected opened_at=%s", now)
	}
	if opened.ClosesAt == nil || !opened.ClosesAt.Equal(now.Add(48*time.Hour)) {
		t.Fatalf("expected closes_at 48h after open")
	}
}

func TestProgressClosesAndOpensNext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newStubRaceRepo(simulationSeason(now.Add(24 * time.Hour))...)
	svc := newTestRoundService(repo, now)

	if _, err := svc.Progress(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := svc.Progress(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ClosedRaceID != "sim-1" || out.OpenedRaceID != "sim-2" {
		t.Fatalf("unexpected transition: closed=%s opened=%s", out.ClosedRaceID, out.OpenedRaceID)
	}

	closed := repo.races["sim-1"]
	if closed.Status != race.StatusCompleted {
		t.Fatalf("unexpected closed status: got=%s", closed.Status)
	}
	if closed.ResultsRevealedAt == nil {
		t.Fatalf("expected results_revealed_at on closed round")
	}
	if openRaceCount(repo) != 1 {
		t.Fatalf("round invariant violated: open_count=%d", openRaceCount(repo))
	}
}

func TestProgressLastRoundClosesAndFails(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	season := simulationSeason(now.Add(24 * time.Hour))
	season[0].Status = race.StatusCompleted
	season[1].Status = race.StatusCompleted
	season[2].Status = race.StatusOpen
	repo := newStubRaceRepo(season...)
	svc := newTestRoundService(repo, now)

	out, err := svc.Progress(context.Background())
	if !errors.Is(err, ErrNoMoreRounds) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNoMoreRounds)
	}
	if out.ClosedRaceID != "sim-3" {
		t.Fatalf("final round must still be closed: got=%s", out.ClosedRaceID)
	}
	if repo.races["sim-3"].Status != race.StatusCompleted {
		t.Fatalf("unexpected final round status: got=%s", repo.races["sim-3"].Status)
	}
}

func TestProgressNothingToOpen(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	season := simulationSeason(now.Add(24 * time.Hour))
	for idx := range season {
		season[idx].Status = race.StatusCompleted
	}
	repo := newStubRaceRepo(season...)
	svc := newTestRoundService(repo, now)

	if _, err := svc.Progress(context.Background()); !errors.Is(err, ErrNoMoreRounds) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNoMoreRounds)
	}
	for id, item := range repo.races {
		if item.Status != race.StatusCompleted {
			t.Fatalf("failed progress must not change state: race=%s status=%s", id, item.Status)
		}
	}
}

func TestDigressReopensPreviousRound(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	season := simulationSeason(now.Add(-21 * 24 * time.Hour))
	revealed := now.Add(-24 * time.Hour)
	season[0].Status = race.StatusCompleted
	season[0].ResultsRevealedAt = &revealed
	season[1].Status = race.StatusOpen
	openedAt := now.Add(-2 * time.Hour)
	season[1].OpenedAt = &openedAt
	repo := newStubRaceRepo(season...)
	svc := newTestRoundService(repo, now)

	out, err := svc.Digress(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ReopenedRaceID != "sim-1" {
		t.Fatalf("unexpected reopened race: got=%s want=sim-1", out.ReopenedRaceID)
	}

	reverted := repo.races["sim-2"]
	if reverted.Status != race.StatusUpcoming || reverted.OpenedAt != nil || reverted.ClosesAt != nil {
		t.Fatalf("expected reverted round to be cleanly upcoming: %+v", reverted)
	}
	reopened := repo.races["sim-1"]
	if reopened.Status != race.StatusOpen {
		t.Fatalf("unexpected reopened status: got=%s", reopened.Status)
	}
	if reopened.ResultsRevealedAt != nil {
		t.Fatalf("reopened round must hide its results again")
	}
	if openRaceCount(repo) != 1 {
		t.Fatalf("round invariant violated: open_count=%d", openRaceCount(repo))
	}
}

func TestDigressFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// No open round at all.
	repo := newStubRaceRepo(simulationSeason(now.Add(24 * time.Hour))...)
	svc := newTestRoundService(repo, now)
	if _, err := svc.Digress(context.Background()); !errors.Is(err, ErrNoRoundOpen) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNoRoundOpen)
	}

	// Round one open: no prior completed round to fall back to.
	season := simulationSeason(now.Add(24 * time.Hour))
	season[0].Status = race.StatusOpen
	repo = newStubRaceRepo(season...)
	svc = newTestRoundService(repo, now)
	if _, err := svc.Digress(context.Background()); !errors.Is(err, ErrNoPreviousRound) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNoPreviousRound)
	}
	if repo.races["sim-1"].Status != race.StatusOpen {
		t.Fatalf("failed digress must not change state")
	}
}

func TestResetClearsSeason(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	season := simulationSeason(now.Add(-21 * 24 * time.Hour))
	revealed := now.Add(-24 * time.Hour)
	season[0].Status = race.StatusCompleted
	season[0].ResultsRevealedAt = &revealed
	season[1].Status = race.StatusOpen
	season[1].OpenedAt = &revealed
	repo := newStubRaceRepo(season...)
	svc := newTestRoundService(repo, now)

	out, err := svc.Reset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ResetCount != 2 {
		t.Fatalf("unexpected reset count: got=%d want=2", out.ResetCount)
	}
	for id, item := range repo.races {
		if item.Status != race.StatusUpcoming || item.OpenedAt != nil || item.ClosesAt != nil || item.ResultsRevealedAt != nil {
			t.Fatalf("race %s not fully reset: %+v", id, item)
		}
	}

	// Second reset is a no-op.
	again, err := svc.Reset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on repeat reset: %v", err)
	}
	if again.ResetCount != 0 {
		t.Fatalf("repeat reset must be a no-op: got=%d", again.ResetCount)
	}
}

func TestCurrentOpen(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	season := simulationSeason(now.Add(24 * time.Hour))
	season[1].Status = race.StatusOpen
	repo := newStubRaceRepo(season...)
	svc := newTestRoundService(repo, now)

	open, err := svc.CurrentOpen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.ID != "sim-2" {
		t.Fatalf("unexpected open race: got=%s want=sim-2", open.ID)
	}

	open.Status = race.StatusCompleted
	repo.races[open.ID] = open
	if _, err := svc.CurrentOpen(context.Background()); !errors.Is(err, ErrNoRoundOpen) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNoRoundOpen)
	}
}
