package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/platform/logging"
)

type RoundConfig struct {
	// AutoProgressWindow is how long an opened round stays open before the
	// closes_at deadline passes.
	AutoProgressWindow time.Duration
}

// RoundService drives the demo season state machine over simulation races.
// Transitions are admin-triggered and infrequent; each one re-reads the
// current state immediately before mutating it so the single-open-race
// invariant holds without a distributed lock.
type RoundService struct {
	raceRepo race.Repository
	cfg      RoundConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewRoundService(raceRepo race.Repository, cfg RoundConfig, logger *logging.Logger) *RoundService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.AutoProgressWindow <= 0 {
		cfg.AutoProgressWindow = 48 * time.Hour
	}

	return &RoundService{
		raceRepo: raceRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

type RoundTransition struct {
	ClosedRaceID   string `json:"closed_race_id,omitempty"`
	OpenedRaceID   string `json:"opened_race_id,omitempty"`
	ReopenedRaceID string `json:"reopened_race_id,omitempty"`
	ResetCount     int    `json:"reset_count,omitempty"`
}

// Progress closes the currently open round (if any) and opens the next
// upcoming one by date. When the open round is the last of the season it is
// still closed before NoMoreRounds is reported.
func (s *RoundService) Progress(ctx context.Context) (RoundTransition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Progress")
	defer span.End()

	races, err := s.loadSeason(ctx)
	if err != nil {
		return RoundTransition{}, err
	}

	now := s.now().UTC()
	var out RoundTransition

	open, haveOpen := findOpenRace(races)
	if haveOpen {
		open.Status = race.StatusCompleted
		open.ClosesAt = nil
		revealedAt := now
		open.ResultsRevealedAt = &revealedAt
		if err := s.raceRepo.Update(ctx, open); err != nil {
			return RoundTransition{}, fmt.Errorf("close race id=%s: %w", open.ID, err)
		}
		out.ClosedRaceID = open.ID
	}

	next, haveNext := findNextUpcoming(races, open, haveOpen)
	if !haveNext {
		if haveOpen {
			s.logger.InfoContext(ctx, "season finished, last round closed", "closed_race_id", out.ClosedRaceID)
			return out, fmt.Errorf("%w: closed race id=%s was the final round", ErrNoMoreRounds, out.ClosedRaceID)
		}
		return RoundTransition{}, ErrNoMoreRounds
	}

	openedAt := now
	closesAt := now.Add(s.cfg.AutoProgressWindow)
	next.Status = race.StatusOpen
	next.OpenedAt = &openedAt
	next.ClosesAt = &closesAt
	next.ResultsRevealedAt = nil
	if err := s.raceRepo.Update(ctx, next); err != nil {
		return RoundTransition{}, fmt.Errorf("open race id=%s: %w", next.ID, err)
	}
	out.OpenedRaceID = next.ID

	s.logger.InfoContext(ctx, "round progressed", "closed_race_id", out.ClosedRaceID, "opened_race_id", out.OpenedRaceID)
	return out, nil
}

// Digress reverts the open round to upcoming and reopens the most recent
// completed round before it, hiding that round's results again.
func (s *RoundService) Digress(ctx context.Context) (RoundTransition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Digress")
	defer span.End()

	races, err := s.loadSeason(ctx)
	if err != nil {
		return RoundTransition{}, err
	}

	open, haveOpen := findOpenRace(races)
	if !haveOpen {
		return RoundTransition{}, ErrNoRoundOpen
	}

	previous, havePrevious := findPreviousCompleted(races, open)
	if !havePrevious {
		return RoundTransition{}, fmt.Errorf("%w: open race id=%s is the first round", ErrNoPreviousRound, open.ID)
	}

	open.Status = race.StatusUpcoming
	open.OpenedAt = nil
	open.ClosesAt = nil
	if err := s.raceRepo.Update(ctx, open); err != nil {
		return RoundTransition{}, fmt.Errorf("revert race id=%s: %w", open.ID, err)
	}

	now := s.now().UTC()
	closesAt := now.Add(s.cfg.AutoProgressWindow)
	previous.Status = race.StatusOpen
	previous.OpenedAt = &now
	previous.ClosesAt = &closesAt
	previous.ResultsRevealedAt = nil
	if err := s.raceRepo.Update(ctx, previous); err != nil {
		return RoundTransition{}, fmt.Errorf("reopen race id=%s: %w", previous.ID, err)
	}

	s.logger.InfoContext(ctx, "round digressed", "reverted_race_id", open.ID, "reopened_race_id", previous.ID)
	return RoundTransition{ReopenedRaceID: previous.ID}, nil
}

// Reset puts every simulation race back to upcoming for a full season
// replay. Already-reset races are left alone.
func (s *RoundService) Reset(ctx context.Context) (RoundTransition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Reset")
	defer span.End()

	races, err := s.loadSeason(ctx)
	if err != nil {
		return RoundTransition{}, err
	}

	var out RoundTransition
	for _, item := range races {
		if item.Status == race.StatusUpcoming && item.OpenedAt == nil && item.ClosesAt == nil && item.ResultsRevealedAt == nil {
			continue
		}
		item.Status = race.StatusUpcoming
		item.OpenedAt = nil
		item.ClosesAt = nil
		item.ResultsRevealedAt = nil
		if err := s.raceRepo.Update(ctx, item); err != nil {
			return RoundTransition{}, fmt.Errorf("reset race id=%s: %w", item.ID, err)
		}
		out.ResetCount++
	}

	s.logger.InfoContext(ctx, "season reset", "reset_count", out.ResetCount)
	return out, nil
}

// CurrentOpen returns the single open simulation race, if any.
func (s *RoundService) CurrentOpen(ctx context.Context) (race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.CurrentOpen")
	defer span.End()

	races, err := s.loadSeason(ctx)
	if err != nil {
		return race.Race{}, err
	}

	open, haveOpen := findOpenRace(races)
	if !haveOpen {
		return race.Race{}, ErrNoRoundOpen
	}
	return open, nil
}

func (s *RoundService) loadSeason(ctx context.Context) ([]race.Race, error) {
	races, err := s.raceRepo.ListSimulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("list simulation races: %w", err)
	}
	sort.SliceStable(races, func(i, j int) bool {
		if !races[i].ScheduledAt.Equal(races[j].ScheduledAt) {
			return races[i].ScheduledAt.Before(races[j].ScheduledAt)
		}
		return races[i].ID < races[j].ID
	})
	return races, nil
}

func findOpenRace(races []race.Race) (race.Race, bool) {
	for _, item := range races {
		if item.Status == race.StatusOpen {
			return item, true
		}
	}
	return race.Race{}, false
}

func findNextUpcoming(races []race.Race, closed race.Race, hadOpen bool) (race.Race, bool) {
	for _, item := range races {
		if item.Status != race.StatusUpcoming {
			continue
		}
		if hadOpen && !item.ScheduledAt.After(closed.ScheduledAt) {
			continue
		}
		return item, true
	}
	return race.Race{}, false
}

func findPreviousCompleted(races []race.Race, open race.Race) (race.Race, bool) {
	var out race.Race
	var found bool
	for _, item := range races {
		if item.Status != race.StatusCompleted {
			continue
		}
		if !item.ScheduledAt.Before(open.ScheduledAt) {
			continue
		}
		if !found || item.ScheduledAt.After(out.ScheduledAt) {
			out = item
			found = true
		}
	}
	return out, found
}
