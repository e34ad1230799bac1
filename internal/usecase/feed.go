package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/rider"
)

// Fetcher pulls a raw payload from an upstream feed URL. The production
// implementation lives in external/feed; tests inject fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Feed record shapes. The upstream today serves fixture JSON; the shapes are
// the contract a future HTML-parsing fetcher must also produce.

type RaceScheduleItem struct {
	ID          string    `json:"id" validate:"required"`
	Series      string    `json:"series" validate:"required,oneof=motogp moto2 motocross"`
	Round       int       `json:"round" validate:"required,min=1"`
	Name        string    `json:"name" validate:"required"`
	Venue       string    `json:"venue"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Simulation  bool      `json:"simulation"`
}

type RiderDataItem struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Number     int    `json:"number" validate:"required,min=1,max=999"`
	Team       string `json:"team"`
	Series     string `json:"series" validate:"required,oneof=motogp moto2 motocross"`
	Status     string `json:"status" validate:"omitempty,oneof=active injured retired"`
	InjuryNote string `json:"injury_note"`
}

type RaceResultEntryItem struct {
	RiderID   string `json:"rider_id" validate:"required"`
	Position  int    `json:"position" validate:"required,min=1"`
	Status    string `json:"status" validate:"omitempty,oneof=finished dnf dns dsq"`
	Laps      int    `json:"laps" validate:"min=0"`
	Points    int    `json:"points" validate:"min=0"`
	TotalTime string `json:"total_time"`
	Gap       string `json:"gap"`
}

type RaceWithResults struct {
	RaceID  string                `json:"race_id" validate:"required"`
	Entries []RaceResultEntryItem `json:"entries" validate:"required,min=1,dive"`
}

// RecordValidator rejects malformed feed records before any write. An invalid
// record is skipped and logged by the caller, never fatal to the batch.
type RecordValidator struct {
	validate *validator.Validate
}

func NewRecordValidator() *RecordValidator {
	return &RecordValidator{validate: validator.New()}
}

func (v *RecordValidator) ValidateScheduleItem(item RaceScheduleItem) error {
	if err := v.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

func (v *RecordValidator) ValidateRiderItem(item RiderDataItem) error {
	if err := v.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

func (v *RecordValidator) ValidateResultItem(item RaceWithResults) error {
	if err := v.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	seenPositions := make(map[int]struct{}, len(item.Entries))
	seenRiders := make(map[string]struct{}, len(item.Entries))
	for _, entry := range item.Entries {
		if _, ok := seenPositions[entry.Position]; ok {
			return fmt.Errorf("%w: duplicate finishing position %d", ErrInvalidInput, entry.Position)
		}
		seenPositions[entry.Position] = struct{}{}
		if _, ok := seenRiders[entry.RiderID]; ok {
			return fmt.Errorf("%w: rider %s classified twice", ErrInvalidInput, entry.RiderID)
		}
		seenRiders[entry.RiderID] = struct{}{}
	}
	return nil
}

func scheduleItemToRace(item RaceScheduleItem) race.Race {
	return race.Race{
		ID:           strings.TrimSpace(item.ID),
		Series:       race.Series(strings.ToLower(strings.TrimSpace(item.Series))),
		Round:        item.Round,
		Name:         strings.TrimSpace(item.Name),
		Venue:        strings.TrimSpace(item.Venue),
		ScheduledAt:  item.ScheduledAt,
		Status:       race.StatusUpcoming,
		IsSimulation: item.Simulation,
	}
}

func riderItemToRider(item RiderDataItem) rider.Rider {
	return rider.Rider{
		ID:         strings.TrimSpace(item.ID),
		Name:       strings.TrimSpace(item.Name),
		Number:     item.Number,
		Team:       strings.TrimSpace(item.Team),
		Series:     strings.ToLower(strings.TrimSpace(item.Series)),
		Status:     rider.NormalizeStatus(item.Status),
		InjuryNote: strings.TrimSpace(item.InjuryNote),
	}
}

func resultItemToResult(item RaceWithResults, revealedAt time.Time) result.RaceResult {
	entries := make([]result.Entry, 0, len(item.Entries))
	for _, e := range item.Entries {
		entries = append(entries, result.Entry{
			RiderID:   strings.TrimSpace(e.RiderID),
			Position:  e.Position,
			Status:    result.NormalizeStatus(e.Status),
			Laps:      e.Laps,
			Points:    e.Points,
			TotalTime: strings.TrimSpace(e.TotalTime),
			Gap:       strings.TrimSpace(e.Gap),
		})
	}
	return result.RaceResult{
		RaceID:     strings.TrimSpace(item.RaceID),
		Entries:    entries,
		RevealedAt: revealedAt,
	}
}
