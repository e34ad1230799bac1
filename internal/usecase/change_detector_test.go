package usecase

import (
	"testing"
	"time"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/rider"
)

func TestDetectRaceChangesReschedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := race.Race{ID: "race-1", Name: "Qatar GP", Venue: "Lusail", Round: 1, ScheduledAt: time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC)}
	next := old
	next.ScheduledAt = time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

	changes := DetectRaceChanges(old, next, now)
	if len(changes) != 1 {
		t.Fatalf("unexpected change count: got=%d want=1", len(changes))
	}
	if changes[0].Type != datasync.ChangeRescheduled {
		t.Fatalf("unexpected change type: got=%s want=%s", changes[0].Type, datasync.ChangeRescheduled)
	}
	if changes[0].Significance != datasync.SignificanceCritical {
		t.Fatalf("unexpected significance: got=%s want=%s", changes[0].Significance, datasync.SignificanceCritical)
	}
	if changes[0].Field != "scheduled_at" {
		t.Fatalf("unexpected field: got=%s", changes[0].Field)
	}
}

func TestDetectRaceChangesVenueAndName(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	old := race.Race{ID: "race-1", Name: "Qatar GP", Venue: "Lusail", Round: 1, ScheduledAt: now}
	next := old
	next.Venue = "Doha Street Circuit"
	next.Name = "Qatar Grand Prix"

	changes := DetectRaceChanges(old, next, now)
	if len(changes) != 2 {
		t.Fatalf("unexpected change count: got=%d want=2", len(changes))
	}

	bySignificance := map[string]datasync.Significance{}
	for _, change := range changes {
		bySignificance[change.Field] = change.Significance
	}
	if bySignificance["venue"] != datasync.SignificanceHigh {
		t.Fatalf("unexpected venue significance: got=%s", bySignificance["venue"])
	}
	if bySignificance["name"] != datasync.SignificanceMedium {
		t.Fatalf("unexpected name significance: got=%s", bySignificance["name"])
	}
}

func TestDetectRaceChangesNoDiff(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	item := race.Race{ID: "race-1", Name: "Qatar GP", Venue: "Lusail", Round: 1, ScheduledAt: now}

	if changes := DetectRaceChanges(item, item, now); len(changes) != 0 {
		t.Fatalf("unexpected changes for identical races: got=%d", len(changes))
	}
}

func TestDetectRiderChanges(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	old := rider.Rider{ID: "rider-93", Name: "M. Marquez", Number: 93, Team: "Ducati", Status: rider.StatusActive}
	next := old
	next.Status = rider.StatusInjured
	next.Team = "Gresini"
	next.Number = 73
	next.Name = "Marc Marquez"

	changes := DetectRiderChanges(old, next, now)
	if len(changes) != 4 {
		t.Fatalf("unexpected change count: got=%d want=4", len(changes))
	}

	want := map[string]datasync.Significance{
		"status": datasync.SignificanceCritical,
		"team":   datasync.SignificanceHigh,
		"number": datasync.SignificanceMedium,
		"name":   datasync.SignificanceLow,
	}
	for _, change := range changes {
		if change.Significance != want[change.Field] {
			t.Fatalf("unexpected significance for %s: got=%s want=%s", change.Field, change.Significance, want[change.Field])
		}
		if change.Type != datasync.ChangeUpdated {
			t.Fatalf("unexpected change type for %s: got=%s", change.Field, change.Type)
		}
	}
}

func TestDetectResultChangesStatusIsCritical(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	old := result.RaceResult{RaceID: "race-1", Entries: []result.Entry{
		{RiderID: "rider-1", Position: 1, Status: result.StatusFinished, Points: 25},
	}}
	next := result.RaceResult{RaceID: "race-1", Entries: []result.Entry{
		{RiderID: "rider-1", Position: 1, Status: result.StatusDSQ, Points: 25},
	}}

	changes := DetectResultChanges(old, next, now)
	if len(changes) != 1 {
		t.Fatalf("unexpected change count: got=%d want=1", len(changes))
	}
	if changes[0].Field != "status" || changes[0].Significance != datasync.SignificanceCritical {
		t.Fatalf("unexpected change: field=%s significance=%s", changes[0].Field, changes[0].Significance)
	}
	if changes[0].EntityID != "race-1:rider-1" {
		t.Fatalf("unexpected entity id: got=%s", changes[0].EntityID)
	}
}

func TestDetectResultChangesPositionSwapAndRemoval(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	old := result.RaceResult{RaceID: "race-1", Entries: []result.Entry{
		{RiderID: "rider-1", Position: 1, Status: result.StatusFinished, Points: 25},
		{RiderID: "rider-2", Position: 2, Status: result.StatusFinished, Points: 20},
	}}
	next := result.RaceResult{RaceID: "race-1", Entries: []result.Entry{
		{RiderID: "rider-1", Position: 2, Status: result.StatusFinished, Points: 20},
		{RiderID: "rider-3", Position: 1, Status: result.StatusFinished, Points: 25},
	}}

	changes := DetectResultChanges(old, next, now)

	var position, points, created, deleted int
	for _, change := range changes {
		switch {
		case change.Type == datasync.ChangeCreated:
			created++
		case change.Type == datasync.ChangeDeleted:
			deleted++
		case change.Field == "position":
			position++
			if change.Significance != datasync.SignificanceHigh {
				t.Fatalf("unexpected position significance: got=%s", change.Significance)
			}
		case change.Field == "points":
			points++
		}
	}
	if position != 1 || points != 1 || created != 1 || deleted != 1 {
		t.Fatalf("unexpected change mix: position=%d points=%d created=%d deleted=%d", position, points, created, deleted)
	}
}
