package usecase

import (
	"strconv"
	"time"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/rider"
)

// Field-level change detection, one comparator per entity kind. Each kind
// watches a fixed field set with a fixed field→significance mapping. No
// change means an empty slice, not an error.

func DetectRaceChanges(old race.Race, next race.Race, detectedAt time.Time) []datasync.Change {
	changes := make([]datasync.Change, 0, 4)

	if !old.ScheduledAt.Equal(next.ScheduledAt) {
		changes = append(changes, datasync.Change{
			EntityType:   "race",
			EntityID:     next.ID,
			Type:         datasync.ChangeRescheduled,
			Field:        "scheduled_at",
			OldValue:     old.ScheduledAt.UTC().Format(time.RFC3339),
			NewValue:     next.ScheduledAt.UTC().Format(time.RFC3339),
			Significance: datasync.SignificanceCritical,
			DetectedAt:   detectedAt,
		})
	}
	if old.Venue != next.Venue {
		changes = append(changes, fieldChange("race", next.ID, "venue", old.Venue, next.Venue, datasync.SignificanceHigh, detectedAt))
	}
	if old.Name != next.Name {
		changes = append(changes, fieldChange("race", next.ID, "name", old.Name, next.Name, datasync.SignificanceMedium, detectedAt))
	}
	if old.Round != next.Round {
		changes = append(changes, fieldChange("race", next.ID, "round", strconv.Itoa(old.Round), strconv.Itoa(next.Round), datasync.SignificanceMedium, detectedAt))
	}

	return changes
}

func DetectRiderChanges(old rider.Rider, next rider.Rider, detectedAt time.Time) []datasync.Change {
	changes := make([]datasync.Change, 0, 4)

	if old.Status != next.Status {
		changes = append(changes, fieldChange("rider", next.ID, "status", old.Status, next.Status, datasync.SignificanceCritical, detectedAt))
	}
	if old.Team != next.Team {
		changes = append(changes, fieldChange("rider", next.ID, "team", old.Team, next.Team, datasync.SignificanceHigh, detectedAt))
	}
	if old.Number != next.Number {
		changes = append(changes, fieldChange("rider", next.ID, "number", strconv.Itoa(old.Number), strconv.Itoa(next.Number), datasync.SignificanceMedium, detectedAt))
	}
	if old.Name != next.Name {
		changes = append(changes, fieldChange("rider", next.ID, "name", old.Name, next.Name, datasync.SignificanceLow, detectedAt))
	}

	return changes
}

// DetectResultChanges compares per-rider classification rows. Entries are
// matched by rider id; a rider present on only one side is reported as a
// created or deleted row.
func DetectResultChanges(old result.RaceResult, next result.RaceResult, detectedAt time.Time) []datasync.Change {
	changes := make([]datasync.Change, 0, 4)

	oldByRider := make(map[string]result.Entry, len(old.Entries))
	for _, entry := range old.Entries {
		oldByRider[entry.RiderID] = entry
	}

	for _, entry := range next.Entries {
		entityID := next.RaceID + ":" + entry.RiderID
		prev, ok := oldByRider[entry.RiderID]
		if !ok {
			changes = append(changes, datasync.Change{
				EntityType:   "result",
				EntityID:     entityID,
				Type:         datasync.ChangeCreated,
				Significance: datasync.SignificanceHigh,
				DetectedAt:   detectedAt,
			})
			continue
		}
		delete(oldByRider, entry.RiderID)

		if prev.Status != entry.Status {
			changes = append(changes, fieldChange("result", entityID, "status", prev.Status, entry.Status, datasync.SignificanceCritical, detectedAt))
		}
		if prev.Position != entry.Position {
			changes = append(changes, fieldChange("result", entityID, "position", strconv.Itoa(prev.Position), strconv.Itoa(entry.Position), datasync.SignificanceHigh, detectedAt))
		}
		if prev.Points != entry.Points {
			changes = append(changes, fieldChange("result", entityID, "points", strconv.Itoa(prev.Points), strconv.Itoa(entry.Points), datasync.SignificanceHigh, detectedAt))
		}
		if prev.TotalTime != entry.TotalTime {
			changes = append(changes, fieldChange("result", entityID, "total_time", prev.TotalTime, entry.TotalTime, datasync.SignificanceLow, detectedAt))
		}
	}

	for riderID := range oldByRider {
		changes = append(changes, datasync.Change{
			EntityType:   "result",
			EntityID:     next.RaceID + ":" + riderID,
			Type:         datasync.ChangeDeleted,
			Significance: datasync.SignificanceHigh,
			DetectedAt:   detectedAt,
		})
	}

	return changes
}

func createdChange(entityType, entityID string, detectedAt time.Time) datasync.Change {
	return datasync.Change{
		EntityType:   entityType,
		EntityID:     entityID,
		Type:         datasync.ChangeCreated,
		Significance: datasync.SignificanceMedium,
		DetectedAt:   detectedAt,
	}
}

func fieldChange(entityType, entityID, field, oldValue, newValue string, significance datasync.Significance, detectedAt time.Time) datasync.Change {
	return datasync.Change{
		EntityType:   entityType,
		EntityID:     entityID,
		Type:         datasync.ChangeUpdated,
		Field:        field,
		OldValue:     oldValue,
		NewValue:     newValue,
		Significance: significance,
		DetectedAt:   detectedAt,
	}
}
