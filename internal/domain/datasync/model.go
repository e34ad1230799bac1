package datasync

import (
	"strings"
	"time"
)

type SourceType string

const (
	SourceTypeSchedule SourceType = "schedule"
	SourceTypeRiders   SourceType = "riders"
	SourceTypeResults  SourceType = "results"
)

// Source is one configured upstream feed.
type Source struct {
	ID           string
	Name         string
	Type         SourceType
	URL          string
	Active       bool
	MaxRequests  int
	RateWindow   time.Duration
	LastSyncedAt *time.Time
}

// Snapshot records the last-seen whole-payload hash for a (source, url) pair.
// Byte-identical fetches short-circuit the sync without touching entity tables.
type Snapshot struct {
	SourceID  string
	URL       string
	Hash      string
	FetchedAt time.Time
}

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Run is one sync execution, logged start-to-finish.
type Run struct {
	ID              string
	SourceID        string
	Type            SourceType
	StartedAt       time.Time
	FinishedAt      *time.Time
	RecordsFetched  int
	RecordsInserted int
	RecordsUpdated  int
	RecordsDeleted  int
	RecordsSkipped  int
	Status          string
	Error           string
}

type ChangeType string

const (
	ChangeCreated     ChangeType = "created"
	ChangeUpdated     ChangeType = "updated"
	ChangeDeleted     ChangeType = "deleted"
	ChangeRescheduled ChangeType = "rescheduled"
)

type Significance string

const (
	SignificanceCritical Significance = "critical"
	SignificanceHigh     Significance = "high"
	SignificanceMedium   Significance = "medium"
	SignificanceLow      Significance = "low"
)

// Change is one field-level difference detected during sync. Append-only.
type Change struct {
	EntityType   string
	EntityID     string
	Type         ChangeType
	Field        string
	OldValue     string
	NewValue     string
	Significance Significance
	DetectedAt   time.Time
}

func IsValidSourceType(value string) bool {
	switch SourceType(strings.ToLower(strings.TrimSpace(value))) {
	case SourceTypeSchedule, SourceTypeRiders, SourceTypeResults:
		return true
	default:
		return false
	}
}
