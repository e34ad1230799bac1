package race

import (
	"strings"
	"time"
)

type Series string

const (
	SeriesMotoGP    Series = "motogp"
	SeriesMoto2     Series = "moto2"
	SeriesMotocross Series = "motocross"
)

const (
	StatusUpcoming  = "upcoming"
	StatusOpen      = "open"
	StatusCompleted = "completed"
)

// Race represents one round of a series' season calendar.
type Race struct {
	ID           string
	Series       Series
	Round        int
	Name         string
	Venue        string
	ScheduledAt  time.Time
	Status       string
	IsSimulation bool
	HasResults   bool

	OpenedAt          *time.Time
	ClosesAt          *time.Time
	ResultsRevealedAt *time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}

func IsValidSeries(value string) bool {
	switch Series(strings.ToLower(strings.TrimSpace(value))) {
	case SeriesMotoGP, SeriesMoto2, SeriesMotocross:
		return true
	default:
		return false
	}
}
