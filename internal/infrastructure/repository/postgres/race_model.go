package postgres

import (
	"time"

	"github.com/motosense/backend/internal/domain/race"
)

type raceTableModel struct {
	ID                string     `db:"id"`
	Series            string     `db:"series"`
	Round             int        `db:"round"`
	Name              string     `db:"name"`
	Venue             string     `db:"venue"`
	ScheduledAt       time.Time  `db:"scheduled_at"`
	Status            string     `db:"status"`
	IsSimulation      bool       `db:"is_simulation"`
	HasResults        bool       `db:"has_results"`
	OpenedAt          *time.Time `db:"opened_at"`
	ClosesAt          *time.Time `db:"closes_at"`
	ResultsRevealedAt *time.Time `db:"results_revealed_at"`
}

func raceFromRow(row raceTableModel) race.Race {
	return race.Race{
		ID:                row.ID,
		Series:            race.Series(row.Series),
		Round:             row.Round,
		Name:              row.Name,
		Venue:             row.Venue,
		ScheduledAt:       row.ScheduledAt,
		Status:            row.Status,
		IsSimulation:      row.IsSimulation,
		HasResults:        row.HasResults,
		OpenedAt:          row.OpenedAt,
		ClosesAt:          row.ClosesAt,
		ResultsRevealedAt: row.ResultsRevealedAt,
	}
}

func raceToRow(item race.Race) raceTableModel {
	return raceTableModel{
		ID:                item.ID,
		Series:            string(item.Series),
		Round:             item.Round,
		Name:              item.Name,
		Venue:             item.Venue,
		ScheduledAt:       item.ScheduledAt,
		Status:            item.Status,
		IsSimulation:      item.IsSimulation,
		HasResults:        item.HasResults,
		OpenedAt:          item.OpenedAt,
		ClosesAt:          item.ClosesAt,
		ResultsRevealedAt: item.ResultsRevealedAt,
	}
}
