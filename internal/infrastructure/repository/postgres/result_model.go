package postgres

import (
	"time"

	"github.com/motosense/backend/internal/domain/result"
)

type raceResultTableModel struct {
	RaceID     string    `db:"race_id"`
	RevealedAt time.Time `db:"revealed_at"`
}

type resultEntryTableModel struct {
	RaceID    string `db:"race_id"`
	RiderID   string `db:"rider_id"`
	Position  int    `db:"position"`
	Status    string `db:"status"`
	Laps      int    `db:"laps"`
	Points    int    `db:"points"`
	TotalTime string `db:"total_time"`
	Gap       string `db:"gap"`
}

func entryFromRow(row resultEntryTableModel) result.Entry {
	return result.Entry{
		RiderID:   row.RiderID,
		Position:  row.Position,
		Status:    row.Status,
		Laps:      row.Laps,
		Points:    row.Points,
		TotalTime: row.TotalTime,
		Gap:       row.Gap,
	}
}

func entryToRow(raceID string, entry result.Entry) resultEntryTableModel {
	return resultEntryTableModel{
		RaceID:    raceID,
		RiderID:   entry.RiderID,
		Position:  entry.Position,
		Status:    entry.Status,
		Laps:      entry.Laps,
		Points:    entry.Points,
		TotalTime: entry.TotalTime,
		Gap:       entry.Gap,
	}
}
