package postgres

import (
	"time"

	"github.com/motosense/backend/internal/domain/scoring"
)

type scoreTableModel struct {
	PredictionID string    `db:"prediction_id"`
	RaceID       string    `db:"race_id"`
	UserID       string    `db:"user_id"`
	ExactMatches int       `db:"exact_matches"`
	Top5Matches  int       `db:"top5_matches"`
	Points       int       `db:"points"`
	BonusPoints  int       `db:"bonus_points"`
	Perfect      bool      `db:"perfect"`
	ComputedAt   time.Time `db:"computed_at"`
}

func scoreFromRow(row scoreTableModel) scoring.Score {
	return scoring.Score{
		PredictionID: row.PredictionID,
		RaceID:       row.RaceID,
		UserID:       row.UserID,
		ExactMatches: row.ExactMatches,
		Top5Matches:  row.Top5Matches,
		Points:       row.Points,
		BonusPoints:  row.BonusPoints,
		Perfect:      row.Perfect,
		ComputedAt:   row.ComputedAt,
	}
}

func scoreToRow(item scoring.Score) scoreTableModel {
	return scoreTableModel{
		PredictionID: item.PredictionID,
		RaceID:       item.RaceID,
		UserID:       item.UserID,
		ExactMatches: item.ExactMatches,
		Top5Matches:  item.Top5Matches,
		Points:       item.Points,
		BonusPoints:  item.BonusPoints,
		Perfect:      item.Perfect,
		ComputedAt:   item.ComputedAt,
	}
}
