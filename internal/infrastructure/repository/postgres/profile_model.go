package postgres

import (
	"time"

	"github.com/motosense/backend/internal/domain/profile"
)

type profileTableModel struct {
	UserID            string     `db:"user_id"`
	ScoredPredictions int        `db:"scored_predictions"`
	TotalPoints       int        `db:"total_points"`
	ExactPicks        int        `db:"exact_picks"`
	PerfectRaces      int        `db:"perfect_races"`
	CurrentStreak     int        `db:"current_streak"`
	LongestStreak     int        `db:"longest_streak"`
	LastRaceAt        *time.Time `db:"last_race_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

type achievementStateTableModel struct {
	UserID        string     `db:"user_id"`
	AchievementID string     `db:"achievement_id"`
	Progress      int        `db:"progress"`
	UnlockedAt    *time.Time `db:"unlocked_at"`
}

func profileFromRow(row profileTableModel) profile.Profile {
	return profile.Profile{
		UserID:            row.UserID,
		ScoredPredictions: row.ScoredPredictions,
		TotalPoints:       row.TotalPoints,
		ExactPicks:        row.ExactPicks,
		PerfectRaces:      row.PerfectRaces,
		CurrentStreak:     row.CurrentStreak,
		LongestStreak:     row.LongestStreak,
		LastRaceAt:        row.LastRaceAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func profileToRow(item profile.Profile) profileTableModel {
	return profileTableModel{
		UserID:            item.UserID,
		ScoredPredictions: item.ScoredPredictions,
		TotalPoints:       item.TotalPoints,
		ExactPicks:        item.ExactPicks,
		PerfectRaces:      item.PerfectRaces,
		CurrentStreak:     item.CurrentStreak,
		LongestStreak:     item.LongestStreak,
		LastRaceAt:        item.LastRaceAt,
		UpdatedAt:         item.UpdatedAt,
	}
}
