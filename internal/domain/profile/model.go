package profile

import "time"

// Profile carries a user's aggregate prediction stats. Mutated incrementally
// after each scored prediction.
type Profile struct {
	UserID            string
	ScoredPredictions int
	TotalPoints       int
	ExactPicks        int
	PerfectRaces      int
	CurrentStreak     int
	LongestStreak     int
	LastRaceAt        *time.Time
	UpdatedAt         time.Time
}

// Accuracy is the share of individual picks that landed exactly, in percent.
func (p Profile) Accuracy() float64 {
	if p.ScoredPredictions == 0 {
		return 0
	}
	return float64(p.ExactPicks) / float64(p.ScoredPredictions*5) * 100
}

type TriggerType string

const (
	TriggerFirstPrediction TriggerType = "first_prediction"
	TriggerPredictionCount TriggerType = "prediction_count"
	TriggerAccuracy        TriggerType = "accuracy"
	TriggerStreak          TriggerType = "streak"
	TriggerPerfectRace     TriggerType = "perfect_race"
)

// AchievementDef is one entry of the fixed achievement catalog.
type AchievementDef struct {
	ID           string
	Name         string
	Description  string
	Trigger      TriggerType
	Target       int
	RewardPoints int
}

// AchievementState is a user's progress against one definition.
type AchievementState struct {
	UserID        string
	AchievementID string
	Progress      int
	UnlockedAt    *time.Time
}

// Catalog is the fixed set of unlockable achievements. Order matters only for
// presentation; unlock checks are independent.
func Catalog() []AchievementDef {
	return []AchievementDef{
		{ID: "first_prediction", Name: "Lights Out", Description: "Submit your first prediction", Trigger: TriggerFirstPrediction, Target: 1, RewardPoints: 10},
		{ID: "five_predictions", Name: "Regular", Description: "Have 5 predictions scored", Trigger: TriggerPredictionCount, Target: 5, RewardPoints: 20},
		{ID: "twentyfive_predictions", Name: "Season Veteran", Description: "Have 25 predictions scored", Trigger: TriggerPredictionCount, Target: 25, RewardPoints: 50},
		{ID: "streak_3", Name: "Hat Trick", Description: "Keep a 3-race prediction streak", Trigger: TriggerStreak, Target: 3, RewardPoints: 15},
		{ID: "streak_10", Name: "Iron Run", Description: "Keep a 10-race prediction streak", Trigger: TriggerStreak, Target: 10, RewardPoints: 60},
		{ID: "sharpshooter", Name: "Sharpshooter", Description: "Reach 50% exact-pick accuracy", Trigger: TriggerAccuracy, Target: 50, RewardPoints: 40},
		{ID: "perfect_prediction", Name: "Crystal Ball", Description: "Call an entire top five in order", Trigger: TriggerPerfectRace, Target: 1, RewardPoints: 100},
	}
}
