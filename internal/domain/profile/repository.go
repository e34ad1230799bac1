package profile

import "context"

type Repository interface {
	GetProfile(ctx context.Context, userID string) (Profile, bool, error)
	UpsertProfile(ctx context.Context, item Profile) error
	// ListTopProfiles returns profiles ordered by total points descending,
	// user id ascending on ties.
	ListTopProfiles(ctx context.Context, limit int) ([]Profile, error)

	ListAchievementStates(ctx context.Context, userID string) ([]AchievementState, error)
	UpsertAchievementState(ctx context.Context, item AchievementState) error
}
