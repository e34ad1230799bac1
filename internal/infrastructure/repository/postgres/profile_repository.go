package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/profile"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query, args, err := qb.Select("*").From("profiles").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}

	return profileFromRow(row), true, nil
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, item profile.Profile) error {
	query, args, err := qb.InsertModel("profiles", profileToRow(item), `ON CONFLICT (user_id)
DO UPDATE SET
    scored_predictions = EXCLUDED.scored_predictions,
    total_points = EXCLUDED.total_points,
    exact_picks = EXCLUDED.exact_picks,
    perfect_races = EXCLUDED.perfect_races,
    current_streak = EXCLUDED.current_streak,
    longest_streak = EXCLUDED.longest_streak,
    last_race_at = EXCLUDED.last_race_at,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert profile query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) ListTopProfiles(ctx context.Context, limit int) ([]profile.Profile, error) {
	query, args, err := qb.Select("*").From("profiles").
		OrderBy("total_points DESC", "user_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list top profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list top profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, profileFromRow(row))
	}
	return out, nil
}

func (r *ProfileRepository) ListAchievementStates(ctx context.Context, userID string) ([]profile.AchievementState, error) {
	query, args, err := qb.Select("*").From("achievement_states").
		Where(qb.Eq("user_id", userID)).
		OrderBy("achievement_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list achievement states query: %w", err)
	}

	var rows []achievementStateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list achievement states: %w", err)
	}

	out := make([]profile.AchievementState, 0, len(rows))
	for _, row := range rows {
		out = append(out, profile.AchievementState{
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			Progress:      row.Progress,
			UnlockedAt:    row.UnlockedAt,
		})
	}
	return out, nil
}

func (r *ProfileRepository) UpsertAchievementState(ctx context.Context, item profile.AchievementState) error {
	query, args, err := qb.InsertModel("achievement_states", achievementStateTableModel{
		UserID:        item.UserID,
		AchievementID: item.AchievementID,
		Progress:      item.Progress,
		UnlockedAt:    item.UnlockedAt,
	}, `ON CONFLICT (user_id, achievement_id)
DO UPDATE SET
    progress = EXCLUDED.progress,
    unlocked_at = EXCLUDED.unlocked_at`)
	if err != nil {
		return fmt.Errorf("build upsert achievement state query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert achievement state: %w", err)
	}
	return nil
}
