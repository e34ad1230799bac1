package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motosense/backend/internal/domain/profile"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
	states   map[string]profile.AchievementState
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[string]profile.Profile),
		states:   make(map[string]profile.AchievementState),
	}
}

func (r *ProfileRepository) GetProfile(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.profiles[userID]
	if !ok {
		return profile.Profile{}, false, nil
	}
	return item, true, nil
}

func (r *ProfileRepository) UpsertProfile(_ context.Context, item profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[item.UserID] = item
	return nil
}

func (r *ProfileRepository) ListTopProfiles(_ context.Context, limit int) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Profile, 0, len(r.profiles))
	for _, item := range r.profiles {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProfileRepository) ListAchievementStates(_ context.Context, userID string) ([]profile.AchievementState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.AchievementState, 0)
	for _, item := range r.states {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievementID < out[j].AchievementID })
	return out, nil
}

func (r *ProfileRepository) UpsertAchievementState(_ context.Context, item profile.AchievementState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[item.UserID+"|"+item.AchievementID] = item
	return nil
}
