package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/usecase"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfile")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	item, err := h.achievementService.GetProfile(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, profileToDTO(item))
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAchievements")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	views, err := h.achievementService.ListAchievements(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]achievementDTO, 0, len(views))
	for _, view := range views {
		items = append(items, achievementToDTO(view))
	}

	writeSuccess(ctx, w, items)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.leaderboardService.Top(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard load failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, entries)
}

type profileDTO struct {
	UserID            string  `json:"user_id"`
	ScoredPredictions int     `json:"scored_predictions"`
	TotalPoints       int     `json:"total_points"`
	ExactPicks        int     `json:"exact_picks"`
	PerfectRaces      int     `json:"perfect_races"`
	Accuracy          float64 `json:"accuracy"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	LastRaceAt        string  `json:"last_race_at,omitempty"`
}

type achievementDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Target       int    `json:"target"`
	RewardPoints int    `json:"reward_points"`
	Progress     int    `json:"progress"`
	UnlockedAt   string `json:"unlocked_at,omitempty"`
}

func profileToDTO(item profile.Profile) profileDTO {
	return profileDTO{
		UserID:            item.UserID,
		ScoredPredictions: item.ScoredPredictions,
		TotalPoints:       item.TotalPoints,
		ExactPicks:        item.ExactPicks,
		PerfectRaces:      item.PerfectRaces,
		Accuracy:          item.Accuracy(),
		CurrentStreak:     item.CurrentStreak,
		LongestStreak:     item.LongestStreak,
		LastRaceAt:        formatTimePtr(item.LastRaceAt),
	}
}

func achievementToDTO(view usecase.AchievementView) achievementDTO {
	return achievementDTO{
		ID:           view.ID,
		Name:         view.Name,
		Description:  view.Description,
		Target:       view.Target,
		RewardPoints: view.RewardPoints,
		Progress:     view.Progress,
		UnlockedAt:   formatTimePtr(view.UnlockedAt),
	}
}
