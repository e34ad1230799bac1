package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/motosense/backend/internal/domain/prediction"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/usecase"
)

type submitPredictionRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	RaceID     string   `json:"race_id" validate:"required"`
	Picks      []string `json:"picks" validate:"required,len=5,dive,required"`
	Confidence int      `json:"confidence" validate:"min=0,max=5"`
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	var req submitPredictionRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:     req.UserID,
		RaceID:     req.RaceID,
		Picks:      req.Picks,
		Confidence: req.Confidence,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction rejected", "user_id", req.UserID, "race_id", req.RaceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, predictionToDTO(item))
}

func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPrediction")
	defer span.End()

	raceID := strings.TrimSpace(r.PathValue("raceID"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user_id query parameter is required", usecase.ErrInvalidInput))
		return
	}

	item, err := h.predictionService.Get(ctx, userID, raceID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, predictionToDTO(item))
}

func (h *Handler) GetPredictionScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictionScore")
	defer span.End()

	raceID := strings.TrimSpace(r.PathValue("raceID"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user_id query parameter is required", usecase.ErrInvalidInput))
		return
	}

	item, err := h.predictionService.GetScore(ctx, userID, raceID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, scoreToDTO(item))
}

type predictionDTO struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	RaceID      string   `json:"race_id"`
	Picks       []string `json:"picks"`
	Confidence  int      `json:"confidence"`
	SubmittedAt string   `json:"submitted_at"`
}

type scoreDTO struct {
	PredictionID string `json:"prediction_id"`
	RaceID       string `json:"race_id"`
	UserID       string `json:"user_id"`
	ExactMatches int    `json:"exact_matches"`
	Top5Matches  int    `json:"top5_matches"`
	BonusPoints  int    `json:"bonus_points"`
	Points       int    `json:"points"`
	Perfect      bool   `json:"perfect"`
	ComputedAt   string `json:"computed_at"`
}

func predictionToDTO(item prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:          item.ID,
		UserID:      item.UserID,
		RaceID:      item.RaceID,
		Picks:       append([]string(nil), item.Picks...),
		Confidence:  item.Confidence,
		SubmittedAt: formatTime(item.SubmittedAt),
	}
}

func scoreToDTO(item scoring.Score) scoreDTO {
	return scoreDTO{
		PredictionID: item.PredictionID,
		RaceID:       item.RaceID,
		UserID:       item.UserID,
		ExactMatches: item.ExactMatches,
		Top5Matches:  item.Top5Matches,
		BonusPoints:  item.BonusPoints,
		Points:       item.Points,
		Perfect:      item.Perfect,
		ComputedAt:   formatTime(item.ComputedAt),
	}
}
