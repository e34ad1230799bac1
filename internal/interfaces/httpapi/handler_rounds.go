package httpapi

import (
	"net/http"

	"github.com/motosense/backend/internal/usecase"
)

func (h *Handler) ProgressRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProgressRound")
	defer span.End()

	transition, err := h.roundService.Progress(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "round progress rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, roundTransitionToDTO(transition))
}

func (h *Handler) DigressRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DigressRound")
	defer span.End()

	transition, err := h.roundService.Digress(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "round digress rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, roundTransitionToDTO(transition))
}

func (h *Handler) ResetRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetRounds")
	defer span.End()

	transition, err := h.roundService.Reset(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "round reset failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, roundTransitionToDTO(transition))
}

type roundTransitionDTO struct {
	ClosedRaceID   string `json:"closed_race_id,omitempty"`
	OpenedRaceID   string `json:"opened_race_id,omitempty"`
	ReopenedRaceID string `json:"reopened_race_id,omitempty"`
	ResetCount     int    `json:"reset_count,omitempty"`
}

func roundTransitionToDTO(t usecase.RoundTransition) roundTransitionDTO {
	return roundTransitionDTO{
		ClosedRaceID:   t.ClosedRaceID,
		OpenedRaceID:   t.OpenedRaceID,
		ReopenedRaceID: t.ReopenedRaceID,
		ResetCount:     t.ResetCount,
	}
}
