package httpapi

import (
	"net/http"
	"strings"

	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/rider"
)

func (h *Handler) ListRaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRaces")
	defer span.End()

	races, err := h.catalogService.ListRaces(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list races failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]raceDTO, 0, len(races))
	for _, item := range races {
		items = append(items, raceToDTO(item))
	}

	writeSuccess(ctx, w, items)
}

func (h *Handler) GetOpenRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOpenRace")
	defer span.End()

	item, err := h.roundService.CurrentOpen(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, raceToDTO(item))
}

func (h *Handler) ListRiders(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRiders")
	defer span.End()

	series := strings.TrimSpace(r.URL.Query().Get("series"))
	riders, err := h.catalogService.ListRiders(ctx, series)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]riderDTO, 0, len(riders))
	for _, item := range riders {
		items = append(items, riderToDTO(item))
	}

	writeSuccess(ctx, w, items)
}

type raceDTO struct {
	ID                string `json:"id"`
	Series            string `json:"series"`
	Round             int    `json:"round"`
	Name              string `json:"name"`
	Venue             string `json:"venue"`
	ScheduledAt       string `json:"scheduled_at"`
	Status            string `json:"status"`
	IsSimulation      bool   `json:"is_simulation"`
	HasResults        bool   `json:"has_results"`
	OpenedAt          string `json:"opened_at,omitempty"`
	ClosesAt          string `json:"closes_at,omitempty"`
	ResultsRevealedAt string `json:"results_revealed_at,omitempty"`
}

type riderDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Number     int    `json:"number"`
	Team       string `json:"team"`
	Series     string `json:"series"`
	Status     string `json:"status"`
	InjuryNote string `json:"injury_note,omitempty"`
}

func raceToDTO(item race.Race) raceDTO {
	return raceDTO{
		ID:                item.ID,
		Series:            string(item.Series),
		Round:             item.Round,
		Name:              item.Name,
		Venue:             item.Venue,
		ScheduledAt:       formatTime(item.ScheduledAt),
		Status:            item.Status,
		IsSimulation:      item.IsSimulation,
		HasResults:        item.HasResults,
		OpenedAt:          formatTimePtr(item.OpenedAt),
		ClosesAt:          formatTimePtr(item.ClosesAt),
		ResultsRevealedAt: formatTimePtr(item.ResultsRevealedAt),
	}
}

func riderToDTO(item rider.Rider) riderDTO {
	return riderDTO{
		ID:         item.ID,
		Name:       item.Name,
		Number:     item.Number,
		Team:       item.Team,
		Series:     item.Series,
		Status:     item.Status,
		InjuryNote: item.InjuryNote,
	}
}
