package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/motosense/backend/internal/domain/datasync"
)

func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSync")
	defer span.End()

	sourceID := strings.TrimSpace(r.PathValue("sourceID"))
	outcome, err := h.syncService.Sync(ctx, sourceID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync rejected", "source_id", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, outcome)
}

func (h *Handler) RunSyncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncAll")
	defer span.End()

	outcome, err := h.syncService.SyncAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync all failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, outcome)
}

func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSyncRuns")
	defer span.End()

	sourceID := strings.TrimSpace(r.PathValue("sourceID"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.syncService.ListRuns(ctx, sourceID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list sync runs failed", "source_id", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]syncRunDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, syncRunToDTO(run))
	}

	writeSuccess(ctx, w, items)
}

func (h *Handler) ListEntityChanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEntityChanges")
	defer span.End()

	entityType := strings.TrimSpace(r.PathValue("entityType"))
	entityID := strings.TrimSpace(r.PathValue("entityID"))

	changes, err := h.syncService.ListChanges(ctx, entityType, entityID)
	if err != nil {
		h.logger.WarnContext(ctx, "list entity changes failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]changeDTO, 0, len(changes))
	for _, change := range changes {
		items = append(items, changeToDTO(change))
	}

	writeSuccess(ctx, w, items)
}

type changeDTO struct {
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Type         string `json:"type"`
	Field        string `json:"field,omitempty"`
	OldValue     string `json:"old_value,omitempty"`
	NewValue     string `json:"new_value,omitempty"`
	Significance string `json:"significance"`
	DetectedAt   string `json:"detected_at"`
}

func changeToDTO(change datasync.Change) changeDTO {
	return changeDTO{
		EntityType:   change.EntityType,
		EntityID:     change.EntityID,
		Type:         string(change.Type),
		Field:        change.Field,
		OldValue:     change.OldValue,
		NewValue:     change.NewValue,
		Significance: string(change.Significance),
		DetectedAt:   formatTime(change.DetectedAt),
	}
}

type syncRunDTO struct {
	ID              string `json:"id"`
	SourceID        string `json:"source_id"`
	Type            string `json:"type"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at,omitempty"`
	RecordsFetched  int    `json:"records_fetched"`
	RecordsInserted int    `json:"records_inserted"`
	RecordsUpdated  int    `json:"records_updated"`
	RecordsDeleted  int    `json:"records_deleted"`
	RecordsSkipped  int    `json:"records_skipped"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

func syncRunToDTO(run datasync.Run) syncRunDTO {
	return syncRunDTO{
		ID:              run.ID,
		SourceID:        run.SourceID,
		Type:            string(run.Type),
		StartedAt:       formatTime(run.StartedAt),
		FinishedAt:      formatTimePtr(run.FinishedAt),
		RecordsFetched:  run.RecordsFetched,
		RecordsInserted: run.RecordsInserted,
		RecordsUpdated:  run.RecordsUpdated,
		RecordsDeleted:  run.RecordsDeleted,
		RecordsSkipped:  run.RecordsSkipped,
		Status:          run.Status,
		Error:           run.Error,
	}
}
