package postgres

import (
	"time"

	"github.com/motosense/backend/internal/domain/datasync"
)

type sourceTableModel struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	Type           string     `db:"type"`
	URL            string     `db:"url"`
	Active         bool       `db:"active"`
	MaxRequests    int        `db:"max_requests"`
	RateWindowSecs int64      `db:"rate_window_secs"`
	LastSyncedAt   *time.Time `db:"last_synced_at"`
}

type snapshotTableModel struct {
	SourceID  string    `db:"source_id"`
	URL       string    `db:"url"`
	Hash      string    `db:"hash"`
	FetchedAt time.Time `db:"fetched_at"`
}

type runTableModel struct {
	ID              string     `db:"id"`
	SourceID        string     `db:"source_id"`
	Type            string     `db:"type"`
	StartedAt       time.Time  `db:"started_at"`
	FinishedAt      *time.Time `db:"finished_at"`
	RecordsFetched  int        `db:"records_fetched"`
	RecordsInserted int        `db:"records_inserted"`
	RecordsUpdated  int        `db:"records_updated"`
	RecordsDeleted  int        `db:"records_deleted"`
	RecordsSkipped  int        `db:"records_skipped"`
	Status          string     `db:"status"`
	Error           string     `db:"error"`
}

type changeTableModel struct {
	EntityType   string    `db:"entity_type"`
	EntityID     string    `db:"entity_id"`
	ChangeType   string    `db:"change_type"`
	Field        string    `db:"field"`
	OldValue     string    `db:"old_value"`
	NewValue     string    `db:"new_value"`
	Significance string    `db:"significance"`
	DetectedAt   time.Time `db:"detected_at"`
}

func sourceFromRow(row sourceTableModel) datasync.Source {
	return datasync.Source{
		ID:           row.ID,
		Name:         row.Name,
		Type:         datasync.SourceType(row.Type),
		URL:          row.URL,
		Active:       row.Active,
		MaxRequests:  row.MaxRequests,
		RateWindow:   time.Duration(row.RateWindowSecs) * time.Second,
		LastSyncedAt: row.LastSyncedAt,
	}
}

func sourceToRow(item datasync.Source) sourceTableModel {
	return sourceTableModel{
		ID:             item.ID,
		Name:           item.Name,
		Type:           string(item.Type),
		URL:            item.URL,
		Active:         item.Active,
		MaxRequests:    item.MaxRequests,
		RateWindowSecs: int64(item.RateWindow / time.Second),
		LastSyncedAt:   item.LastSyncedAt,
	}
}

func runFromRow(row runTableModel) datasync.Run {
	return datasync.Run{
		ID:              row.ID,
		SourceID:        row.SourceID,
		Type:            datasync.SourceType(row.Type),
		StartedAt:       row.StartedAt,
		FinishedAt:      row.FinishedAt,
		RecordsFetched:  row.RecordsFetched,
		RecordsInserted: row.RecordsInserted,
		RecordsUpdated:  row.RecordsUpdated,
		RecordsDeleted:  row.RecordsDeleted,
		RecordsSkipped:  row.RecordsSkipped,
		Status:          row.Status,
		Error:           row.Error,
	}
}

func runToRow(item datasync.Run) runTableModel {
	return runTableModel{
		ID:              item.ID,
		SourceID:        item.SourceID,
		Type:            string(item.Type),
		StartedAt:       item.StartedAt,
		FinishedAt:      item.FinishedAt,
		RecordsFetched:  item.RecordsFetched,
		RecordsInserted: item.RecordsInserted,
		RecordsUpdated:  item.RecordsUpdated,
		RecordsDeleted:  item.RecordsDeleted,
		RecordsSkipped:  item.RecordsSkipped,
		Status:          item.Status,
		Error:           item.Error,
	}
}

func changeFromRow(row changeTableModel) datasync.Change {
	return datasync.Change{
		EntityType:   row.EntityType,
		EntityID:     row.EntityID,
		Type:         datasync.ChangeType(row.ChangeType),
		Field:        row.Field,
		OldValue:     row.OldValue,
		NewValue:     row.NewValue,
		Significance: datasync.Significance(row.Significance),
		DetectedAt:   row.DetectedAt,
	}
}

func changeToRow(item datasync.Change) changeTableModel {
	return changeTableModel{
		EntityType:   item.EntityType,
		EntityID:     item.EntityID,
		ChangeType:   string(item.Type),
		Field:        item.Field,
		OldValue:     item.OldValue,
		NewValue:     item.NewValue,
		Significance: string(item.Significance),
		DetectedAt:   item.DetectedAt,
	}
}
