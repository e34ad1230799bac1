package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/motosense/backend/internal/domain/datasync"
	qb "github.com/motosense/backend/internal/platform/querybuilder"
)

type DataSyncRepository struct {
	db *sqlx.DB
}

func NewDataSyncRepository(db *sqlx.DB) *DataSyncRepository {
	return &DataSyncRepository{db: db}
}

func (r *DataSyncRepository) GetSource(ctx context.Context, id string) (datasync.Source, bool, error) {
	query, args, err := qb.Select("*").From("sync_sources").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return datasync.Source{}, false, fmt.Errorf("build get sync source query: %w", err)
	}

	var row sourceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return datasync.Source{}, false, nil
		}
		return datasync.Source{}, false, fmt.Errorf("get sync source: %w", err)
	}

	return sourceFromRow(row), true, nil
}

func (r *DataSyncRepository) ListActiveSources(ctx context.Context) ([]datasync.Source, error) {
	query, args, err := qb.Select("*").From("sync_sources").
		Where(qb.Eq("active", true)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active sync sources query: %w", err)
	}

	var rows []sourceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active sync sources: %w", err)
	}

	out := make([]datasync.Source, 0, len(rows))
	for _, row := range rows {
		out = append(out, sourceFromRow(row))
	}
	return out, nil
}

func (r *DataSyncRepository) UpdateSource(ctx context.Context, item datasync.Source) error {
	row := sourceToRow(item)
	query, args, err := qb.Update("sync_sources").
		Set("name", row.Name).
		Set("type", row.Type).
		Set("url", row.URL).
		Set("active", row.Active).
		Set("max_requests", row.MaxRequests).
		Set("rate_window_secs", row.RateWindowSecs).
		Set("last_synced_at", row.LastSyncedAt).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update sync source query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update sync source: %w", err)
	}
	return nil
}

func (r *DataSyncRepository) GetSnapshot(ctx context.Context, sourceID, url string) (datasync.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("sync_snapshots").
		Where(qb.Eq("source_id", sourceID), qb.Eq("url", url)).
		ToSQL()
	if err != nil {
		return datasync.Snapshot{}, false, fmt.Errorf("build get sync snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return datasync.Snapshot{}, false, nil
		}
		return datasync.Snapshot{}, false, fmt.Errorf("get sync snapshot: %w", err)
	}

	return datasync.Snapshot(row), true, nil
}

func (r *DataSyncRepository) UpsertSnapshot(ctx context.Context, item datasync.Snapshot) error {
	query, args, err := qb.InsertModel("sync_snapshots", snapshotTableModel(item), `ON CONFLICT (source_id, url)
DO UPDATE SET
    hash = EXCLUDED.hash,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert sync snapshot query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync snapshot: %w", err)
	}
	return nil
}

func (r *DataSyncRepository) CreateRun(ctx context.Context, item datasync.Run) error {
	query, args, err := qb.InsertModel("sync_runs", runToRow(item), "")
	if err != nil {
		return fmt.Errorf("build create sync run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create sync run: %w", err)
	}
	return nil
}

func (r *DataSyncRepository) UpdateRun(ctx context.Context, item datasync.Run) error {
	row := runToRow(item)
	query, args, err := qb.Update("sync_runs").
		Set("finished_at", row.FinishedAt).
		Set("records_fetched", row.RecordsFetched).
		Set("records_inserted", row.RecordsInserted).
		Set("records_updated", row.RecordsUpdated).
		Set("records_deleted", row.RecordsDeleted).
		Set("records_skipped", row.RecordsSkipped).
		Set("status", row.Status).
		Set("error", row.Error).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update sync run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

func (r *DataSyncRepository) ListRunsBySource(ctx context.Context, sourceID string, limit int) ([]datasync.Run, error) {
	query, args, err := qb.Select("*").From("sync_runs").
		Where(qb.Eq("source_id", sourceID)).
		OrderBy("started_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sync runs query: %w", err)
	}

	var rows []runTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	out := make([]datasync.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, runFromRow(row))
	}
	return out, nil
}

func (r *DataSyncRepository) AppendChanges(ctx context.Context, items []datasync.Change) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append sync changes tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		query, args, err := qb.InsertModel("sync_changes", changeToRow(item), "")
		if err != nil {
			return fmt.Errorf("build append sync change query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("append sync change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append sync changes tx: %w", err)
	}
	return nil
}

func (r *DataSyncRepository) ListChangesByEntity(ctx context.Context, entityType, entityID string) ([]datasync.Change, error) {
	query, args, err := qb.Select("*").From("sync_changes").
		Where(qb.Eq("entity_type", entityType), qb.Eq("entity_id", entityID)).
		OrderBy("detected_at", "field").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sync changes query: %w", err)
	}

	var rows []changeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sync changes: %w", err)
	}

	out := make([]datasync.Change, 0, len(rows))
	for _, row := range rows {
		out = append(out, changeFromRow(row))
	}
	return out, nil
}
