package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/rider"
	"github.com/motosense/backend/internal/platform/id"
	"github.com/motosense/backend/internal/platform/logging"
	"github.com/motosense/backend/internal/platform/resilience"
)

// RateLimiter enforces a per-source request budget. Each source carries its
// own max/window configuration, so the per-call variant is the one used.
type RateLimiter interface {
	AllowN(key string, max int, window time.Duration) bool
}

// ResultScorer re-runs prediction scoring after a results sync touched a
// race. Recalculation failures never fail the sync that triggered them.
type ResultScorer interface {
	RecalculateRace(ctx context.Context, raceID string) (int, error)
}

// ChangeNotifier pushes critical and high significance changes to an
// external webhook. Best-effort: delivery failures are logged, not returned.
type ChangeNotifier interface {
	NotifyChanges(ctx context.Context, items []datasync.Change) error
}

type SyncResult struct {
	SourceID        string              `json:"source_id"`
	Type            datasync.SourceType `json:"type"`
	RecordsFetched  int                 `json:"records_fetched"`
	RecordsInserted int                 `json:"records_inserted"`
	RecordsUpdated  int                 `json:"records_updated"`
	RecordsDeleted  int                 `json:"records_deleted"`
	RecordsSkipped  int                 `json:"records_skipped"`
	ChangesDetected int                 `json:"changes_detected"`
	Changes         []ChangeRecord      `json:"changes,omitempty"`
	Unchanged       bool                `json:"unchanged"`
	Success         bool                `json:"success"`
	Error           string              `json:"error,omitempty"`
	DurationMs      int64               `json:"duration_ms"`
}

// ChangeRecord is the wire form of a detected change carried on SyncResult.
type ChangeRecord struct {
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	Type         string    `json:"type"`
	Field        string    `json:"field,omitempty"`
	OldValue     string    `json:"old_value,omitempty"`
	NewValue     string    `json:"new_value,omitempty"`
	Significance string    `json:"significance"`
	DetectedAt   time.Time `json:"detected_at"`
}

func changeToRecord(change datasync.Change) ChangeRecord {
	return ChangeRecord{
		EntityType:   change.EntityType,
		EntityID:     change.EntityID,
		Type:         string(change.Type),
		Field:        change.Field,
		OldValue:     change.OldValue,
		NewValue:     change.NewValue,
		Significance: string(change.Significance),
		DetectedAt:   change.DetectedAt,
	}
}

type SyncAllResult struct {
	SourceCount  int          `json:"source_count"`
	SuccessCount int          `json:"success_count"`
	FailedCount  int          `json:"failed_count"`
	WorkerCount  int          `json:"worker_count"`
	Results      []SyncResult `json:"results"`
}

type SyncConfig struct {
	// MaxWorkers caps SyncAll concurrency across sources.
	MaxWorkers int
	// DefaultMaxRequests and DefaultRateWindow apply to sources that do not
	// declare their own budget.
	DefaultMaxRequests int
	DefaultRateWindow  time.Duration
}

type SyncService struct {
	syncRepo   datasync.Repository
	raceRepo   race.Repository
	riderRepo  rider.Repository
	resultRepo result.Repository
	fetcher    Fetcher
	validator  *RecordValidator
	limiter    RateLimiter
	scorer     ResultScorer
	notifier   ChangeNotifier
	ids        id.Generator
	cfg        SyncConfig
	logger     *logging.Logger

	group resilience.SingleFlight
	now   func() time.Time
}

func NewSyncService(
	syncRepo datasync.Repository,
	raceRepo race.Repository,
	riderRepo rider.Repository,
	resultRepo result.Repository,
	fetcher Fetcher,
	limiter RateLimiter,
	scorer ResultScorer,
	notifier ChangeNotifier,
	ids id.Generator,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 3
	}
	if cfg.DefaultMaxRequests <= 0 {
		cfg.DefaultMaxRequests = 60
	}
	if cfg.DefaultRateWindow <= 0 {
		cfg.DefaultRateWindow = time.Minute
	}

	return &SyncService{
		syncRepo:   syncRepo,
		raceRepo:   raceRepo,
		riderRepo:  riderRepo,
		resultRepo: resultRepo,
		fetcher:    fetcher,
		validator:  NewRecordValidator(),
		limiter:    limiter,
		scorer:     scorer,
		notifier:   notifier,
		ids:        ids,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Sync runs one full pass for a single source: rate limit check, fetch,
// snapshot short-circuit, per-record validation and upsert, change
// detection, run bookkeeping. Upstream failures come back as a failed
// SyncResult with a nil error; only precondition failures (unknown source,
// inactive source, exhausted budget) are returned as errors.
func (s *SyncService) Sync(ctx context.Context, sourceID string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Sync")
	defer span.End()

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return SyncResult{}, fmt.Errorf("%w: source id is required", ErrInvalidInput)
	}

	source, found, err := s.syncRepo.GetSource(ctx, sourceID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("get data source id=%s: %w", sourceID, err)
	}
	if !found {
		return SyncResult{}, fmt.Errorf("%w: data source id=%s", ErrNotFound, sourceID)
	}
	if !source.Active {
		return SyncResult{}, fmt.Errorf("%w: id=%s", ErrSourceInactive, sourceID)
	}

	maxRequests := source.MaxRequests
	if maxRequests <= 0 {
		maxRequests = s.cfg.DefaultMaxRequests
	}
	rateWindow := source.RateWindow
	if rateWindow <= 0 {
		rateWindow = s.cfg.DefaultRateWindow
	}
	if s.limiter != nil && !s.limiter.AllowN("source:"+source.ID, maxRequests, rateWindow) {
		return SyncResult{}, fmt.Errorf("%w: id=%s max=%d window=%s", ErrRateLimited, sourceID, maxRequests, rateWindow)
	}

	// Overlapping triggers for the same source collapse into one run.
	value, err, shared := s.group.Do("sync:"+source.ID, func() (any, error) {
		out, runErr := s.runSync(ctx, source)
		return out, runErr
	})
	if err != nil {
		return SyncResult{}, err
	}
	if shared {
		s.logger.InfoContext(ctx, "sync request joined an in-flight run", "source_id", source.ID)
	}

	out, ok := value.(SyncResult)
	if !ok {
		return SyncResult{}, fmt.Errorf("unexpected sync result type for source id=%s", sourceID)
	}
	return out, nil
}

// SyncAll runs every active source through a bounded worker pool. Individual
// failures are reported per source, never aborting the batch.
func (s *SyncService) SyncAll(ctx context.Context) (SyncAllResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncAll")
	defer span.End()

	sources, err := s.syncRepo.ListActiveSources(ctx)
	if err != nil {
		return SyncAllResult{}, fmt.Errorf("list active data sources: %w", err)
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(sources) {
		workerCount = len(sources)
	}
	out := SyncAllResult{
		SourceCount: len(sources),
		WorkerCount: workerCount,
		Results:     make([]SyncResult, 0, len(sources)),
	}
	if len(sources) == 0 {
		return out, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SyncAllResult{}, fmt.Errorf("create sync worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan SyncResult, len(sources))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, source := range sources {
		source := source
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, syncErr := s.Sync(ctx, source.ID)
			if syncErr != nil {
				row = SyncResult{
					SourceID: source.ID,
					Type:     source.Type,
					Error:    syncErr.Error(),
				}
			}
			if row.Success {
				successCount.Add(1)
			} else {
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return SyncAllResult{}, fmt.Errorf("submit sync task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		out.Results = append(out.Results, row)
	}
	sort.SliceStable(out.Results, func(i, j int) bool {
		return out.Results[i].SourceID < out.Results[j].SourceID
	})

	out.SuccessCount = int(successCount.Load())
	out.FailedCount = int(failedCount.Load())
	return out, nil
}

func (s *SyncService) runSync(ctx context.Context, source datasync.Source) (SyncResult, error) {
	start := s.now()
	out := SyncResult{SourceID: source.ID, Type: source.Type}

	runID, err := s.ids.NewID()
	if err != nil {
		return SyncResult{}, fmt.Errorf("generate sync run id source=%s: %w", source.ID, err)
	}
	run := datasync.Run{
		ID:        runID,
		SourceID:  source.ID,
		Type:      source.Type,
		StartedAt: start.UTC(),
		Status:    datasync.RunStatusRunning,
	}
	if err := s.syncRepo.CreateRun(ctx, run); err != nil {
		return SyncResult{}, fmt.Errorf("create sync run source=%s: %w", source.ID, err)
	}

	payload, err := s.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		s.logger.ErrorContext(ctx, "sync fetch failed", "source_id", source.ID, "url", source.URL, "error", err.Error())
		out.Error = fmt.Sprintf("fetch %s: %s", source.URL, err.Error())
		return s.finalizeRun(ctx, run, out, start), nil
	}

	hash := payloadHash(payload)
	snapshot, haveSnapshot, err := s.syncRepo.GetSnapshot(ctx, source.ID, source.URL)
	if err != nil {
		s.logger.ErrorContext(ctx, "sync snapshot lookup failed", "source_id", source.ID, "error", err.Error())
		out.Error = fmt.Sprintf("get content snapshot: %s", err.Error())
		return s.finalizeRun(ctx, run, out, start), nil
	}
	if haveSnapshot && snapshot.Hash == hash {
		out.Success = true
		out.Unchanged = true
		return s.finalizeRun(ctx, run, out, start), nil
	}

	switch source.Type {
	case datasync.SourceTypeSchedule:
		err = s.syncSchedule(ctx, payload, &out)
	case datasync.SourceTypeRiders:
		err = s.syncRiders(ctx, payload, &out)
	case datasync.SourceTypeResults:
		err = s.syncResults(ctx, payload, &out)
	default:
		err = fmt.Errorf("%w: unsupported source type=%s", ErrInvalidInput, source.Type)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "sync apply failed", "source_id", source.ID, "type", string(source.Type), "error", err.Error())
		out.Error = err.Error()
		return s.finalizeRun(ctx, run, out, start), nil
	}

	if err := s.syncRepo.UpsertSnapshot(ctx, datasync.Snapshot{
		SourceID:  source.ID,
		URL:       source.URL,
		Hash:      hash,
		FetchedAt: start.UTC(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "sync snapshot upsert failed", "source_id", source.ID, "error", err.Error())
		out.Error = fmt.Sprintf("upsert content snapshot: %s", err.Error())
		return s.finalizeRun(ctx, run, out, start), nil
	}

	syncedAt := start.UTC()
	source.LastSyncedAt = &syncedAt
	if err := s.syncRepo.UpdateSource(ctx, source); err != nil {
		s.logger.ErrorContext(ctx, "sync source bookkeeping failed", "source_id", source.ID, "error", err.Error())
		out.Error = fmt.Sprintf("update data source last_synced_at: %s", err.Error())
		return s.finalizeRun(ctx, run, out, start), nil
	}

	out.Success = true
	return s.finalizeRun(ctx, run, out, start), nil
}

func (s *SyncService) finalizeRun(ctx context.Context, run datasync.Run, out SyncResult, start time.Time) SyncResult {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.RecordsFetched = out.RecordsFetched
	run.RecordsInserted = out.RecordsInserted
	run.RecordsUpdated = out.RecordsUpdated
	run.RecordsDeleted = out.RecordsDeleted
	run.RecordsSkipped = out.RecordsSkipped
	run.Status = datasync.RunStatusSuccess
	if !out.Success {
		run.Status = datasync.RunStatusFailed
		run.Error = out.Error
	}
	if err := s.syncRepo.UpdateRun(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "update sync run failed", "run_id", run.ID, "source_id", run.SourceID, "error", err.Error())
	}

	out.DurationMs = s.now().Sub(start).Milliseconds()
	return out
}

func (s *SyncService) syncSchedule(ctx context.Context, payload []byte, out *SyncResult) error {
	var items []RaceScheduleItem
	if err := sonic.Unmarshal(payload, &items); err != nil {
		return fmt.Errorf("%w: decode schedule payload: %s", ErrInvalidInput, err.Error())
	}
	out.RecordsFetched = len(items)

	detectedAt := s.now().UTC()
	changes := make([]datasync.Change, 0, len(items))
	for _, item := range items {
		if err := s.validator.ValidateScheduleItem(item); err != nil {
			s.logger.WarnContext(ctx, "skip invalid schedule record", "race_id", item.ID, "error", err.Error())
			out.RecordsSkipped++
			continue
		}

		next := scheduleItemToRace(item)
		existing, found, err := s.raceRepo.GetByID(ctx, next.ID)
		if err != nil {
			return fmt.Errorf("get race id=%s: %w", next.ID, err)
		}
		if found {
			// Sync never touches round-progression state.
			next.Status = existing.Status
			next.OpenedAt = existing.OpenedAt
			next.ClosesAt = existing.ClosesAt
			next.HasResults = existing.HasResults
			next.ResultsRevealedAt = existing.ResultsRevealedAt
			changes = append(changes, DetectRaceChanges(existing, next, detectedAt)...)
		} else {
			changes = append(changes, createdChange("race", next.ID, detectedAt))
		}

		created, err := s.raceRepo.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert race id=%s: %w", next.ID, err)
		}
		if created {
			out.RecordsInserted++
		} else {
			out.RecordsUpdated++
		}
	}

	return s.recordChanges(ctx, changes, out)
}

func (s *SyncService) syncRiders(ctx context.Context, payload []byte, out *SyncResult) error {
	var items []RiderDataItem
	if err := sonic.Unmarshal(payload, &items); err != nil {
		return fmt.Errorf("%w: decode rider payload: %s", ErrInvalidInput, err.Error())
	}
	out.RecordsFetched = len(items)

	detectedAt := s.now().UTC()
	changes := make([]datasync.Change, 0, len(items))
	for _, item := range items {
		if err := s.validator.ValidateRiderItem(item); err != nil {
			s.logger.WarnContext(ctx, "skip invalid rider record", "rider_id", item.ID, "error", err.Error())
			out.RecordsSkipped++
			continue
		}

		next := riderItemToRider(item)
		existing, found, err := s.riderRepo.GetByID(ctx, next.ID)
		if err != nil {
			return fmt.Errorf("get rider id=%s: %w", next.ID, err)
		}
		if found {
			changes = append(changes, DetectRiderChanges(existing, next, detectedAt)...)
		} else {
			changes = append(changes, createdChange("rider", next.ID, detectedAt))
		}

		created, err := s.riderRepo.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert rider id=%s: %w", next.ID, err)
		}
		if created {
			out.RecordsInserted++
		} else {
			out.RecordsUpdated++
		}
	}

	return s.recordChanges(ctx, changes, out)
}

func (s *SyncService) syncResults(ctx context.Context, payload []byte, out *SyncResult) error {
	var items []RaceWithResults
	if err := sonic.Unmarshal(payload, &items); err != nil {
		return fmt.Errorf("%w: decode results payload: %s", ErrInvalidInput, err.Error())
	}
	out.RecordsFetched = len(items)

	detectedAt := s.now().UTC()
	changes := make([]datasync.Change, 0, len(items))
	touchedRaces := make([]string, 0, len(items))
	for _, item := range items {
		if err := s.validator.ValidateResultItem(item); err != nil {
			s.logger.WarnContext(ctx, "skip invalid result record", "race_id", item.RaceID, "error", err.Error())
			out.RecordsSkipped++
			continue
		}

		raceItem, found, err := s.raceRepo.GetByID(ctx, item.RaceID)
		if err != nil {
			return fmt.Errorf("get race id=%s: %w", item.RaceID, err)
		}
		if !found {
			s.logger.WarnContext(ctx, "skip results for unknown race", "race_id", item.RaceID)
			out.RecordsSkipped++
			continue
		}

		next := resultItemToResult(item, detectedAt)
		existing, haveExisting, err := s.resultRepo.GetByRace(ctx, next.RaceID)
		if err != nil {
			return fmt.Errorf("get race result race=%s: %w", next.RaceID, err)
		}
		if haveExisting {
			next.RevealedAt = existing.RevealedAt
			changes = append(changes, DetectResultChanges(existing, next, detectedAt)...)
		} else {
			changes = append(changes, createdChange("result", next.RaceID, detectedAt))
		}

		created, err := s.resultRepo.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert race result race=%s: %w", next.RaceID, err)
		}
		if created {
			out.RecordsInserted++
		} else {
			out.RecordsUpdated++
		}

		if !raceItem.HasResults {
			raceItem.HasResults = true
			raceItem.ResultsRevealedAt = &next.RevealedAt
			if err := s.raceRepo.Update(ctx, raceItem); err != nil {
				return fmt.Errorf("mark race has_results id=%s: %w", raceItem.ID, err)
			}
		}
		touchedRaces = append(touchedRaces, next.RaceID)
	}

	if err := s.recordChanges(ctx, changes, out); err != nil {
		return err
	}

	// Scoring runs after results land. A failed recalculation leaves scores
	// stale until the next results sync, it does not fail this one.
	if s.scorer != nil {
		for _, raceID := range touchedRaces {
			scored, err := s.scorer.RecalculateRace(ctx, raceID)
			if err != nil {
				s.logger.ErrorContext(ctx, "score recalculation failed after results sync", "race_id", raceID, "error", err.Error())
				continue
			}
			s.logger.InfoContext(ctx, "recalculated prediction scores", "race_id", raceID, "scored_count", scored)
		}
	}

	return nil
}

func (s *SyncService) recordChanges(ctx context.Context, changes []datasync.Change, out *SyncResult) error {
	out.ChangesDetected = len(changes)
	out.Changes = make([]ChangeRecord, 0, len(changes))
	for _, change := range changes {
		out.Changes = append(out.Changes, changeToRecord(change))
		if change.Type == datasync.ChangeDeleted {
			out.RecordsDeleted++
		}
	}
	if len(changes) == 0 {
		return nil
	}
	if err := s.syncRepo.AppendChanges(ctx, changes); err != nil {
		return fmt.Errorf("append detected changes: %w", err)
	}

	if s.notifier == nil {
		return nil
	}
	urgent := make([]datasync.Change, 0, len(changes))
	for _, change := range changes {
		if change.Significance == datasync.SignificanceCritical || change.Significance == datasync.SignificanceHigh {
			urgent = append(urgent, change)
		}
	}
	if len(urgent) == 0 {
		return nil
	}
	if err := s.notifier.NotifyChanges(ctx, urgent); err != nil {
		s.logger.WarnContext(ctx, "change notification delivery failed", "change_count", len(urgent), "error", err.Error())
	}
	return nil
}

// ListRuns returns the most recent sync executions for a source, newest
// first.
func (s *SyncService) ListRuns(ctx context.Context, sourceID string, limit int) ([]datasync.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.ListRuns")
	defer span.End()

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source id is required", ErrInvalidInput)
	}
	if _, found, err := s.syncRepo.GetSource(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("get source %q: %w", sourceID, err)
	} else if !found {
		return nil, fmt.Errorf("%w: data source %q", ErrNotFound, sourceID)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.syncRepo.ListRunsBySource(ctx, sourceID, limit)
}

// ListChanges returns the recorded change trail for a single entity, oldest
// first.
func (s *SyncService) ListChanges(ctx context.Context, entityType, entityID string) ([]datasync.Change, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.ListChanges")
	defer span.End()

	entityType = strings.ToLower(strings.TrimSpace(entityType))
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, fmt.Errorf("%w: entity id is required", ErrInvalidInput)
	}
	switch entityType {
	case "race", "rider", "result":
	default:
		return nil, fmt.Errorf("%w: unknown entity type=%q", ErrInvalidInput, entityType)
	}

	return s.syncRepo.ListChangesByEntity(ctx, entityType, entityID)
}

func payloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
