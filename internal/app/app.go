package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/motosense/backend/external/feed"
	"github.com/motosense/backend/external/notify"
	"github.com/motosense/backend/internal/config"
	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/prediction"
	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/result"
	"github.com/motosense/backend/internal/domain/rider"
	"github.com/motosense/backend/internal/domain/scoring"
	"github.com/motosense/backend/internal/infrastructure/repository/memory"
	"github.com/motosense/backend/internal/infrastructure/repository/postgres"
	"github.com/motosense/backend/internal/interfaces/httpapi"
	"github.com/motosense/backend/internal/platform/cache"
	idgen "github.com/motosense/backend/internal/platform/id"
	"github.com/motosense/backend/internal/platform/logging"
	"github.com/motosense/backend/internal/platform/resilience"
	"github.com/motosense/backend/internal/usecase"
)

type repositories struct {
	races       race.Repository
	riders      rider.Repository
	predictions prediction.Repository
	results     result.Repository
	scores      scoring.Repository
	profiles    profile.Repository
	sync        datasync.Repository
}

// NewHTTPServer wires the full service. The returned cleanup releases the
// database handle and must run after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cleanup := func() error { return nil }

	var repos repositories
	if cfg.DBURL != "" {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.BootstrapSeed(seedCtx, db, cfg.FeedBaseURL); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
		repos = repositories{
			races:       postgres.NewRaceRepository(db),
			riders:      postgres.NewRiderRepository(db),
			predictions: postgres.NewPredictionRepository(db),
			results:     postgres.NewResultRepository(db),
			scores:      postgres.NewScoringRepository(db),
			profiles:    postgres.NewProfileRepository(db),
			sync:        postgres.NewDataSyncRepository(db),
		}
		cleanup = db.Close
		logger.Info("storage selected", "kind", "postgres", "db", dbNameFromURL(cfg.DBURL))
	} else {
		repos = repositories{
			races:       memory.NewRaceRepository(memory.SeedRaces()),
			riders:      memory.NewRiderRepository(memory.SeedRiders()),
			predictions: memory.NewPredictionRepository(),
			results:     memory.NewResultRepository(),
			scores:      memory.NewScoringRepository(),
			profiles:    memory.NewProfileRepository(),
			sync:        memory.NewDataSyncRepository(memory.SeedSources(cfg.FeedBaseURL)),
		}
		logger.Info("storage selected", "kind", "memory")
	}

	ids := idgen.NewRandomGenerator()

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		// An expired-on-arrival entry makes every read a miss.
		cacheTTL = time.Nanosecond
	}

	achievementSvc := usecase.NewAchievementService(repos.profiles, repos.scores, repos.races, logger)
	leaderboardSvc := usecase.NewLeaderboardService(repos.profiles, cache.NewStore(cacheTTL), logger)

	scoringSvc := usecase.NewScoringService(
		repos.predictions,
		repos.results,
		repos.scores,
		repos.races,
		statsWithLeaderboardInvalidation{stats: achievementSvc, leaderboard: leaderboardSvc},
		usecase.ScoringConfig{
			Rules: scoring.Rules{
				ExactPoints:  cfg.ScoringExactPoints,
				Top5Points:   cfg.ScoringTop5Points,
				PerfectBonus: cfg.ScoringPerfectBonus,
			},
			MaxWorkers: cfg.ScoringMaxWorkers,
		},
		logger,
	)

	fetcher := feed.NewClient(feed.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FeedTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxRetries: cfg.FeedMaxRetries,
		BaseDelay:  cfg.FeedBaseDelay,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})

	var notifier usecase.ChangeNotifier
	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:            cfg.WebhookURL,
			Secret:         cfg.WebhookSecret,
			Timeout:        cfg.WebhookTimeout,
			Logger:         logger,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build webhook notifier: %w", err)
		}
		notifier = webhook
	}

	syncSvc := usecase.NewSyncService(
		repos.sync,
		repos.races,
		repos.riders,
		repos.results,
		fetcher,
		resilience.NewWindowLimiter(cfg.SyncDefaultMaxRequests, cfg.SyncDefaultRateWindow),
		scoringSvc,
		notifier,
		ids,
		usecase.SyncConfig{
			MaxWorkers:         cfg.SyncMaxWorkers,
			DefaultMaxRequests: cfg.SyncDefaultMaxRequests,
			DefaultRateWindow:  cfg.SyncDefaultRateWindow,
		},
		logger,
	)

	roundSvc := usecase.NewRoundService(repos.races, usecase.RoundConfig{
		AutoProgressWindow: cfg.RoundAutoProgressWindow,
	}, logger)

	predictionSvc := usecase.NewPredictionService(
		repos.predictions,
		repos.races,
		repos.scores,
		ids,
		usecase.PredictionConfig{LockWindow: cfg.PredictionLockWindow},
		logger,
	)

	catalogSvc := usecase.NewCatalogService(repos.races, repos.riders, logger)

	handler := httpapi.NewHandler(syncSvc, roundSvc, predictionSvc, catalogSvc, achievementSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		AdminToken:         cfg.AdminToken,
		SwaggerEnabled:     cfg.SwaggerEnabled,
	}, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// statsWithLeaderboardInvalidation folds a score into the user's profile and
// drops the cached leaderboard so the next read sees fresh standings.
type statsWithLeaderboardInvalidation struct {
	stats       *usecase.AchievementService
	leaderboard *usecase.LeaderboardService
}

func (u statsWithLeaderboardInvalidation) ApplyScoredPrediction(ctx context.Context, userID string, raceDate time.Time, item scoring.Score) error {
	if err := u.stats.ApplyScoredPrediction(ctx, userID, raceDate, item); err != nil {
		return err
	}
	u.leaderboard.Invalidate(ctx)
	return nil
}
