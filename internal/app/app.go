package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/padelhq/courtsight/external/visionai"
	"github.com/padelhq/courtsight/internal/config"
	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/domain/match"
	"github.com/padelhq/courtsight/internal/domain/rawdata"
	"github.com/padelhq/courtsight/internal/domain/user"
	"github.com/padelhq/courtsight/internal/infrastructure/account/clerkd"
	"github.com/padelhq/courtsight/internal/infrastructure/media"
	"github.com/padelhq/courtsight/internal/infrastructure/repository/memory"
	"github.com/padelhq/courtsight/internal/infrastructure/repository/postgres"
	"github.com/padelhq/courtsight/internal/interfaces/httpapi"
	"github.com/padelhq/courtsight/internal/platform/cache"
	"github.com/padelhq/courtsight/internal/platform/logging"
	"github.com/padelhq/courtsight/internal/platform/resilience"
	"github.com/padelhq/courtsight/internal/usecase"
)

// App bundles the wired HTTP server with the background services that share
// its lifecycle.
type App struct {
	Server *http.Server
	Poller *usecase.JobPollerService

	db     *sqlx.DB
	logger *logging.Logger
}

type repositories struct {
	matches match.Repository
	users   user.Repository
	jobs    analysisjob.Repository
	results analysis.Repository
	rawData rawdata.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	visionClient := visionai.NewClient(visionai.ClientConfig{
		BaseURL:    cfg.VisionBaseURL,
		APIKey:     cfg.VisionAPIKey,
		Timeout:    cfg.VisionTimeout,
		MaxRetries: cfg.VisionMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.VisionCircuitEnabled,
			FailureThreshold: cfg.VisionCircuitFailureCount,
			OpenTimeout:      cfg.VisionCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.VisionCircuitHalfOpenMaxReq,
		},
	})

	var submitter usecase.JobSubmitter = visionClient
	if !cfg.VisionEnabled {
		// Matches can still be created and uploaded without the provider;
		// submission reports the dependency as unavailable.
		submitter = usecase.NewNoopJobSubmitter()
	}

	var responseCache *cache.Store[analysis.FormattedResponse]
	if cfg.CacheEnabled {
		responseCache = cache.NewStore[analysis.FormattedResponse](cfg.CacheTTL)
	}

	mediaStore, err := media.NewDiskStore(cfg.MediaDir, "/media")
	if err != nil {
		return nil, fmt.Errorf("init media store: %w", err)
	}

	matchSvc := usecase.NewMatchService(repos.matches, repos.jobs, submitter, logger)
	userSvc := usecase.NewUserService(repos.users)
	analysisSvc := usecase.NewAnalysisService(repos.results, repos.jobs, repos.matches, repos.rawData, responseCache, logger)
	mediaSvc := usecase.NewMediaService(mediaStore, cfg.MediaMaxUploadBytes, logger)

	poller, err := usecase.NewJobPollerService(repos.jobs, visionClient, analysisSvc, usecase.JobPollerConfig{
		PollInterval: cfg.JobPollInterval,
		BatchSize:    cfg.JobPollBatchSize,
		Workers:      cfg.JobPollWorkers,
		MaxAttempts:  cfg.JobMaxAttempts,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init job poller: %w", err)
	}

	clerkdClient := clerkd.NewClient(clerkd.ClientConfig{
		BaseURL:        cfg.ClerkdBaseURL,
		IntrospectPath: cfg.ClerkdIntrospectPath,
		AdminKey:       cfg.ClerkdAdminKey,
		Timeout:        cfg.ClerkdTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ClerkdCircuitEnabled,
			FailureThreshold: cfg.ClerkdCircuitFailureCount,
			OpenTimeout:      cfg.ClerkdCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ClerkdCircuitHalfOpenMaxReq,
		},
	})

	handler := httpapi.NewHandler(matchSvc, userSvc, analysisSvc, mediaSvc, poller, logger)
	router := httpapi.NewRouter(handler, clerkdClient, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server: server,
		Poller: poller,
		db:     db,
		logger: logger,
	}, nil
}

// Close releases resources that outlive the HTTP server shutdown.
func (a *App) Close() error {
	a.Poller.Close()
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (*sqlx.DB, repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Warn("DB_URL is empty, falling back to in-memory repositories")
		return nil, repositories{
			matches: memory.NewMatchRepository(),
			users:   memory.NewUserRepository(),
			jobs:    memory.NewAnalysisJobRepository(),
			results: memory.NewAnalysisResultRepository(),
			rawData: memory.NewRawDataRepository(),
		}, nil
	}

	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, repositories{}, fmt.Errorf("connect db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, repositories{
		matches: postgres.NewMatchRepository(db),
		users:   postgres.NewUserRepository(db),
		jobs:    postgres.NewAnalysisJobRepository(db),
		results: postgres.NewAnalysisResultRepository(db),
		rawData: postgres.NewRawDataRepository(db),
	}, nil
}
