package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/auth"
	"workspace-backend/internal/cards"
	"workspace-backend/internal/documents"
	"workspace-backend/internal/interactions"
	"workspace-backend/internal/jobs"
	openai "workspace-backend/internal/llm/openai"
	"workspace-backend/internal/notifications"
	"workspace-backend/internal/recommend"
	"workspace-backend/internal/services/health"
	sharedauth "workspace-backend/internal/shared/auth"
	"workspace-backend/internal/shared/cache"
	"workspace-backend/internal/shared/config"
	"workspace-backend/internal/shared/server"
	"workspace-backend/internal/shared/storage/db"
	"workspace-backend/internal/shared/storage/object"
	localstore "workspace-backend/internal/shared/storage/object/local"
	s3store "workspace-backend/internal/shared/storage/object/s3"
	"workspace-backend/internal/shared/tasks"
	"workspace-backend/internal/shared/telemetry"
	"workspace-backend/internal/summarize"
	"workspace-backend/internal/users"
	"workspace-backend/internal/workspaces"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Store      object.Store
	Cache      cache.Cache
	Tasks      *tasks.Queue
	Tokens     *sharedauth.Issuer
	Summarizer summarize.Summarizer
	Health     *health.Service

	UsersService         *users.Service
	WorkspacesService    *workspaces.Service
	DocumentsService     *documents.Service
	CardsService         *cards.Service
	InteractionsService  *interactions.Service
	NotificationsService *notifications.Service
	AnalyticsService     *analytics.Service
	RecommendService     *recommend.Service

	closers []func(context.Context) error
}

// Build prepares shared dependencies, services and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()

	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.Health.Register("database", sqlDB.PingContext)
		app.closers = append(app.closers, func(context.Context) error { return sqlDB.Close() })
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Cache, err = buildCache(ctx, app); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Summarizer, err = buildSummarizer(cfg); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Tokens, err = sharedauth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, !cfg.IsDevLike()); err != nil {
		app.Close(ctx)
		return nil, err
	}

	queue := tasks.New(tasks.Options{Workers: cfg.TaskWorkers, QueueSize: cfg.TaskQueueSize})
	app.Tasks = queue
	app.closers = append(app.closers, queue.Shutdown)

	if err := cards.RegisterValidation(); err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Router = server.NewRouter(buildServices(app))
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": err.Error()})
		}
	}
	a.closers = nil
}

// Jobs returns the maintenance jobs run by the worker.
func (a *App) Jobs() []jobs.Job {
	return []jobs.Job{
		jobs.AnalyticsPurge(a.AnalyticsService, a.Config.AnalyticsRetention),
		jobs.NotificationExpiry(a.NotificationsService, a.Config.NotificationTTL),
		jobs.CounterReconcile(a.InteractionsService),
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCache(ctx context.Context, app *App) (cache.Cache, error) {
	url := strings.TrimSpace(app.Config.RedisURL)
	if url == "" {
		return cache.Noop{}, nil
	}
	rc, err := cache.NewRedis(ctx, url)
	if err != nil {
		if app.Config.IsDevLike() {
			telemetry.Warn("bootstrap.cache_disabled", map[string]any{"error": err.Error()})
			return cache.Noop{}, nil
		}
		return nil, err
	}
	app.Health.Register("cache", rc.Ping)
	app.closers = append(app.closers, func(context.Context) error { return rc.Close() })
	return rc, nil
}

func buildSummarizer(cfg config.Config) (summarize.Summarizer, error) {
	heuristic := summarize.NewHeuristic()
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		return summarize.NewLLM(client, heuristic), nil
	case "", "none":
		return heuristic, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func buildServices(app *App) server.RouterDeps {
	var (
		userRepo         users.Repo
		workspaceRepo    workspaces.Repo
		documentRepo     documents.Repo
		cardRepo         cards.Repo
		interactionRepo  interactions.Repo
		notificationRepo notifications.Repo
		analyticsRepo    analytics.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		workspaceRepo = &workspaces.PGRepo{DB: app.DB}
		documentRepo = &documents.PGRepo{DB: app.DB}
		cardRepo = &cards.PGRepo{DB: app.DB}
		interactionRepo = &interactions.PGRepo{DB: app.DB}
		notificationRepo = &notifications.PGRepo{DB: app.DB}
		analyticsRepo = &analytics.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		workspaceRepo = workspaces.NewMemoryRepo()
		documentRepo = documents.NewMemoryRepo()
		cardRepo = cards.NewMemoryRepo()
		interactionRepo = interactions.NewMemoryRepo()
		notificationRepo = notifications.NewMemoryRepo()
		analyticsRepo = analytics.NewMemoryRepo()
	}

	analyticsSvc := analytics.NewService(analyticsRepo, app.Tasks)
	notificationSvc := notifications.NewService(notificationRepo)
	userSvc := users.NewService(userRepo)

	workspaceSvc := workspaces.NewService(workspaceRepo)
	workspaceSvc.Directory = userSvc

	documentSvc := documents.NewService(documentRepo, app.Store, workspaceSvc, app.Summarizer, app.Tasks)
	if app.Config.FileFetchTimeout > 0 {
		documentSvc.FetchTimeout = app.Config.FileFetchTimeout
	}
	workspaceSvc.Cascaders = []workspaces.Cascader{documentSvc}

	cardSvc := cards.NewService(cardRepo, analyticsSvc)
	interactionSvc := interactions.NewService(interactionRepo, cardSvc, notificationSvc, app.Tasks, analyticsSvc)

	recommendSvc := recommend.NewService(analyticsRepo, cardRepo, userSvc)
	recommendSvc.Cache = app.Cache
	recommendSvc.CacheTTL = app.Config.TrendingCacheTTL

	app.UsersService = userSvc
	app.WorkspacesService = workspaceSvc
	app.DocumentsService = documentSvc
	app.CardsService = cardSvc
	app.InteractionsService = interactionSvc
	app.NotificationsService = notificationSvc
	app.AnalyticsService = analyticsSvc
	app.RecommendService = recommendSvc

	return server.RouterDeps{
		Config:       app.Config,
		Verifier:     app.Tokens,
		Health:       app.Health,
		PasswordAuth: auth.NewPasswordHandler(userSvc, app.Tokens, analyticsSvc),
		GoogleAuth: auth.NewGoogleService(auth.GoogleConfig{
			ClientID:     app.Config.GoogleClientID,
			ClientSecret: app.Config.GoogleClientSecret,
			RedirectURL:  app.Config.GoogleRedirectURL,
			UIRedirect:   app.Config.UIRedirectURL,
		}, app.Tokens, userSvc, analyticsSvc),
		Users:         users.NewHandler(userSvc),
		Workspaces:    workspaces.NewHandler(workspaceSvc),
		Documents:     documents.NewHandler(documentSvc),
		Cards:         cards.NewHandler(cardSvc),
		Interactions:  interactions.NewHandler(interactionSvc),
		Notifications: notifications.NewHandler(notificationSvc),
		Analytics:     analytics.NewHandler(analyticsSvc),
		Recommend:     recommend.NewHandler(recommendSvc),
	}
}
