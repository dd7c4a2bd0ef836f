package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	httptransport "github.com/fieldops/field-console/internal/api/http"
	"github.com/fieldops/field-console/internal/api/http/handlers"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/cache"
	"github.com/fieldops/field-console/internal/config"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/observability"
	"github.com/fieldops/field-console/internal/persistence"
	"github.com/fieldops/field-console/internal/repository"
	"github.com/fieldops/field-console/internal/service"
	"github.com/fieldops/field-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("postgres is required: set POSTGRES_DSN")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("field_console")

	pool := pg.PoolHandle()
	adminRepo := repository.NewAdminUserRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	panchayathRepo := repository.NewPanchayathRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	capabilityCache, revocations := accessStores(cfg, redis, logger)
	aggregator := access.NewAggregator(service.NewPermissionStore(teamRepo, permissionRepo), capabilityCache, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	guard := service.NewInFlightGuard()
	tracker := service.NewRequestTracker()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AdminUserRepo:    adminRepo,
		AgentRepo:        agentRepo,
		TeamRepo:         teamRepo,
		RegistrationRepo: registrationRepo,
		PanchayathRepo:   panchayathRepo,
		Revocations:      revocations,
		Logger:           logger,
	})
	permissionService := service.NewPermissionService(service.PermissionDependencies{
		PermissionRepo: permissionRepo,
		TeamRepo:       teamRepo,
		AdminUserRepo:  adminRepo,
		Invalidator:    aggregator,
		Dispatcher:     dispatcher,
		Guard:          guard,
		Logger:         logger,
	})
	teamService := service.NewTeamService(service.TeamDependencies{
		TeamRepo:       teamRepo,
		AgentRepo:      agentRepo,
		PermissionRepo: permissionRepo,
		Invalidator:    aggregator,
		Dispatcher:     dispatcher,
		Guard:          guard,
		Logger:         logger,
		DefaultGrants:  cfg.Access.DefaultTeamGrants,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	hierarchyService := service.NewHierarchyService(service.HierarchyDependencies{
		AgentRepo:      agentRepo,
		PanchayathRepo: panchayathRepo,
		Tracker:        tracker,
		Logger:         logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		AgentRepo:      agentRepo,
		PanchayathRepo: panchayathRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   taskRepo,
		AgentRepo:  agentRepo,
		TeamRepo:   teamRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	noteService := service.NewNoteService(noteRepo, dispatcher, logger)
	registrationService := service.NewRegistrationService(registrationRepo, panchayathRepo, dispatcher, logger)
	accessService := service.NewAccessService(aggregator, access.DefaultSections)

	var publisher service.Publisher
	if redis.Enabled() {
		publisher = redis.Client
	}
	notificationService := service.NewNotificationService(dispatcher, activityRepo, publisher, logger, cfg.Notification)
	waitNotifications := worker.StartNotificationWorker(ctx, notificationService)

	sessionMiddleware := auth.NewSessionMiddleware(authService.TokenManager(), revocations, aggregator, metrics, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthChecks(pg, redis)...),
		Sessions:          handlers.NewSessionHandler(authService, registrationService),
		Access:            handlers.NewAccessHandler(accessService),
		Hierarchy:         handlers.NewHierarchyHandler(hierarchyService),
		Directory:         handlers.NewDirectoryHandler(directoryService),
		Notes:             handlers.NewNoteHandler(noteService),
		Teams:             handlers.NewTeamHandler(teamService),
		Permissions:       handlers.NewPermissionHandler(permissionService),
		Tasks:             handlers.NewTaskHandler(taskService),
		Registrations:     handlers.NewRegistrationHandler(registrationService),
		Activity:          handlers.NewActivityHandler(notificationService),
		SessionMiddleware: sessionMiddleware,
		Metrics:           metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	waitNotifications()
}

// accessStores picks the capability cache and revocation list backends.
func accessStores(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) (access.CapabilityCache, auth.RevocationList) {
	if cfg.Access.CacheBackend == "redis" && redis.Enabled() {
		logger.Info("using redis capability cache")
		return cache.NewRedisCapabilityCache(redis.Client, cfg.Access.CapabilityCacheTTL), cache.NewRedisRevocations(redis.Client)
	}
	logger.Info("using in-memory capability cache", zap.Int("size", cfg.Access.MemoryCacheSize))
	return cache.NewMemoryCapabilityCache(cfg.Access.MemoryCacheSize, cfg.Access.CapabilityCacheTTL),
		cache.NewMemoryRevocations(0, cfg.Auth.SessionTTL())
}

func healthChecks(pg *persistence.Postgres, redis *persistence.Redis) []handlers.Check {
	checks := []handlers.Check{{Name: "postgres", Ping: pg.Ping}}
	if redis.Enabled() {
		checks = append(checks, handlers.Check{Name: "redis", Ping: redis.Ping})
	}
	return checks
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
