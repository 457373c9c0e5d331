// Package main - точка входа API-сервера EduScrum Awards.
//
// Сервер обслуживает каталог призов, журнал достижений и рейтинги, а также
// принимает административные операции над спринтами. Завершение спринта
// публикует доменное событие, на которое в этом же процессе подписан движок
// наград: оценка пунктуальности и вручение призов происходят без участия
// клиента.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Event Handlers)
// - Infrastructure: реализация репозиториев, кеш, шина событий
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eduscrum/awards/config"

	// Application layer
	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/internal/application/eventhandler"
	"github.com/eduscrum/awards/internal/application/query"

	// Infrastructure layer
	"github.com/eduscrum/awards/internal/infrastructure/messaging"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/postgres"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/eduscrum/awards/internal/interface/http"
	"github.com/eduscrum/awards/internal/interface/http/handlers"

	// Packages
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting EduScrum Awards API server",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// Проверяем соединение
	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var rankingCache *redis.RankingCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, ranking cache disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			rankingCache = redis.NewRankingCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	prizeRepo := postgres.NewPrizeRepository(dbConn)
	ledger := postgres.NewAchievementRepository(dbConn, cfg.App.Location)
	teamRepo := postgres.NewTeamRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	projectRepo := postgres.NewProjectRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	localBusConfig.AsyncMode = true

	// При REDIS_EVENT_BUS=true события зеркалируются через Redis Pub/Sub,
	// чтобы несколько инстансов видели завершение спринтов друг друга
	var eventBus shared.EventBus
	if redisCache != nil && cfg.Redis.EventBus {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewGoRedisClient(redisCache.Client()),
			ChannelName:    redis.PubSubChannel("domain"),
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		eventBus = redisBus
		log.Info("event bus backed by Redis Pub/Sub")
	} else {
		eventBus = messaging.NewInMemoryEventBus(localBusConfig)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	createPrizeCmd := command.NewCreatePrizeHandler(prizeRepo, courseRepo, eventBus)
	ensurePrizeCmd := command.NewEnsureAutomaticPrizeHandler(prizeRepo)
	grantPrizeCmd := command.NewGrantPrizeHandler(userRepo, prizeRepo, ledger, eventBus)
	createSprintCmd := command.NewCreateSprintHandler(projectRepo, eventBus)
	completeSprintCmd := command.NewCompleteSprintHandler(projectRepo, eventBus)

	awardsConfig := command.ProcessSprintAwardsConfig{
		PrizeName:        cfg.Awards.PrizeName,
		PrizeValue:       cfg.Awards.PrizeValue,
		PrizeDescription: cfg.Awards.PrizeDescription,
		Location:         cfg.App.Location,
	}
	processAwardsCmd := command.NewProcessSprintAwardsHandler(
		projectRepo, courseRepo, teamRepo, userRepo, ledger,
		ensurePrizeCmd, grantPrizeCmd, awardsConfig,
	)

	// rankingCache равный nil отключает кеширование: запрос читает из базы
	var cache query.RankingCache
	if rankingCache != nil && cfg.Features.IsEnabled(config.FeatureRankingGlobalCache, nil) {
		cache = rankingCache
	}
	globalRankingQuery := query.NewGetGlobalRankingHandler(userRepo, cache)
	courseRankingQuery := query.NewGetCourseRankingHandler(userRepo, courseRepo)
	teamRankingQuery := query.NewGetTeamRankingHandler(projectRepo, teamRepo, userRepo)
	listPrizesQuery := query.NewListPrizesHandler(prizeRepo, courseRepo)
	listAchievementsQuery := query.NewListAchievementsHandler(userRepo, prizeRepo, ledger)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. РЕГИСТРАЦИЯ EVENT HANDLERS (движок наград)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	awardsHandlerConfig := eventhandler.DefaultSprintCompletedConfig()
	awardsHandlerConfig.Enabled = cfg.Features.IsEnabled(config.FeatureAwardsAutoGrant, nil)
	awardsHandlerConfig.Timeout = cfg.Awards.HandlerTimeout

	onSprintCompleted := eventhandler.NewOnSprintCompletedHandler(processAwardsCmd, log, awardsHandlerConfig)

	// Диспетчер добавляет к шине retry с backoff, recovery при панике
	// и dead letter queue для событий, которые так и не обработались
	dispatcherConfig := messaging.DefaultDispatcherConfig(eventBus)
	dispatcherConfig.Logger = log
	dispatcher := messaging.NewDispatcher(dispatcherConfig)
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))
	dispatcher.Use(messaging.MetricsMiddleware(dispatcher.Metrics()))

	if err := dispatcher.RegisterHandler(shared.EventSprintCompleted, messaging.HandlerRegistration{
		Name:       "award-engine",
		Handler:    onSprintCompleted.Handle,
		MaxRetries: 3,
		Timeout:    cfg.Awards.HandlerTimeout,
	}); err != nil {
		return fmt.Errorf("failed to register award engine: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() { _ = dispatcher.Stop() }()

	log.Info("award engine subscribed",
		"event", string(shared.EventSprintCompleted),
		"enabled", awardsHandlerConfig.Enabled,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.APIKeyHeader = cfg.HTTP.APIKeyHeader
	httpConfig.APIKeys = cfg.HTTP.APIKeys

	httpDeps := httpserver.Dependencies{
		GetGlobalRankingHandler:    globalRankingQuery,
		GetCourseRankingHandler:    courseRankingQuery,
		GetTeamRankingHandler:      teamRankingQuery,
		ListPrizesHandler:          listPrizesQuery,
		ListAchievementsHandler:    listAchievementsQuery,
		CreatePrizeHandler:         createPrizeCmd,
		GrantPrizeHandler:          grantPrizeCmd,
		CreateSprintHandler:        createSprintCmd,
		CompleteSprintHandler:      completeSprintCmd,
		ProcessSprintAwardsHandler: processAwardsCmd,
		Logger:                     logger.Default(),
		HealthChecker:              healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("EduScrum Awards API server is running",
		"http_address", httpServer.Address(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	// 1. Останавливаем HTTP сервер (перестаём принимать новые запросы)
	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// 2. Event bus закроется через defer

	// 3. База данных закроется через defer

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
