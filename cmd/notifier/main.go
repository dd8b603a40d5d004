// Package main is the entry point for the festival notification engine.
//
// The notifier owns everything that leaves the platform as a push: device
// registrations, per-user preferences, quiet hours, schedule-change and
// announcement fan-out, engagement reminders, and the per-device delivery
// log behind the in-app notification center.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/festhub/festival-hub/config"
	"github.com/festhub/festival-hub/internal/application/devices"
	"github.com/festhub/festival-hub/internal/application/dispatch"
	"github.com/festhub/festival-hub/internal/application/eventhandler"
	"github.com/festhub/festival-hub/internal/application/history"
	"github.com/festhub/festival-hub/internal/application/preferences"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/internal/infrastructure/external/push"
	"github.com/festhub/festival-hub/internal/infrastructure/messaging"
	"github.com/festhub/festival-hub/internal/infrastructure/persistence/postgres"
	"github.com/festhub/festival-hub/internal/infrastructure/persistence/redis"
	"github.com/festhub/festival-hub/internal/infrastructure/scheduler"
	"github.com/festhub/festival-hub/internal/infrastructure/scheduler/jobs"
	"github.com/festhub/festival-hub/pkg/circuitbreaker"
	"github.com/festhub/festival-hub/pkg/clock"
	"github.com/festhub/festival-hub/pkg/logger"
	"github.com/festhub/festival-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// A missing .env is fine; the environment may be set by the platform.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	logFormat := cfg.Observability.LogFormat
	if cfg.IsDevelopment() {
		logFormat = "text"
	}
	log := logger.Setup(cfg.Observability.LogLevel, logFormat)
	log.Info("starting festival-hub notifier",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional unread counter cache)
	// ─────────────────────────────────────────────────────────────────────────
	var unreadCache *redis.UnreadCountCache
	if !cfg.Redis.Disabled {
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

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, unread counts hit storage", "error", err)
		} else {
			defer cache.Close()
			unreadCache = redis.NewUnreadCountCache(cache)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. PUSH GATEWAY CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	pushCfg := push.DefaultClientConfig(cfg.Push.BaseURL)
	pushCfg.APIKey = cfg.Push.APIKey
	pushCfg.Timeout = cfg.Push.RequestTimeout
	pushCfg.Logger = log
	pushCfg.Debug = cfg.App.Debug
	pushCfg.Retrier = retry.New(
		retry.WithMaxAttempts(cfg.Push.MaxRetries),
		retry.WithInitialDelay(cfg.Push.RetryBaseDelay),
		retry.WithMaxDelay(cfg.Push.RetryMaxDelay),
	)
	pushCfg.Breaker = circuitbreaker.New(
		"push-gateway",
		circuitbreaker.WithFailureThreshold(cfg.Push.CircuitBreakerThreshold),
		circuitbreaker.WithTimeout(cfg.Push.CircuitBreakerTimeout),
		circuitbreaker.WithMaxHalfOpenRequests(cfg.Push.CircuitBreakerHalfOpenMax),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	)
	pushClient := push.NewClient(pushCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES AND SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	deviceRepo := postgres.NewDeviceRepository(dbConn)
	prefRepo := postgres.NewPreferenceRepository(dbConn)
	logRepo := postgres.NewNotificationLogRepository(dbConn)
	scheduleReader := postgres.NewScheduleReader(dbConn)

	clk := clock.System{}

	deviceService := devices.NewService(deviceRepo, clk, log)
	prefStore := preferences.NewStore(prefRepo, clk, log)
	historyService := history.NewService(logRepo, cacheOrNil(unreadCache), log)

	resolver := dispatch.NewResolver(scheduleReader, 0)
	dispatcher := dispatch.NewDispatcher(
		prefStore,
		deviceService,
		pushClient,
		logRepo,
		resolver,
		invalidatorOrNil(unreadCache),
		clk,
		log,
	)

	// historyService backs the notification center API; the engine keeps it
	// alive here so the transport layer only has to wire handlers.
	_ = historyService

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	scheduleHandler := eventhandler.NewOnScheduleChangedHandler(dispatcher, log)
	announcementHandler := eventhandler.NewOnAnnouncementPostedHandler(dispatcher, log)

	if err := eventBus.Subscribe(shared.EventScheduleChanged, scheduleHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe schedule handler: %w", err)
	}
	if err := eventBus.Subscribe(shared.EventAnnouncementPosted, announcementHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe announcement handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(log)

		reminderJob := jobs.NewReminderJob(
			scheduleReader,
			prefStore,
			logRepo,
			dispatcher,
			clk,
			jobs.ReminderConfig{Lookahead: cfg.Scheduler.ReminderLookahead},
			log,
		)
		if err := sched.Register(reminderJob, scheduler.Every(cfg.Scheduler.ReminderInterval)); err != nil {
			return fmt.Errorf("failed to register reminder job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("festival-hub notifier is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())
	log.Info("starting graceful shutdown", "timeout", cfg.App.ShutdownTimeout.String())

	return nil
}

// cacheOrNil converts a possibly-nil concrete cache into the interface the
// history service accepts. A typed nil must not masquerade as a live cache.
func cacheOrNil(cache *redis.UnreadCountCache) history.UnreadCache {
	if cache == nil {
		return nil
	}
	return cache
}

// invalidatorOrNil does the same for the dispatcher side.
func invalidatorOrNil(cache *redis.UnreadCountCache) dispatch.UnreadInvalidator {
	if cache == nil {
		return nil
	}
	return cache
}
