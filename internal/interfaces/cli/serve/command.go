// Package serve implements the main CLI command: it wires the persistence,
// panel and engine layers, starts the scheduler and serves the operator API.
package serve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"averon/internal/application/fleet"
	"averon/internal/infrastructure/config"
	"averon/internal/infrastructure/database"
	"averon/internal/infrastructure/lease"
	"averon/internal/infrastructure/notification"
	panelInfra "averon/internal/infrastructure/panel"
	"averon/internal/infrastructure/persistence/models"
	"averon/internal/infrastructure/repository"
	"averon/internal/infrastructure/scheduler"
	httpRouter "averon/internal/interfaces/http"
	"averon/internal/interfaces/http/handlers"
	"averon/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	noScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fleet engine",
		Long:  `Run the fleet engine: periodic sync and health passes plus the operator HTTP API.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Serve the API without the periodic passes")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debugMode := env != "production"
	if err := logger.Init(&cfg.Logger, debugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting fleet engine",
		"environment", env,
		"auto_migrate", autoMigrate,
		"scheduler", !noScheduler,
	)

	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := models.AutoMigrate(database.Get()); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
		log.Infow("database migrations applied")
	}

	// Repositories
	serverRepo := repository.NewServerRepository(database.Get(), log)
	inboundRepo := repository.NewInboundRepository(database.Get(), log)
	clientRepo := repository.NewClientAccountRepository(database.Get(), log)
	subscriptionRepo := repository.NewSubscriptionRepository(database.Get(), log)
	healthRecordRepo := repository.NewHealthRecordRepository(database.Get(), log)
	rotationLogRepo := repository.NewRotationLogRepository(database.Get(), log)

	// Sync lease: shared via Redis when configured, in-process otherwise
	var syncLease fleet.SyncLease = lease.NewNoopLease()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
		syncLease = lease.NewRedisLease(redisClient, cfg.Fleet.LeaseTTL(), log)
	}

	// Notifications
	sinks := []notification.Sink{notification.NewLogNotifier(log)}
	if cfg.Email.Enabled {
		sinks = append(sinks, notification.NewEmailNotifier(&cfg.Email, log))
		log.Infow("email notifications enabled", "to", cfg.Email.ToAddress)
	}
	notifier := notification.NewMultiNotifier(sinks...)

	// Engine
	connect := panelInfra.NewFactory(cfg.Fleet.PanelTimeout(), log)
	reconciler := fleet.NewReconciler(inboundRepo, clientRepo, log)
	coordinator := fleet.NewSyncCoordinator(serverRepo, healthRecordRepo, reconciler, connect, syncLease, log)
	rotation := fleet.NewRotationEngine(serverRepo, subscriptionRepo, inboundRepo, rotationLogRepo, connect, notifier, log)
	monitor := fleet.NewHealthMonitor(serverRepo, healthRecordRepo, connect, rotation, notifier, cfg.Fleet.FailureThreshold, log)

	// Scheduler
	var schedulerManager *scheduler.Manager
	if !noScheduler {
		schedulerManager, err = scheduler.NewManager(log)
		if err != nil {
			log.Fatalw("failed to create scheduler", "error", err)
		}
		if err := schedulerManager.RegisterSyncJob(coordinator, cfg.Fleet.SyncInterval()); err != nil {
			log.Fatalw("failed to register sync job", "error", err)
		}
		if err := schedulerManager.RegisterHealthJob(monitor, cfg.Fleet.HealthInterval()); err != nil {
			log.Fatalw("failed to register health job", "error", err)
		}
		schedulerManager.Start()
		defer func() {
			if err := schedulerManager.Stop(); err != nil {
				log.Errorw("scheduler shutdown failed", "error", err)
			}
		}()
	}

	// HTTP API
	fleetHandler := handlers.NewFleetHandler(coordinator, monitor, rotation, serverRepo, log)
	serverHandler := handlers.NewServerHandler(serverRepo, healthRecordRepo, rotationLogRepo, log)
	router := httpRouter.NewRouter(cfg.Server.Mode, fleetHandler, serverHandler, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("http server starting", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("http server forced to shutdown", "error", err)
		return err
	}

	log.Infow("fleet engine exited gracefully")
	return nil
}
