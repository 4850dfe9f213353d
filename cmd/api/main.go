package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gp-maquinas/maintenance-service/internal/api/http"
	"github.com/gp-maquinas/maintenance-service/internal/api/http/handlers"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/config"
	"github.com/gp-maquinas/maintenance-service/internal/events"
	"github.com/gp-maquinas/maintenance-service/internal/observability"
	"github.com/gp-maquinas/maintenance-service/internal/persistence"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	"github.com/gp-maquinas/maintenance-service/internal/service"
	"github.com/gp-maquinas/maintenance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	storeRepo := repository.NewStoreRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		StoreRepo:  storeRepo,
		Dispatcher: dispatcher,
	})
	reportService := service.NewReportService(serviceRepo, storeRepo, reportRepo, redis)
	recordService := service.NewRecordService(serviceRepo, storeRepo, dispatcher, reportService)
	referenceService := service.NewReferenceService(storeRepo, referenceRepo, redis)

	authMiddleware := auth.NewMiddleware(authService.Codec())
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(recordService),
		Reports:        handlers.NewReportsHandler(reportService),
		Reference:      handlers.NewReferenceHandler(referenceService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
