package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukashondrich/open-workinghours-sub004/internal/broadcast"
	"github.com/lukashondrich/open-workinghours-sub004/internal/config"
	"github.com/lukashondrich/open-workinghours-sub004/internal/geofence"
	v1 "github.com/lukashondrich/open-workinghours-sub004/internal/handler/http/v1"
	"github.com/lukashondrich/open-workinghours-sub004/internal/notify"
	"github.com/lukashondrich/open-workinghours-sub004/internal/position"
	"github.com/lukashondrich/open-workinghours-sub004/internal/repository"
	"github.com/lukashondrich/open-workinghours-sub004/internal/scheduler"
	"github.com/lukashondrich/open-workinghours-sub004/internal/service"
	"github.com/lukashondrich/open-workinghours-sub004/internal/telemetry"
	"github.com/lukashondrich/open-workinghours-sub004/pkg/logger"
	"github.com/lukashondrich/open-workinghours-sub004/pkg/postgres"
	redisclient "github.com/lukashondrich/open-workinghours-sub004/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/lukashondrich/open-workinghours-sub004/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Work Hours Tracking API
// @version 1.0
// @description Geofence-driven work session tracking server.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация репозиториев
	sessionRepo := repository.NewSessionRepository(dbpool)
	eventRepo := repository.NewEventRepository(dbpool)
	locationRepo := repository.NewLocationRepository(dbpool)
	verificationStore := repository.NewVerificationStore(redisClient)

	// Инициализация инфраструктуры на Redis
	regionMonitor := geofence.NewRedisRegionMonitor(redisClient)
	checkScheduler := scheduler.NewRedisScheduler(redisClient)
	positionReader := position.NewRedisPositionReader(redisClient)
	notifyPublisher := notify.NewRedisNotifyPublisher(redisClient)
	broadcaster := broadcast.NewRedisBroadcaster(redisClient)
	metrics := telemetry.New()

	// Общие пер-локационные блокировки машины состояний
	locks := service.NewLocationLocks()

	// Инициализация сервисов
	verificationService := service.NewExitVerificationService(
		sessionRepo, eventRepo, verificationStore, checkScheduler,
		positionReader, notifyPublisher, broadcaster, metrics, log, cfg, locks,
	)
	trackingService := service.NewTrackingService(
		sessionRepo, eventRepo, locationRepo, regionMonitor,
		verificationService, positionReader, notifyPublisher, broadcaster,
		metrics, log, cfg, locks,
	)

	// Воркер планировщика доставляет пробуждения проверок выхода
	schedulerWorker := scheduler.NewWorker(redisClient, log, cfg, verificationService.HandleCheck)
	schedulerWorker.Start(ctx)

	// Воркер доставки уведомлений
	notifyWorker := notify.NewWorker(redisClient, log, cfg)
	notifyWorker.Start(ctx)

	// Выверка зависших ожиданий выхода после холодного старта
	reconciler := service.NewReconciler(trackingService, log)
	reconciler.Run(ctx)

	// Восстановление мониторинга геозон из сохранённых локаций
	if err := trackingService.RestoreMonitoring(ctx); err != nil {
		log.Errorf("Failed to restore geofence monitoring: %v", err)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(trackingService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Маршрут метрик Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
