package main

// @title Logistics Tracking API
// @version 1.0
// @description Parcel tracking, route planning, notifications and analytics for logistics operators and senders.
// @BasePath /api/v1

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/logistics-tracker-api/api/swagger"
	"github.com/noah-isme/logistics-tracker-api/internal/handler"
	"github.com/noah-isme/logistics-tracker-api/internal/httpserver"
	"github.com/noah-isme/logistics-tracker-api/internal/middleware"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
	"github.com/noah-isme/logistics-tracker-api/internal/seed"
	"github.com/noah-isme/logistics-tracker-api/internal/service"
	"github.com/noah-isme/logistics-tracker-api/pkg/cache"
	"github.com/noah-isme/logistics-tracker-api/pkg/config"
	"github.com/noah-isme/logistics-tracker-api/pkg/database"
	"github.com/noah-isme/logistics-tracker-api/pkg/jobs"
	"github.com/noah-isme/logistics-tracker-api/pkg/logger"
	"github.com/noah-isme/logistics-tracker-api/pkg/notify"
	"github.com/noah-isme/logistics-tracker-api/pkg/signing"
)

const digestInterval = time.Hour

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type sessionStore interface {
	Create(ctx context.Context, session models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int, keep string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	store := repository.NewStorage(logr, metricsSvc)
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis || cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	var sessions sessionStore = repository.NewMemorySessionRepository()
	if cfg.Session.Backend == config.SessionBackendRedis {
		sessions = repository.NewRedisSessionRepository(redisClient)
	}

	var audit auditStore
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		auditRepo := repository.NewAuditRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare audit schema", zap.Error(err))
		}
		audit = auditRepo
		checks["postgres"] = auditRepo.Ping
	}

	sender, err := newSender(cfg, logr)
	if err != nil {
		logr.Fatal("failed to connect notification broker", zap.Error(err))
	}
	defer sender.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	authSvc := service.NewAuthService(store, sessions, service.NewBcryptHasher(cfg.Auth.BcryptCost), audit, validate, logr, service.AuthConfig{SessionTTL: cfg.Session.TTL})
	notificationSvc := service.NewNotificationService(store, sender, metricsSvc, validate, logr)
	preferenceSvc := service.NewPreferenceService(store, validate, logr)
	parcelSvc := service.NewParcelService(service.ParcelServiceParams{
		Store:     store,
		Notifier:  notificationSvc,
		Cache:     cacheSvc,
		Audit:     audit,
		Signer:    signing.NewTrackingLinkSigner(cfg.TrackingLink.Secret, cfg.TrackingLink.TTL),
		Validator: validate,
		Logger:    logr,
		Config:    service.ParcelServiceConfig{TrackingURLPrefix: cfg.APIPrefix + "/track/"},
	})
	routeSvc := service.NewRouteService(store, cacheSvc, validate, logr)
	issueSvc := service.NewIssueService(store, cacheSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(store, cacheSvc, metricsSvc, logr, cfg.Stats.CacheTTL)
	userSvc := service.NewUserService(store, audit, validate, logr)
	auditSvc := service.NewAuditService(audit, validate)

	queue := jobs.NewQueue("notifications", notificationSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.Retries,
		Logger:     logr,
		DeadLetter: notificationSvc.DeadLetter,
	})
	queue.Start(ctx)
	defer queue.Stop()
	notificationSvc.UseQueue(queue)
	go notificationSvc.RunDigests(ctx, digestInterval)

	if cfg.SeedFile != "" {
		if _, err := seed.LoadFile(cfg.SeedFile, store, logr); err != nil {
			logr.Fatal("failed to load seed data", zap.String("path", cfg.SeedFile), zap.Error(err))
		}
	}
	cacheSvc.Reset(ctx)

	cookie := middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.SecureCookie}
	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, cookie, cfg.Session.TTL),
		Users:         handler.NewUserHandler(userSvc, auditSvc),
		Parcels:       handler.NewParcelHandler(parcelSvc),
		Routes:        handler.NewRouteHandler(routeSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc, preferenceSvc),
		Issues:        handler.NewIssueHandler(issueSvc),
		Analytics:     handler.NewAnalyticsHandler(analyticsSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, checks),
	}, httpserver.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metricsSvc,
		Sessions:       authSvc,
		Cookie:         cookie,
		Audit:          audit,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSender(cfg *config.Config, logr *zap.Logger) (notify.Sender, error) {
	if cfg.AMQP.URL == "" {
		return notify.NewLogSender(logr), nil
	}
	sender, err := notify.NewAMQPSender(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, err
	}
	logr.Info("notification fan-out via amqp", zap.String("exchange", cfg.AMQP.Exchange))
	return sender, nil
}
