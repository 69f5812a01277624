package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/atelier-nord/intake-api/api/swagger"
	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/handler"
	"github.com/atelier-nord/intake-api/internal/middleware"
	"github.com/atelier-nord/intake-api/internal/repository"
	"github.com/atelier-nord/intake-api/internal/service"
	"github.com/atelier-nord/intake-api/internal/session"
	"github.com/atelier-nord/intake-api/pkg/cache"
	"github.com/atelier-nord/intake-api/pkg/config"
	"github.com/atelier-nord/intake-api/pkg/database"
	"github.com/atelier-nord/intake-api/pkg/logger"
	"github.com/atelier-nord/intake-api/pkg/mailer"
	corsmiddleware "github.com/atelier-nord/intake-api/pkg/middleware/cors"
	reqidmiddleware "github.com/atelier-nord/intake-api/pkg/middleware/requestid"
	"github.com/atelier-nord/intake-api/pkg/storage"
)

// Bounds a single multipart upload request body.
const maxUploadRequestBytes = 256 << 20

// @title Creative Intake API
// @version 1.0.0
// @description Single-question questionnaire engine with file uploads and a one-time submission pipeline
// @BasePath /api/v1
// @schemes http

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

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.Version)
	if err != nil {
		logr.Sugar().Fatalw("failed to load question catalog", "path", cfg.Catalog.Path, "error", err)
	}
	logr.Sugar().Infow("catalog loaded", "version", cat.Version(), "questions", cat.Len())

	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	store, localStore, err := buildStore(cfg, signer)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object store", "driver", cfg.Storage.Driver, "error", err)
	}

	mail, err := buildMailer(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init mailer", "provider", cfg.Email.Provider, "error", err)
	}

	var submissionRepo *repository.SubmissionRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close()
		submissionRepo = repository.NewSubmissionRepository(db)
	}

	var receipts *repository.ReceiptRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		receipts = repository.NewReceiptRepository(client, cfg.Redis.ReceiptTTL, logr)
		defer receipts.Close()
	}

	registry := session.NewRegistry(cat, cfg.Sessions.MaxActive)
	metrics := service.NewMetricsService(registry.Len)

	sessionSvc := service.NewSessionService(registry, cat, metrics, logr)
	submissionSvc := service.NewSubmissionService(registry, cat, store, mail, submissionRepo, receipts, metrics, logr, service.SubmissionServiceConfig{
		Bucket:        cfg.Storage.Bucket,
		Title:         cfg.Email.FromName,
		NotifyAddress: cfg.Email.FromEmail,
		NotifyBCC:     cfg.Email.BCC,
	})

	sessionHandler := handler.NewSessionHandler(sessionSvc, maxUploadRequestBytes)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	catalogHandler := handler.NewCatalogHandler(cat)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/questions", catalogHandler.List)
		api.POST("/sessions", sessionHandler.Start)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.POST("/sessions/:id/answers", sessionHandler.RecordAnswer)
		api.GET("/sessions/:id/answers/:questionId", sessionHandler.GetAnswer)
		api.POST("/sessions/:id/files/:questionId", sessionHandler.UploadFiles)
		api.POST("/sessions/:id/advance", sessionHandler.Advance)
		api.POST("/sessions/:id/back", sessionHandler.GoBack)
		api.POST("/sessions/:id/submit", submissionHandler.Submit)

		if localStore != nil {
			fileHandler := handler.NewFileHandler(localStore, signer)
			api.GET("/files/download", fileHandler.Download)
		}
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	go sweepIdleSessions(registry, localStore, cfg.Sessions.IdleTTL, cfg.Storage.RetentionTTL, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Driver, "email", cfg.Email.Provider)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

type objectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (storage.Reference, error)
}

// buildStore returns the configured object store. The second value is
// non-nil only for the local driver, which needs the download route.
func buildStore(cfg *config.Config, signer *storage.SignedURLSigner) (objectStore, *storage.LocalStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverGCS:
		store, err := storage.NewGCSStore(context.Background(), cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StorageDriverLocal, "":
		urlPrefix := cfg.Storage.PublicBaseURL
		if urlPrefix == "" {
			urlPrefix = fmt.Sprintf("http://localhost:%d%s/files/download", cfg.Port, cfg.APIPrefix)
		}
		store, err := storage.NewLocalStore(cfg.Storage.LocalDir, signer, urlPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func buildMailer(cfg *config.Config, logr *zap.Logger) (mailer.Mailer, error) {
	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		return mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			User:      cfg.Email.SMTPUser,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	case config.EmailProviderSendGrid, "":
		return mailer.NewSendGridMailer(mailer.SendGridConfig{
			APIKey:    cfg.Email.APIKey,
			BaseURL:   cfg.Email.BaseURL,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			Timeout:   cfg.Email.Timeout,
		}, logr)
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Email.Provider)
	}
}

// sweepIdleSessions evicts abandoned sessions. When a retention TTL is
// configured, the local store also prunes objects past it.
func sweepIdleSessions(registry *session.Registry, localStore *storage.LocalStore, idleTTL, retentionTTL time.Duration, logr *zap.Logger) {
	if idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if evicted := registry.SweepIdle(idleTTL); len(evicted) > 0 {
			logr.Sugar().Infow("idle sessions evicted", "count", len(evicted))
		}
		if localStore != nil && retentionTTL > 0 {
			if removed, err := localStore.CleanupOlderThan(retentionTTL); err != nil {
				logr.Sugar().Warnw("stored object cleanup failed", "error", err)
			} else if len(removed) > 0 {
				logr.Sugar().Infow("expired stored objects removed", "count", len(removed))
			}
		}
	}
}
