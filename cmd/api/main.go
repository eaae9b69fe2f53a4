package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent-hub-backend/config"
	_ "talent-hub-backend/docs" // Important for Swagger
	"talent-hub-backend/internal/audit"
	v1 "talent-hub-backend/internal/delivery/http/v1"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/extraction"
	"talent-hub-backend/internal/reconcile"
	"talent-hub-backend/internal/repository/cache"
	"talent-hub-backend/internal/repository/postgres"
	"talent-hub-backend/internal/usecase"
	"talent-hub-backend/internal/workflow"
	"talent-hub-backend/pkg/auth"
	"talent-hub-backend/pkg/database"
	"talent-hub-backend/pkg/logger"
	"talent-hub-backend/pkg/redis"
	"talent-hub-backend/pkg/security"
	"talent-hub-backend/pkg/security/antivirus"
	"talent-hub-backend/pkg/storage"
	"talent-hub-backend/pkg/validation"
)

// @title           Talent Hub CV API
// @version         1.0
// @description     CV versioning and CV-to-profile reconciliation for talent records.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	auditLog := audit.Init("talent-hub-backend", cfg.Environment)
	logger.Log.Info("Starting talent hub backend", "port", cfg.Port, "env", cfg.Environment)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := postgres.Migrate(ctx, dbPool); err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional)
	redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
	case err != nil:
		logger.Log.Warn("Redis unavailable, continuing without cache and limits", "error", err)
	default:
		defer redisClient.Close()
	}

	// 5. Setup Repositories
	cvRepo := postgres.NewTalentCVRepository(dbPool)
	talentRepo := postgres.NewTalentRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	if redisClient != nil {
		catalogRepo = cache.NewCatalogCache(catalogRepo, redisClient, cfg.CatalogCacheTTL)
	}

	// 6. Setup Object Storage
	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up object storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// 7. Setup UseCases
	validate := validation.New()
	detector := reconcile.NewDetector(reconcile.Options{
		DateToleranceDays:     cfg.DuplicateDateToleranceDays,
		MinSharedTechnologies: cfg.DuplicateMinSharedTech,
	})
	cvUC := usecase.NewTalentCVUsecase(cvRepo, store, validate, auditLog)
	compareUC := usecase.NewComparisonUsecase(talentRepo, catalogRepo, detector)
	applier := usecase.NewDecisionApplier(talentRepo, catalogRepo, auditLog)

	// 8. Setup CV Workflow (requires extraction)
	var (
		workflowSvc *workflow.Service
		registry    *workflow.Registry
	)
	generator, err := extraction.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Log.Warn("CV extraction disabled - workflow endpoints will be unavailable", "error", err)
	} else {
		deps := workflow.Deps{
			Store:     store,
			Extractor: extraction.NewService(generator),
			Compare:   compareUC,
			Apply:     applier,
			CVs:       cvUC,
			Audit:     auditLog,
		}
		if redisClient != nil {
			deps.Limiter = security.NewAnalysisLimiter(redisClient, cfg.AnalysisLimitPerHour)
		}
		workflowSvc = workflow.NewService(deps)
		registry = workflow.NewRegistry(workflowSvc, cfg.WorkflowSessionTTL)
	}

	// 9. Setup Upload Scanning
	var scanner antivirus.Scanner = antivirus.NoOpScanner{}
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
		if err := clam.Ping(ctx); err != nil {
			logger.Log.Warn("ClamAV not reachable at startup; uploads fail until it is", "address", cfg.ClamAVAddress, "error", err)
		}
		scanner = clam
	} else {
		logger.Log.Warn("CLAMAV_ADDRESS not configured - CV uploads are not malware scanned")
	}

	// 10. Setup Auth Provider (JWKS, optional)
	var jwksProvider *auth.Provider
	if cfg.JWKSURL != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSURL)
	}

	healthChecks := map[string]usecase.HealthCheck{"database": dbPool.Ping}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// 11. Setup Router
	routerDeps := v1.RouterDeps{
		CVUC:      cvUC,
		CompareUC: compareUC,
		Applier:   applier,
		Catalog:   catalogRepo,
		Store:     store,
		Workflow:  workflowSvc,
		Registry:  registry,
		Scanner:   scanner,
		JWKS:      jwksProvider,
		Health:    usecase.NewHealthUsecase(healthChecks),
		Config:    cfg,
	}
	if redisClient != nil {
		routerDeps.Redis = redisClient
	}
	router := v1.NewRouter(routerDeps)

	// 12. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	auditLog.Sync()

	logger.Log.Info("Server exiting")
}

func newObjectStore(ctx context.Context, cfg *config.Config) (domain.ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Provider:        storage.S3Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}
