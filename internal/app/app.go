// Package app wires configuration, database, workers and the HTTP server
// into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"academy_backend/database"
	"academy_backend/internal/auth"
	"academy_backend/internal/blockchain"
	"academy_backend/internal/config"
	"academy_backend/internal/email"
	"academy_backend/internal/handlers"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/pdf"
	"academy_backend/internal/repositories"
	"academy_backend/internal/routes"
	"academy_backend/internal/services"
	"academy_backend/internal/sessions"
	"academy_backend/internal/storage"
	"academy_backend/internal/tasks"
	"academy_backend/internal/tenant"
	"academy_backend/internal/validator"
	"academy_backend/internal/vault"
	"academy_backend/internal/workers"
)

const reconcileSchedule = "@hourly"

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	if err := validator.Register(); err != nil {
		logger.Fatal("Failed to register validators", "error", err)
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Database connected")

	rdb := connectRedis(cfg.Redis.URL)

	cipher, err := vault.New(cfg.Vault.EncryptionKey)
	if err != nil {
		logger.Fatal("Invalid encryption key", "error", err)
	}

	store, err := storage.New(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		Prefix:    cfg.Storage.Prefix,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	repos := repositories.NewRegistry(db)
	resolver := tenant.NewResolver(repos.Sites, cfg.Tenant.BaseDomain,
		time.Duration(cfg.Tenant.CacheTTLSec)*time.Second)
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTTLMin)*time.Minute,
		time.Duration(cfg.JWT.RefreshTTLDays)*24*time.Hour)

	sessionStore := buildSessions(rdb)
	queue := buildQueue(cfg, rdb)

	container := services.NewContainer(services.Deps{
		Repos:      repos,
		JWT:        jwtManager,
		Sessions:   sessionStore,
		Queue:      queue,
		Cipher:     cipher,
		Storage:    store,
		Renderer:   pdf.NewRenderer(),
		Minter:     blockchain.NewStubMinter(),
		Resolver:   resolver,
		BaseDomain: cfg.Tenant.BaseDomain,
	})

	if err := seedRootTenant(repos, cfg.Tenant.RootSubdomain); err != nil {
		logger.Fatal("Failed to seed root tenant", "error", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	emailWorker := tasks.NewEmailWorker(queue, repos.Sites, cipher,
		email.NewTemplateManager(cfg.Email.TemplatesDir),
		email.NewGomailSender(),
		email.SMTPSettings{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		},
		cfg.Tasks.Workers,
	)
	go emailWorker.Run(workerCtx)

	reconciler := workers.NewReconcileWorker(repos)
	if err := reconciler.Start(reconcileSchedule); err != nil {
		logger.Fatal("Failed to schedule reconciliation", "error", err)
	}

	engine := buildEngine(cfg.Server.Env)
	routes.RegisterRoutes(engine,
		&routes.Handlers{
			Health:        handlers.NewHealthHandler(db, rdb),
			Site:          handlers.NewSiteHandler(cipher),
			Auth:          handlers.NewAuthHandler(container.Auth),
			Onboarding:    handlers.NewOnboardingHandler(container.Onboarding),
			Users:         handlers.NewUserHandler(container.Users),
			Courses:       handlers.NewCourseHandler(container.Courses, container.Audit),
			Enrollments:   handlers.NewEnrollmentHandler(container.Enrollments),
			Progress:      handlers.NewProgressHandler(container.Progress),
			Quizzes:       handlers.NewQuizHandler(container.Quizzes),
			Assignments:   handlers.NewAssignmentHandler(container.Assignments),
			Tokens:        handlers.NewTokenHandler(container.Tokens, container.Audit),
			Certificates:  handlers.NewCertificateHandler(container.Certificates),
			Notifications: handlers.NewNotificationHandler(container.Notifications),
			Admin: handlers.NewAdminHandler(container.Users, container.Audit,
				repos.Sites, cipher, resolver, reconciler),
		},
		routes.Deps{
			Resolver:      resolver,
			JWT:           jwtManager,
			Users:         repos.Users,
			Sites:         repos.Sites,
			Cipher:        cipher,
			RootSubdomain: cfg.Tenant.RootSubdomain,
		},
	)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	reconciler.Stop()
	stopWorkers()
	if err := queue.Close(); err != nil {
		logger.Error("Queue close error", "error", err)
	}
	logger.Info("Server stopped")
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		logger.Warn("Redis not configured, using in-memory sessions and in-process queue")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Fatal("Invalid redis URL", "error", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, degrading to in-memory backends", "error", err)
		return nil
	}
	logger.Info("Redis connected")
	return client
}

func buildSessions(rdb *redis.Client) sessions.Store {
	if rdb != nil {
		return sessions.NewRedisStore(rdb)
	}
	return sessions.NewMemoryStore()
}

func buildQueue(cfg *config.Config, rdb *redis.Client) tasks.Queue {
	if cfg.Tasks.Backend == "redis" && rdb != nil {
		return tasks.NewRedisQueue(rdb)
	}
	return tasks.NewInProcessQueue(0)
}

func buildEngine(env string) *gin.Engine {
	if env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.New()
}

// seedRootTenant guarantees the platform-root site exists so the base
// domain resolves before any tenant registers.
func seedRootTenant(repos *repositories.Registry, rootSubdomain string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repos.Sites.FindBySubdomain(ctx, rootSubdomain)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	site := &models.Site{
		Subdomain: rootSubdomain,
		Name:      "Platform Root",
		IsActive:  true,
	}
	site.ID = uuid.NewString()
	if err := repos.Sites.Create(ctx, site); err != nil {
		return err
	}
	logger.Info("Root tenant seeded", "subdomain", rootSubdomain)
	return nil
}
