package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hiring-workflow/config"
	v1 "go-hiring-workflow/internal/delivery/http/v1"
	"go-hiring-workflow/internal/notification"
	"go-hiring-workflow/internal/repository/postgres"
	"go-hiring-workflow/internal/repository/rediscache"
	"go-hiring-workflow/internal/usecase"
	"go-hiring-workflow/pkg/auth"
	"go-hiring-workflow/pkg/database"
	"go-hiring-workflow/pkg/email"
	"go-hiring-workflow/pkg/logger"
	"go-hiring-workflow/pkg/redis"
)

// @title           Hiring Workflow API
// @version         1.0
// @description     Job posting lifecycle and candidate assessment backend using Clean Architecture.
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

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting hiring workflow backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; everything degrades gracefully without it)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, continuing without board cache", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Repositories
	postingRepo := postgres.NewPostingRepository(dbPool)
	sessionRepo := postgres.NewSessionRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 6. Setup Email Notifier
	emailService := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - workflow notifications will be logged only")
	}
	notifier := notification.NewEmailNotifier(emailService, cfg.NotifyEmailTo)

	// 7. Setup Board Cache
	boardCache := rediscache.NewPublishedBoardCache(
		redis.Client(), time.Duration(cfg.BoardCacheTTLSeconds)*time.Second)

	// 8. Setup UseCases
	postingUC := usecase.NewPostingUsecase(postingRepo, boardCache, notifier)
	approvalUC := usecase.NewApprovalUsecase(postingRepo, boardCache, notifier)
	assessmentUC := usecase.NewAssessmentUsecase(sessionRepo, applicationRepo, postingRepo, notifier)
	dashboardUC := usecase.NewDashboardUsecase(postingRepo, sessionRepo, boardCache)

	// 9. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSURL)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		PostingUC:    postingUC,
		ApprovalUC:   approvalUC,
		AssessmentUC: assessmentUC,
		DashboardUC:  dashboardUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
