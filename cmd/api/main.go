package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/vantrack-api/docs" // Swagger docs
	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/database"
	"github.com/sjperalta/vantrack-api/internal/handlers"
	"github.com/sjperalta/vantrack-api/internal/jobs"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/sjperalta/vantrack-api/internal/storage"
	"github.com/sjperalta/vantrack-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title VanTrack API
// @version 1.0
// @description Personal ledger: balances, receivables and payables, drafts and contacts.

// @contact.name API Support
// @contact.email support@vantrack.io

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.SetupWithLevel(cfg.Environment, logger.ParseLevel(cfg.LogLevel))

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EnableEmailNotifications || cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Email disabled: welcome mails and debt reminders will be skipped")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Receipt images
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(worker.Context(), repos, worker, store, cfg)

	scheduleJobs(worker, svcs, cfg)

	h := handlers.NewHandlers(svcs, cfg)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// Everything below is scoped to the token's user
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/me", h.User.Me)
			protected.GET("/settings", h.User.Settings)
			protected.PUT("/settings", h.User.UpdateSettings)

			transactions := protected.Group("/transactions")
			{
				transactions.GET("", h.Transaction.Index)
				transactions.POST("", h.Transaction.Create)
				transactions.GET("/:transaction_id", h.Transaction.Show)
				transactions.PUT("/:transaction_id", h.Transaction.Update)
				transactions.DELETE("/:transaction_id", h.Transaction.Delete)
			}

			protected.GET("/balances", h.Balance.Summary)
			protected.GET("/debts", h.Balance.Debts)

			contacts := protected.Group("/contacts")
			{
				contacts.GET("", h.Contact.Index)
				contacts.POST("", h.Contact.Create)
				contacts.GET("/:contact_id", h.Contact.Show)
				contacts.PUT("/:contact_id", h.Contact.Update)
				contacts.DELETE("/:contact_id", h.Contact.Delete)
				contacts.GET("/:contact_id/ledger", h.Balance.ContactLedger)
			}

			drafts := protected.Group("/drafts")
			{
				drafts.GET("", h.Draft.Index)
				drafts.POST("", h.Draft.Create)
				drafts.GET("/:draft_id", h.Draft.Show)
				drafts.PUT("/:draft_id", h.Draft.Update)
				drafts.POST("/:draft_id/confirm", h.Draft.Confirm)
				drafts.POST("/:draft_id/discard", h.Draft.Discard)
			}

			// Static route first so "progress" is not matched as :budget_id
			budgets := protected.Group("/budgets")
			{
				budgets.GET("/progress", h.Budget.Progress)
				budgets.GET("", h.Budget.Index)
				budgets.POST("", h.Budget.Create)
				budgets.PUT("/:budget_id", h.Budget.Update)
				budgets.DELETE("/:budget_id", h.Budget.Delete)
			}

			assistant := protected.Group("/assistant")
			{
				assistant.POST("/parse", h.Assistant.Parse)
				assistant.POST("/receipt", h.Assistant.Receipt)
			}
			protected.GET("/insights", h.Assistant.Insights)

			protected.GET("/exports/transactions", h.Export.Transactions)
			protected.GET("/jobs/status", h.Job.Status)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	if cfg.ReminderInterval <= 0 {
		logger.Info("Debt reminders not scheduled")
		return
	}

	worker.ScheduleEvery(cfg.ReminderInterval, func(ctx context.Context) error {
		logger.Info("[Job] Sending debt reminders...")
		sent, err := svcs.Reminder.SendDueReminders(ctx)
		if err != nil {
			return err
		}
		logger.Info("[Job] Debt reminders done", "sent", sent)
		return nil
	})

	logger.Info("Scheduled recurring jobs", "reminder_interval", cfg.ReminderInterval)
}
