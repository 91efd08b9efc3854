package services

import (
	"context"

	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/jobs"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/storage"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// Services holds all service instances
type Services struct {
	Auth        *AuthService
	User        *UserService
	Balance     *BalanceService
	Transaction *TransactionService
	Draft       *DraftService
	Contact     *ContactService
	Budget      *BudgetService
	Assistant   *AssistantService
	Export      *ExportService
	Email       *EmailService
	Reminder    *ReminderService
	Job         *JobService
}

// NewServices creates all service instances
func NewServices(ctx context.Context, repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config) *Services {
	emailSvc := NewEmailService(cfg)
	balanceSvc := NewBalanceService(repos.Transaction, repos.Contact, NewSnapshotCache(cfg.SnapshotTTL))
	draftSvc := NewDraftService(repos.Draft, repos.Transaction, repos.Contact, balanceSvc)
	budgetSvc := NewBudgetService(repos.Budget, repos.Transaction)

	var model LanguageModel
	if cfg.GeminiAPIKey != "" {
		m, err := NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Assistant disabled", "error", err)
		} else {
			model = m
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, assistant disabled")
	}

	reminderSvc := NewReminderService(repos.Transaction, repos.User, balanceSvc, emailSvc, cfg.ReminderLookahead)

	return &Services{
		Auth:        NewAuthService(repos.User, cfg, worker, emailSvc),
		User:        NewUserService(repos.User),
		Balance:     balanceSvc,
		Transaction: NewTransactionService(repos.Transaction, repos.Contact, balanceSvc),
		Draft:       draftSvc,
		Contact:     NewContactService(repos.Contact, balanceSvc),
		Budget:      budgetSvc,
		Assistant: NewAssistantService(model, draftSvc, balanceSvc, budgetSvc, NewImageService(), store, AssistantConfig{
			RatePerMinute: cfg.AssistantRatePerMinute,
			InsightsTTL:   cfg.InsightsTTL,
		}),
		Export:   NewExportService(balanceSvc),
		Email:    emailSvc,
		Reminder: reminderSvc,
		Job:      NewJobService(worker, reminderSvc, cfg.ReminderInterval),
	}
}
