package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// Sends the welcome and debt reminder templates to TEST_EMAIL_TO so they
// can be checked in a real inbox.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Setup("development")

	emailService := services.NewEmailService(cfg)
	if !emailService.Enabled() {
		log.Fatal("Email is disabled: set RESEND_API_KEY, FROM_EMAIL and ENABLE_EMAIL_NOTIFICATIONS=true")
	}

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com")
	}

	user := &models.User{
		FullName: "Test User",
		Email:    toEmail,
		Currency: models.DefaultCurrency,
		Language: models.LanguageEN,
	}
	if lang := os.Getenv("TEST_EMAIL_LANGUAGE"); lang != "" {
		user.Language = lang
	}

	ctx := context.Background()

	log.Printf("Sending welcome email to %s...", toEmail)
	if err := emailService.SendWelcome(ctx, user); err != nil {
		log.Fatalf("Failed to send welcome email: %v", err)
	}
	log.Println("Welcome email sent")

	today := time.Now()
	items := []services.DebtReminderItem{
		{Description: "Van repair", Contact: "Carlos", Direction: "receivable", Remaining: "120.00", DueDate: today.AddDate(0, 0, -2).Format(models.DateLayout), Overdue: true},
		{Description: "Fuel advance", Contact: "Rosa", Direction: "payable", Remaining: "45.50", DueDate: today.AddDate(0, 0, 1).Format(models.DateLayout)},
	}

	log.Printf("Sending debt reminder email to %s...", toEmail)
	if err := emailService.SendDebtReminder(ctx, user, today.AddDate(0, 0, 2).Format(models.DateLayout), items); err != nil {
		log.Fatalf("Failed to send debt reminder email: %v", err)
	}
	log.Println("Debt reminder email sent")
}
