package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// DebtReminderItem is one row of a reminder digest.
type DebtReminderItem struct {
	Description string
	Contact     string
	Direction   string
	Remaining   string
	DueDate     string
	Overdue     bool
}

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config:       cfg,
		resendClient: resend.NewClient(cfg.ResendAPIKey),
	}
}

// Enabled reports whether emails are configured to go out at all.
func (s *EmailService) Enabled() bool {
	return s.config.EnableEmailNotifications && s.config.ResendAPIKey != ""
}

// checkEmailPreconditions reports whether an email may be sent to user.
// Disabled notifications are not an error.
func (s *EmailService) checkEmailPreconditions(user *models.User, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("Email notifications disabled, skipping", "operation", operation)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, errors.New("RESEND_API_KEY is not set")
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

func (s *EmailService) SendWelcome(ctx context.Context, user *models.User) error {
	ok, err := s.checkEmailPreconditions(user, "welcome")
	if !ok {
		return err
	}

	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}
	return s.send(user.Email, "Welcome to VanTrack", "welcome.html", data)
}

// SendDebtReminder sends one digest listing every debt in items.
func (s *EmailService) SendDebtReminder(ctx context.Context, user *models.User, cutoff string, items []DebtReminderItem) error {
	if len(items) == 0 {
		return nil
	}
	ok, err := s.checkEmailPreconditions(user, "debt reminder")
	if !ok {
		return err
	}

	data := struct {
		Name   string
		Cutoff string
		Debts  []DebtReminderItem
		AppURL string
	}{
		Name:   user.FullName,
		Cutoff: cutoff,
		Debts:  items,
		AppURL: s.config.AppURL,
	}
	subject := fmt.Sprintf("%d debt(s) due soon", len(items))
	return s.send(user.Email, subject, "debt_reminder.html", data)
}

func (s *EmailService) send(to, subject, tmpl string, data any) error {
	body, err := s.renderTemplate(tmpl, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
