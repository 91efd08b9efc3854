package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/metrics"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// DebtReminderMailer delivers reminder digests.
type DebtReminderMailer interface {
	Enabled() bool
	SendDebtReminder(ctx context.Context, user *models.User, cutoff string, items []DebtReminderItem) error
}

// ReminderService emails users about unsettled debts that are due soon
// or overdue.
type ReminderService struct {
	txnRepo   repository.TransactionRepository
	userRepo  repository.UserRepository
	balances  *BalanceService
	mailer    DebtReminderMailer
	lookahead time.Duration
	now       func() time.Time

	mu      sync.Mutex
	lastRun *ReminderRun
}

// ReminderRun summarises the latest completed reminder pass.
type ReminderRun struct {
	At     time.Time `json:"at"`
	Cutoff string    `json:"cutoff"`
	Users  int       `json:"users"`
	Sent   int       `json:"sent"`
	Failed int       `json:"failed"`
}

func NewReminderService(txnRepo repository.TransactionRepository, userRepo repository.UserRepository, balances *BalanceService, mailer DebtReminderMailer, lookahead time.Duration) *ReminderService {
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	return &ReminderService{
		txnRepo:   txnRepo,
		userRepo:  userRepo,
		balances:  balances,
		mailer:    mailer,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// SendDueReminders is the scheduled job body. It returns the number of
// digests sent. A failure for one user does not stop the others.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	if !s.mailer.Enabled() {
		logger.Debug("Email disabled, skipping debt reminders")
		return 0, nil
	}
	now := s.now()
	cutoff := startOfDay(now.Add(s.lookahead))
	candidates, err := s.txnRepo.FindDebtsDueBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	byUser := make(map[uint][]models.Transaction)
	for _, t := range candidates {
		byUser[t.UserID] = append(byUser[t.UserID], t)
	}

	userIDs := make([]uint, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	sent := 0
	var errs []error
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		ok, err := s.remindUser(ctx, userID, byUser[userID], cutoff, now)
		if err != nil {
			logger.Error("Debt reminder failed", "user_id", userID, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			sent++
		}
	}

	logger.Info("Debt reminders processed", "users", len(userIDs), "sent", sent)
	s.record(ReminderRun{At: now, Cutoff: cutoff.Format(models.DateLayout), Users: len(userIDs), Sent: sent, Failed: len(errs)})
	return sent, errors.Join(errs...)
}

func (s *ReminderService) record(run ReminderRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = &run
}

// LastRun returns the latest completed pass, or nil before the first.
func (s *ReminderService) LastRun() *ReminderRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

// Lookahead is how far past today a due date still counts as due soon.
func (s *ReminderService) Lookahead() time.Duration {
	return s.lookahead
}

// EmailEnabled reports whether reminders can be delivered at all.
func (s *ReminderService) EmailEnabled() bool {
	return s.mailer.Enabled()
}

func (s *ReminderService) remindUser(ctx context.Context, userID uint, txns []models.Transaction, cutoff, now time.Time) (bool, error) {
	snap, err := s.balances.snapshot(ctx, userID)
	if err != nil {
		return false, err
	}

	today := startOfDay(now)
	items := make([]DebtReminderItem, 0, len(txns))
	ids := make([]string, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		debt, ok := snap.Debts[t.ID]
		if !ok || debt.Status == ledger.StatusSettled {
			continue
		}
		direction := "payable"
		if t.Type.IsReceivable() {
			direction = "receivable"
		}
		contact := ""
		if t.Contact != nil {
			contact = *t.Contact
		}
		items = append(items, DebtReminderItem{
			Description: t.Description,
			Contact:     contact,
			Direction:   direction,
			Remaining:   debt.Remaining.StringFixed(2),
			DueDate:     t.DueDate.Format(models.DateLayout),
			Overdue:     t.DueDate.Before(today),
		})
		ids = append(ids, t.ID)
	}
	if len(items) == 0 {
		return false, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.IsActive() {
		return false, nil
	}

	if err := s.mailer.SendDebtReminder(ctx, user, cutoff.Format(models.DateLayout), items); err != nil {
		return false, err
	}
	if err := s.txnRepo.MarkReminderSent(ctx, ids, now); err != nil {
		return false, err
	}
	metrics.RemindersSent.Inc()
	return true, nil
}
