package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

const defaultSnapshotTTL = 5 * time.Minute

// ledgerSnapshot is everything derived from one user's transaction set.
// It is cached and shared, so callers must treat it as read-only.
type ledgerSnapshot struct {
	Transactions []models.Transaction
	ByID         map[string]*models.Transaction
	Summary      ledger.Summary
	Debts        map[string]ledger.Debt
	Dangling     []string
}

// BalanceService derives balances and debt views from the ledger.
type BalanceService struct {
	txnRepo     repository.TransactionRepository
	contactRepo repository.ContactRepository
	cache       *cache.Cache
	now         func() time.Time
}

// NewBalanceService creates a new balance service. A nil cache disables
// caching.
func NewBalanceService(txnRepo repository.TransactionRepository, contactRepo repository.ContactRepository, c *cache.Cache) *BalanceService {
	return &BalanceService{
		txnRepo:     txnRepo,
		contactRepo: contactRepo,
		cache:       c,
		now:         time.Now,
	}
}

// NewSnapshotCache builds the cache the balance service expects. Entries
// expire after ttl even without an explicit invalidation.
func NewSnapshotCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return cache.New(ttl, 2*ttl)
}

func snapshotKey(userID uint) string {
	return fmt.Sprintf("ledger:%d", userID)
}

// Invalidate drops the user's cached derivation. Every mutation of a
// transaction must call it.
func (s *BalanceService) Invalidate(userID uint) {
	if s.cache != nil {
		s.cache.Delete(snapshotKey(userID))
	}
}

func (s *BalanceService) snapshot(ctx context.Context, userID uint) (*ledgerSnapshot, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(snapshotKey(userID)); ok {
			return cached.(*ledgerSnapshot), nil
		}
	}

	txns, err := s.txnRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	entries := models.Entries(txns)
	snap := &ledgerSnapshot{
		Transactions: txns,
		ByID:         make(map[string]*models.Transaction, len(txns)),
		Summary:      ledger.Reduce(entries),
		Debts:        ledger.Settle(entries),
		Dangling:     ledger.DanglingPayments(entries),
	}
	for i := range txns {
		snap.ByID[txns[i].ID] = &txns[i]
	}
	if len(snap.Dangling) > 0 {
		logger.Debug("Ledger has dangling payment links", "user_id", userID, "count", len(snap.Dangling))
	}

	if s.cache != nil {
		s.cache.SetDefault(snapshotKey(userID), snap)
	}
	return snap, nil
}

// BalanceSummary is the response of GET /balances.
type BalanceSummary struct {
	ledger.Summary
	NetWorth         decimal.Decimal `json:"net_worth"`
	Liquid           decimal.Decimal `json:"liquid"`
	OpenReceivables  int             `json:"open_receivables"`
	OpenPayables     int             `json:"open_payables"`
	DanglingPayments int             `json:"dangling_payments"`
}

// Summary returns the four-way balance plus net worth.
func (s *BalanceService) Summary(ctx context.Context, userID uint) (*BalanceSummary, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &BalanceSummary{
		Summary:          snap.Summary,
		NetWorth:         snap.Summary.NetWorth(),
		Liquid:           snap.Summary.Liquid(),
		DanglingPayments: len(snap.Dangling),
	}
	for _, d := range snap.Debts {
		if d.Status == ledger.StatusSettled {
			continue
		}
		if d.Type.IsReceivable() {
			out.OpenReceivables++
		} else {
			out.OpenPayables++
		}
	}
	return out, nil
}

// DebtFilter narrows Debts. Zero value returns every unsettled debt.
type DebtFilter struct {
	Direction      string // "receivable", "payable" or empty
	Status         ledger.DebtStatus
	ContactID      string
	IncludeSettled bool
	OverdueOnly    bool
}

// DebtView is one receivable or payable with its derived settlement.
type DebtView struct {
	ID          string                 `json:"id"`
	Type        ledger.TransactionType `json:"type"`
	Date        string                 `json:"date"`
	DueDate     *string                `json:"due_date"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Contact     *string                `json:"contact"`
	ContactID   *string                `json:"contact_id"`
	Amount      decimal.Decimal        `json:"amount"`
	Paid        decimal.Decimal        `json:"paid"`
	Remaining   decimal.Decimal        `json:"remaining_amount"`
	Status      ledger.DebtStatus      `json:"status"`
	Overpaid    bool                   `json:"overpaid"`
	Overpayment decimal.Decimal        `json:"overpayment"`
	Overdue     bool                   `json:"overdue"`
	Payments    []string               `json:"payments"`
}

func (s *BalanceService) debtView(txn *models.Transaction, d ledger.Debt, today time.Time) DebtView {
	resp := txn.ToResponse(nil)
	payments := d.Payments
	if payments == nil {
		payments = []string{}
	}
	return DebtView{
		ID:          txn.ID,
		Type:        txn.Type,
		Date:        resp.Date,
		DueDate:     resp.DueDate,
		Description: txn.Description,
		Category:    txn.Category,
		Contact:     txn.Contact,
		ContactID:   txn.ContactID,
		Amount:      d.Amount,
		Paid:        d.Paid,
		Remaining:   d.Remaining,
		Status:      d.Status,
		Overpaid:    d.Overpaid,
		Overpayment: d.Overpayment,
		Overdue:     d.Status != ledger.StatusSettled && txn.DueDate != nil && txn.DueDate.Before(today),
		Payments:    payments,
	}
}

// Debts lists receivables and payables, soonest due first.
func (s *BalanceService) Debts(ctx context.Context, userID uint, filter DebtFilter) ([]DebtView, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	views := make([]DebtView, 0, len(snap.Debts))
	for id, d := range snap.Debts {
		if !filter.matches(d) {
			continue
		}
		view := s.debtView(snap.ByID[id], d, today)
		if filter.OverdueOnly && !view.Overdue {
			continue
		}
		views = append(views, view)
	}
	sortDebtViews(views)
	return views, nil
}

func (f DebtFilter) matches(d ledger.Debt) bool {
	if !f.IncludeSettled && f.Status == "" && d.Status == ledger.StatusSettled {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	switch f.Direction {
	case "receivable":
		if !d.Type.IsReceivable() {
			return false
		}
	case "payable":
		if !d.Type.IsPayable() {
			return false
		}
	}
	if f.ContactID != "" && d.ContactID != f.ContactID {
		return false
	}
	return true
}

// sortDebtViews orders by due date (undated last), then by date and ID so
// output is stable across map iteration.
func sortDebtViews(views []DebtView) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && *a.DueDate != *b.DueDate:
			return *a.DueDate < *b.DueDate
		case a.Date != b.Date:
			return a.Date < b.Date
		}
		return a.ID < b.ID
	})
}

// ContactLedger is the debt position between the user and one contact.
type ContactLedger struct {
	Contact      models.Contact               `json:"contact"`
	Debts        []DebtView                   `json:"debts"`
	Transactions []models.TransactionResponse `json:"transactions"`
	OwedToUser   decimal.Decimal              `json:"owed_to_user"`
	OwedByUser   decimal.Decimal              `json:"owed_by_user"`
	Net          decimal.Decimal              `json:"net"`
}

// ContactLedger gathers every transaction that references the contact by
// ID or, for older records, by name.
func (s *BalanceService) ContactLedger(ctx context.Context, userID uint, contactID string) (*ContactLedger, error) {
	contact, err := s.contactRepo.FindByID(ctx, userID, contactID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref := contact.Ref()
	today := startOfDay(s.now())
	out := &ContactLedger{
		Contact:      *contact,
		Debts:        []DebtView{},
		Transactions: []models.TransactionResponse{},
		OwedToUser:   decimal.Zero,
		OwedByUser:   decimal.Zero,
	}
	for i := range snap.Transactions {
		txn := &snap.Transactions[i]
		if !ledger.BelongsToContact(txn.Entry(), ref) {
			continue
		}
		out.Transactions = append(out.Transactions, txn.ToResponse(snap.Debts))

		d, ok := snap.Debts[txn.ID]
		if !ok {
			continue
		}
		out.Debts = append(out.Debts, s.debtView(txn, d, today))
		if d.Type.IsReceivable() {
			out.OwedToUser = out.OwedToUser.Add(d.Remaining)
		} else {
			out.OwedByUser = out.OwedByUser.Add(d.Remaining)
		}
	}
	sortDebtViews(out.Debts)
	out.Net = out.OwedToUser.Sub(out.OwedByUser)
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
