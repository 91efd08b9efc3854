package services

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"gorm.io/gorm"
)

// memTxnRepo is an in-memory TransactionRepository.
type memTxnRepo struct {
	repository.TransactionRepository
	rows     map[string]models.Transaction
	reminded map[string]time.Time
	loads    int
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{rows: map[string]models.Transaction{}, reminded: map[string]time.Time{}}
}

func (m *memTxnRepo) FindByID(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (m *memTxnRepo) FindAllByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	m.loads++
	out := []models.Transaction{}
	for _, t := range m.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memTxnRepo) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Transaction, int64, error) {
	all, _ := m.FindAllByUser(ctx, userID)
	return all, int64(len(all)), nil
}

func (m *memTxnRepo) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	m.rows[txn.ID] = *txn
	return nil
}

func (m *memTxnRepo) Update(ctx context.Context, txn *models.Transaction) error {
	if _, ok := m.rows[txn.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rows[txn.ID] = *txn
	return nil
}

func (m *memTxnRepo) Delete(ctx context.Context, userID uint, id string) error {
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTxnRepo) FindDebtsDueBefore(ctx context.Context, cutoff time.Time) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range m.rows {
		if t.Type.IsDebt() && t.DueDate != nil && !t.DueDate.After(cutoff) {
			if _, done := m.reminded[t.ID]; !done {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTxnRepo) MarkReminderSent(ctx context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		m.reminded[id] = at
	}
	return nil
}

func (m *memTxnRepo) SumExpensesByCategory(ctx context.Context, userID uint, from, to time.Time) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, t := range m.rows {
		if t.UserID != userID || t.Type != ledger.TypeExpense || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out, nil
}

func (m *memTxnRepo) count() int { return len(m.rows) }

// memContactRepo is an in-memory ContactRepository.
type memContactRepo struct {
	repository.ContactRepository
	rows map[string]models.Contact
	txns *memTxnRepo
}

func newMemContactRepo(txns *memTxnRepo) *memContactRepo {
	return &memContactRepo{rows: map[string]models.Contact{}, txns: txns}
}

func (m *memContactRepo) FindByID(ctx context.Context, userID uint, id string) (*models.Contact, error) {
	c, ok := m.rows[id]
	if !ok || c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *memContactRepo) FindAllByUser(ctx context.Context, userID uint) ([]models.Contact, error) {
	var out []models.Contact
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memContactRepo) Create(ctx context.Context, c *models.Contact) error {
	if c.Email != nil {
		for _, existing := range m.rows {
			if existing.UserID == c.UserID && existing.Email != nil && strings.EqualFold(*existing.Email, *c.Email) {
				return repository.ErrDuplicateKey
			}
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.rows[c.ID] = *c
	return nil
}

func (m *memContactRepo) Update(ctx context.Context, c *models.Contact) error {
	m.rows[c.ID] = *c
	return nil
}

func (m *memContactRepo) Delete(ctx context.Context, userID uint, id string) error {
	c, ok := m.rows[id]
	if !ok || c.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	if m.txns != nil {
		for tid, t := range m.txns.rows {
			if t.ContactID != nil && *t.ContactID == id {
				t.ContactID = nil
				m.txns.rows[tid] = t
			}
		}
	}
	return nil
}

// memDraftRepo is an in-memory DraftRepository that mirrors the guarded
// updates of the SQL implementation.
type memDraftRepo struct {
	repository.DraftRepository
	rows     map[string]models.Draft
	order    []string
	txns     *memTxnRepo
	contacts *memContactRepo
}

func newMemDraftRepo(txns *memTxnRepo, contacts *memContactRepo) *memDraftRepo {
	return &memDraftRepo{rows: map[string]models.Draft{}, txns: txns, contacts: contacts}
}

func (m *memDraftRepo) FindByID(ctx context.Context, userID uint, id string) (*models.Draft, error) {
	d, ok := m.rows[id]
	if !ok || d.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (m *memDraftRepo) ListByStatus(ctx context.Context, userID uint, status string) ([]models.Draft, error) {
	out := []models.Draft{}
	for _, id := range m.order {
		d, ok := m.rows[id]
		if !ok || d.UserID != userID {
			continue
		}
		if status == "" || d.ActionStatus == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDraftRepo) Create(ctx context.Context, d *models.Draft) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.ActionStatus = models.DraftStatusPending
	m.rows[d.ID] = *d
	m.order = append(m.order, d.ID)
	return nil
}

func (m *memDraftRepo) CreateBatch(ctx context.Context, drafts []models.Draft) error {
	for i := range drafts {
		if err := m.Create(ctx, &drafts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memDraftRepo) Update(ctx context.Context, d *models.Draft) error {
	stored, ok := m.rows[d.ID]
	if !ok || stored.ActionStatus != models.DraftStatusPending {
		return repository.ErrStaleState
	}
	m.rows[d.ID] = *d
	return nil
}

func (m *memDraftRepo) Discard(ctx context.Context, d *models.Draft) error {
	stored, ok := m.rows[d.ID]
	if !ok || stored.ActionStatus != models.DraftStatusPending {
		return repository.ErrStaleState
	}
	m.rows[d.ID] = *d
	return nil
}

func (m *memDraftRepo) Confirm(ctx context.Context, d *models.Draft, txn *models.Transaction, contact *models.Contact) error {
	stored, ok := m.rows[d.ID]
	if !ok || stored.ActionStatus != models.DraftStatusPending {
		return repository.ErrStaleState
	}
	if contact != nil {
		if err := m.contacts.Create(ctx, contact); err != nil {
			return err
		}
		txn.ContactID = &contact.ID
	}
	if err := m.txns.Create(ctx, txn); err != nil {
		return err
	}
	d.TransactionID = &txn.ID
	d.ContactID = txn.ContactID
	m.rows[d.ID] = *d
	return nil
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	repository.UserRepository
	rows   map[uint]models.User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: map[uint]models.User{}, nextID: 1}
}

func (m *memUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, err := m.FindByEmail(ctx, u.Email); err == nil {
		return repository.ErrDuplicateKey
	}
	u.ID = m.nextID
	m.nextID++
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUserRepo) UpdateSettings(ctx context.Context, userID uint, s models.Settings) error {
	u, ok := m.rows[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Currency, u.Language = s.Currency, s.Language
	m.rows[userID] = u
	return nil
}

// memBudgetRepo is an in-memory BudgetRepository.
type memBudgetRepo struct {
	repository.BudgetRepository
	rows map[string]models.Budget
}

func (m *memBudgetRepo) FindByID(ctx context.Context, userID uint, id string) (*models.Budget, error) {
	b, ok := m.rows[id]
	if !ok || b.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (m *memBudgetRepo) ListByMonth(ctx context.Context, userID uint, month string) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range m.rows {
		if b.UserID == userID && (month == "" || b.Month == month) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *memBudgetRepo) Create(ctx context.Context, b *models.Budget) error {
	for _, existing := range m.rows {
		if existing.UserID == b.UserID && existing.Category == b.Category && existing.Month == b.Month {
			return repository.ErrDuplicateKey
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.rows[b.ID] = *b
	return nil
}

func (m *memBudgetRepo) Update(ctx context.Context, b *models.Budget) error {
	m.rows[b.ID] = *b
	return nil
}

func (m *memBudgetRepo) Delete(ctx context.Context, userID uint, id string) error {
	b, ok := m.rows[id]
	if !ok || b.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

// ledgerFixture wires the ledger services over in-memory repositories.
type ledgerFixture struct {
	txns     *memTxnRepo
	contacts *memContactRepo
	drafts   *memDraftRepo
	balances *BalanceService
	txnSvc   *TransactionService
	draftSvc *DraftService
	now      time.Time
}

const testUser uint = 7

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	txns := newMemTxnRepo()
	contacts := newMemContactRepo(txns)
	drafts := newMemDraftRepo(txns, contacts)
	balances := NewBalanceService(txns, contacts, NewSnapshotCache(time.Minute))

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	balances.now = clock

	txnSvc := NewTransactionService(txns, contacts, balances)
	txnSvc.now = clock
	draftSvc := NewDraftService(drafts, txns, contacts, balances)
	draftSvc.now = clock

	return &ledgerFixture{
		txns:     txns,
		contacts: contacts,
		drafts:   drafts,
		balances: balances,
		txnSvc:   txnSvc,
		draftSvc: draftSvc,
		now:      now,
	}
}

func (f *ledgerFixture) addContact(t *testing.T, name string) models.Contact {
	t.Helper()
	c := models.Contact{ID: uuid.NewString(), UserID: testUser, Name: name}
	f.contacts.rows[c.ID] = c
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}
