package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"gorm.io/gorm"
)

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	FindByID(ctx context.Context, userID uint, id string) (*models.Transaction, error)
	FindAllByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	List(ctx context.Context, userID uint, query *ListQuery) ([]models.Transaction, int64, error)
	Create(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, txn *models.Transaction) error
	Delete(ctx context.Context, userID uint, id string) error
	FindDebtsDueBefore(ctx context.Context, cutoff time.Time) ([]models.Transaction, error)
	MarkReminderSent(ctx context.Context, ids []string, at time.Time) error
	SumExpensesByCategory(ctx context.Context, userID uint, from, to time.Time) (map[string]decimal.Decimal, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

var transactionSortColumns = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"type":       "type",
	"category":   "category",
	"created_at": "created_at",
}

func (r *transactionRepository) FindByID(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindAllByUser loads the full set the ledger derives from.
func (r *transactionRepository) FindAllByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&txns).Error
	return txns, err
}

func (r *transactionRepository) List(ctx context.Context, userID uint, query *ListQuery) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("description ILIKE ? OR category ILIKE ? OR contact ILIKE ?", search, search, search)
	}
	if v := query.Filters["type"]; v != "" {
		db = db.Where("type = ?", v)
	}
	if v := query.Filters["account"]; v != "" {
		db = db.Where("account = ?", v)
	}
	if v := query.Filters["category"]; v != "" {
		db = db.Where("category = ?", v)
	}
	if v := query.Filters["contact_id"]; v != "" {
		db = db.Where("contact_id = ?", v)
	}
	if query.Filters["debts"] == "true" {
		db = db.Where("type IN ?", []ledger.TransactionType{
			ledger.TypeCreditReceivable, ledger.TypeCreditPayable,
			ledger.TypeLoanReceivable, ledger.TypeLoanPayable,
		})
	}
	if v := query.Filters["start_date"]; v != "" {
		db = db.Where("date >= ?", v)
	}
	if v := query.Filters["end_date"]; v != "" {
		db = db.Where("date <= ?", v)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(query.orderClause(transactionSortColumns, "date DESC, created_at DESC"))
	err := paginate(db, query).Find(&txns).Error
	return txns, total, err
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return translateWriteError(r.db.WithContext(ctx).Create(txn).Error)
}

func (r *transactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	return translateWriteError(r.db.WithContext(ctx).Save(txn).Error)
}

// Delete removes the row. Payments linked to it are left in place and
// simply stop settling anything.
func (r *transactionRepository) Delete(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindDebtsDueBefore returns receivables and payables of every user whose
// due date is on or before cutoff and that have never been reminded.
func (r *transactionRepository) FindDebtsDueBefore(ctx context.Context, cutoff time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := debtsDueBefore(r.db.WithContext(ctx), cutoff).Find(&txns).Error
	return txns, err
}

// debtsDueBefore scopes db to unreminded debts due by cutoff. A debt is
// reminded once; MarkReminderSent takes it out of every later run.
func debtsDueBefore(db *gorm.DB, cutoff time.Time) *gorm.DB {
	return db.Model(&models.Transaction{}).
		Where("due_date IS NOT NULL AND due_date <= ?", cutoff).
		Where("type IN ?", []ledger.TransactionType{
			ledger.TypeCreditReceivable, ledger.TypeCreditPayable,
			ledger.TypeLoanReceivable, ledger.TypeLoanPayable,
		}).
		Where("reminder_sent_at IS NULL").
		Order("user_id ASC, due_date ASC")
}

func (r *transactionRepository) MarkReminderSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id IN ?", ids).
		Update("reminder_sent_at", at).Error
}

func (r *transactionRepository) SumExpensesByCategory(ctx context.Context, userID uint, from, to time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Category string
		Total    decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?", userID, ledger.TypeExpense, from, to).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	return totals, nil
}
