package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"gorm.io/gorm"
)

// Transaction is a committed financial event. Remaining amount and status
// are never stored; they are derived from the user's full set on read.
type Transaction struct {
	ID                  string                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uint                   `gorm:"not null;index" json:"user_id"`
	Date                time.Time              `gorm:"type:date;not null;index" json:"date"`
	DueDate             *time.Time             `gorm:"type:date;index" json:"due_date"`
	Amount              decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type                ledger.TransactionType `gorm:"not null;index" json:"type"`
	Account             ledger.Account         `json:"account"`
	Category            string                 `gorm:"index" json:"category"`
	Description         string                 `json:"description"`
	Contact             *string                `json:"contact"`
	ContactID           *string                `gorm:"type:uuid;index" json:"contact_id"`
	LinkedTransactionID *string                `gorm:"type:uuid;index" json:"linked_transaction_id"`
	DraftID             *string                `gorm:"type:uuid" json:"draft_id"`
	ReminderSentAt      *time.Time             `json:"-"`
	CreatedAt           time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns a UUID when the caller did not
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Entry returns the ledger view of the transaction.
func (t *Transaction) Entry() ledger.Entry {
	return ledger.Entry{
		ID:                  t.ID,
		Type:                t.Type,
		Account:             t.Account,
		Amount:              t.Amount,
		LinkedTransactionID: stringValue(t.LinkedTransactionID),
		ContactID:           stringValue(t.ContactID),
		Contact:             stringValue(t.Contact),
	}
}

// IsDebt returns true for receivables and payables
func (t *Transaction) IsDebt() bool {
	return t.Type.IsDebt()
}

// Entries converts a slice of transactions for the ledger.
func Entries(txns []Transaction) []ledger.Entry {
	entries := make([]ledger.Entry, len(txns))
	for i := range txns {
		entries[i] = txns[i].Entry()
	}
	return entries
}

// TransactionResponse is the JSON response format for transactions.
// RemainingAmount, Status and Overpaid are only set for debts.
type TransactionResponse struct {
	ID                  string                 `json:"id"`
	Date                string                 `json:"date"`
	DueDate             *string                `json:"due_date"`
	Amount              decimal.Decimal        `json:"amount"`
	Type                ledger.TransactionType `json:"type"`
	Account             ledger.Account         `json:"account,omitempty"`
	Category            string                 `json:"category"`
	Description         string                 `json:"description"`
	Contact             *string                `json:"contact"`
	ContactID           *string                `json:"contact_id"`
	LinkedTransactionID *string                `json:"linked_transaction_id"`
	DraftID             *string                `json:"draft_id,omitempty"`
	RemainingAmount     *decimal.Decimal       `json:"remaining_amount,omitempty"`
	Status              ledger.DebtStatus      `json:"status,omitempty"`
	Overpaid            bool                   `json:"overpaid,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// ToResponse converts Transaction to TransactionResponse, filling the
// derived debt fields from debts when the transaction is one.
func (t *Transaction) ToResponse(debts map[string]ledger.Debt) TransactionResponse {
	resp := TransactionResponse{
		ID:                  t.ID,
		Date:                t.Date.Format(DateLayout),
		DueDate:             formatDate(t.DueDate),
		Amount:              t.Amount,
		Type:                t.Type,
		Account:             t.Account,
		Category:            t.Category,
		Description:         t.Description,
		Contact:             t.Contact,
		ContactID:           t.ContactID,
		LinkedTransactionID: t.LinkedTransactionID,
		DraftID:             t.DraftID,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if d, ok := debts[t.ID]; ok {
		remaining := d.Remaining
		resp.RemainingAmount = &remaining
		resp.Status = d.Status
		resp.Overpaid = d.Overpaid
	}
	return resp
}

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
