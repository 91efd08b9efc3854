package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"gorm.io/gorm"
)

// Draft is a proposed transaction waiting for the user to confirm or
// discard it. It never affects balances while pending.
type Draft struct {
	ID                  string                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uint                   `gorm:"not null;index" json:"user_id"`
	ActionStatus        string                 `gorm:"default:pending;not null;index" json:"action_status"`
	Source              string                 `gorm:"default:manual;not null" json:"source"`
	Date                time.Time              `gorm:"type:date;not null" json:"date"`
	DueDate             *time.Time             `gorm:"type:date" json:"due_date"`
	Amount              decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type                ledger.TransactionType `gorm:"not null" json:"type"`
	Account             ledger.Account         `json:"account"`
	Category            string                 `json:"category"`
	Description         string                 `json:"description"`
	Contact             *string                `json:"contact"`
	ContactID           *string                `gorm:"type:uuid" json:"contact_id"`
	LinkedTransactionID *string                `gorm:"type:uuid" json:"linked_transaction_id"`
	RawInput            *string                `gorm:"type:text" json:"raw_input"`
	ReceiptPath         *string                `json:"-"`
	TransactionID       *string                `gorm:"type:uuid" json:"transaction_id"`
	ConfirmedAt         *time.Time             `json:"confirmed_at"`
	DiscardedAt         *time.Time             `json:"discarded_at"`
	CreatedAt           time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// TableName specifies the table name for Draft
func (Draft) TableName() string {
	return "drafts"
}

// Draft action status constants
const (
	DraftStatusPending   = "pending"
	DraftStatusConfirmed = "confirmed"
	DraftStatusDiscarded = "discarded"
)

// Draft source constants
const (
	DraftSourceManual    = "manual"
	DraftSourceAssistant = "assistant"
)

// BeforeCreate assigns a UUID and forces new drafts into pending
func (d *Draft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.ActionStatus = DraftStatusPending
	if d.Source == "" {
		d.Source = DraftSourceManual
	}
	return nil
}

// IsPending returns true while the draft awaits a decision
func (d *Draft) IsPending() bool {
	return d.ActionStatus == DraftStatusPending
}

// MayUpdate checks if field edits are allowed
func (d *Draft) MayUpdate() bool {
	return d.IsPending()
}

// MayConfirm checks if the draft can be confirmed
func (d *Draft) MayConfirm() bool {
	return d.IsPending()
}

// MayDiscard checks if the draft can be discarded
func (d *Draft) MayDiscard() bool {
	return d.IsPending()
}

// Entry returns the ledger view used to validate the proposal.
func (d *Draft) Entry() ledger.Entry {
	return ledger.Entry{
		ID:                  d.ID,
		Type:                d.Type,
		Account:             d.Account,
		Amount:              d.Amount,
		LinkedTransactionID: stringValue(d.LinkedTransactionID),
		ContactID:           stringValue(d.ContactID),
		Contact:             stringValue(d.Contact),
	}
}

// ToTransaction copies the draft's current fields into a new Transaction.
func (d *Draft) ToTransaction() *Transaction {
	draftID := d.ID
	return &Transaction{
		UserID:              d.UserID,
		Date:                d.Date,
		DueDate:             d.DueDate,
		Amount:              d.Amount,
		Type:                d.Type,
		Account:             d.Account,
		Category:            d.Category,
		Description:         d.Description,
		Contact:             d.Contact,
		ContactID:           d.ContactID,
		LinkedTransactionID: d.LinkedTransactionID,
		DraftID:             &draftID,
	}
}

// DraftResponse is the JSON response format for drafts
type DraftResponse struct {
	ID                  string                 `json:"id"`
	ActionStatus        string                 `json:"action_status"`
	Source              string                 `json:"source"`
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
	RawInput            *string                `json:"raw_input,omitempty"`
	HasReceipt          bool                   `json:"has_receipt"`
	TransactionID       *string                `json:"transaction_id"`
	ConfirmedAt         *time.Time             `json:"confirmed_at,omitempty"`
	DiscardedAt         *time.Time             `json:"discarded_at,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// ToResponse converts Draft to DraftResponse
func (d *Draft) ToResponse() DraftResponse {
	return DraftResponse{
		ID:                  d.ID,
		ActionStatus:        d.ActionStatus,
		Source:              d.Source,
		Date:                d.Date.Format(DateLayout),
		DueDate:             formatDate(d.DueDate),
		Amount:              d.Amount,
		Type:                d.Type,
		Account:             d.Account,
		Category:            d.Category,
		Description:         d.Description,
		Contact:             d.Contact,
		ContactID:           d.ContactID,
		LinkedTransactionID: d.LinkedTransactionID,
		RawInput:            d.RawInput,
		HasReceipt:          d.ReceiptPath != nil,
		TransactionID:       d.TransactionID,
		ConfirmedAt:         d.ConfirmedAt,
		DiscardedAt:         d.DiscardedAt,
		CreatedAt:           d.CreatedAt,
	}
}
