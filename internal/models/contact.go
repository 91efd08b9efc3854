package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"gorm.io/gorm"
)

// Contact is a counterparty referenced by debt-related transactions.
// Names are not unique; several contacts may share one.
type Contact struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_contacts_user_email,priority:1" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `gorm:"uniqueIndex:idx_contacts_user_email,priority:2" json:"email"`
	Note      *string   `gorm:"type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}

// BeforeCreate assigns a UUID when the caller did not
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Ref returns the minimal view the contact resolver works on.
func (c *Contact) Ref() ledger.ContactRef {
	return ledger.ContactRef{ID: c.ID, Name: c.Name}
}

// ContactRefs converts a slice of contacts for the resolver.
func ContactRefs(contacts []Contact) []ledger.ContactRef {
	refs := make([]ledger.ContactRef, len(contacts))
	for i := range contacts {
		refs[i] = contacts[i].Ref()
	}
	return refs
}
