package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is a monthly spending limit for one expense category.
type Budget struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_budgets_user_category_month,priority:1" json:"user_id"`
	Category  string          `gorm:"not null;uniqueIndex:idx_budgets_user_category_month,priority:2" json:"category"`
	Month     string          `gorm:"type:char(7);not null;uniqueIndex:idx_budgets_user_category_month,priority:3" json:"month"`
	Limit     decimal.Decimal `gorm:"column:limit_amount;type:decimal(15,2);not null" json:"limit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Budget
func (Budget) TableName() string {
	return "budgets"
}

// MonthLayout is the layout of Budget.Month.
const MonthLayout = "2006-01"

// BeforeCreate assigns a UUID when the caller did not
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// MonthRange returns the first day of the budget month and the first day
// of the following one.
func (b *Budget) MonthRange() (time.Time, time.Time, error) {
	start, err := time.Parse(MonthLayout, b.Month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// BudgetProgress reports spending against a budget. Not persisted.
type BudgetProgress struct {
	BudgetID  string          `json:"budget_id"`
	Category  string          `json:"category"`
	Month     string          `json:"month"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Exceeded  bool            `json:"exceeded"`
}
