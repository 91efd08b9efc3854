package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account holder. Every other record is scoped to one.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string    `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string    `json:"full_name"`
	Status            string    `gorm:"default:active" json:"status"`
	Currency          string    `gorm:"default:USD" json:"currency"`
	Language          string    `gorm:"default:en" json:"language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Currency == "" {
		u.Currency = DefaultCurrency
	}
	if u.Language == "" {
		u.Language = LanguageEN
	}
	return nil
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Language constants
const (
	LanguageEN = "en"
	LanguageES = "es"
)

// DefaultCurrency is used when the user has not picked one.
const DefaultCurrency = "USD"

// SupportedCurrencies lists the ISO 4217 codes a user may choose.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "HNL", "MXN", "GTQ", "COP", "BRL", "CAD"}

// SupportedLanguages lists the UI languages a user may choose.
var SupportedLanguages = []string{LanguageEN, LanguageES}

// IsSupportedCurrency reports whether code is in SupportedCurrencies
func IsSupportedCurrency(code string) bool {
	return contains(SupportedCurrencies, code)
}

// IsSupportedLanguage reports whether lang is in SupportedLanguages
func IsSupportedLanguage(lang string) bool {
	return contains(SupportedLanguages, lang)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    u.Status,
		Currency:  u.Currency,
		Language:  u.Language,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Settings is the per-user preference pair exposed on /settings.
type Settings struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// Settings returns the user's current preferences
func (u *User) Settings() Settings {
	return Settings{Currency: u.Currency, Language: u.Language}
}
