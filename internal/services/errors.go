package services

import (
	"errors"
	"fmt"

	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/statemachine"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrDuplicate          = errors.New("duplicate record")
	ErrValidation         = errors.New("validation failed")
	ErrRateLimited        = errors.New("too many requests")
	ErrUnavailable        = errors.New("service unavailable")
)

// validationError wraps err (usually a ledger error) as ErrValidation so
// handlers can map it without knowing where it came from.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// translateRepoError maps storage-level errors onto the service sentinels.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, repository.ErrStaleState), errors.Is(err, statemachine.ErrIllegalTransition):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, ledger.ErrInvalidType), errors.Is(err, ledger.ErrInvalidAccount), errors.Is(err, ledger.ErrInvalidAmount):
		return validationError(err)
	}
	return err
}
