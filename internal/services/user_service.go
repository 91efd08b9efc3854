package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
)

// UserService handles profile and settings
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return user, nil
}

func (s *UserService) GetSettings(ctx context.Context, userID uint) (models.Settings, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	return user.Settings(), nil
}

// UpdateSettings applies a partial settings update; empty fields keep
// their current value.
func (s *UserService) UpdateSettings(ctx context.Context, userID uint, patch models.Settings) (models.Settings, error) {
	current, err := s.GetSettings(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	if patch.Currency != "" {
		current.Currency = strings.ToUpper(strings.TrimSpace(patch.Currency))
	}
	if patch.Language != "" {
		current.Language = strings.ToLower(strings.TrimSpace(patch.Language))
	}
	if err := validateSettings(current); err != nil {
		return models.Settings{}, err
	}
	if err := s.repo.UpdateSettings(ctx, userID, current); err != nil {
		return models.Settings{}, err
	}
	return current, nil
}

func validateSettings(s models.Settings) error {
	if !models.IsSupportedCurrency(s.Currency) {
		return validationError(fmt.Errorf("unsupported currency %q", s.Currency))
	}
	if !models.IsSupportedLanguage(s.Language) {
		return validationError(fmt.Errorf("unsupported language %q", s.Language))
	}
	return nil
}
