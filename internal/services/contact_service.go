package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// ContactInput carries the writable fields of a contact.
type ContactInput struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Note  *string `json:"note"`
}

// ContactService handles contact CRUD
type ContactService struct {
	repo     repository.ContactRepository
	balances *BalanceService
}

// NewContactService creates a new contact service
func NewContactService(repo repository.ContactRepository, balances *BalanceService) *ContactService {
	return &ContactService{repo: repo, balances: balances}
}

func (s *ContactService) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Contact, int64, error) {
	return s.repo.List(ctx, userID, query)
}

func (s *ContactService) Get(ctx context.Context, userID uint, id string) (*models.Contact, error) {
	contact, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, userID uint, input *ContactInput) (*models.Contact, error) {
	contact := &models.Contact{UserID: userID}
	if err := applyContactInput(contact, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	logger.Info("Contact created", "user_id", userID, "contact_id", contact.ID)
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, userID uint, id string, input *ContactInput) (*models.Contact, error) {
	contact, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyContactInput(contact, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	return contact, nil
}

// Delete removes the contact and unlinks its transactions, which keep
// their free-text name.
func (s *ContactService) Delete(ctx context.Context, userID uint, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	logger.Info("Contact deleted", "user_id", userID, "contact_id", id)
	return nil
}

func applyContactInput(c *models.Contact, input *ContactInput) error {
	name := sanitizeText(input.Name)
	if name == "" {
		return validationError(errors.New("name is required"))
	}
	c.Name = name
	c.Phone = sanitizeOptional(input.Phone)
	c.Note = sanitizeOptional(input.Note)
	c.Email = nil

	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		addr, err := mail.ParseAddress(strings.TrimSpace(*input.Email))
		if err != nil {
			return validationError(errors.New("email is not a valid address"))
		}
		email := strings.ToLower(addr.Address)
		c.Email = &email
	}
	return nil
}
