package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// TransactionInput carries the writable fields of a transaction or draft.
type TransactionInput struct {
	Date                string                 `json:"date"`
	DueDate             *string                `json:"due_date"`
	Amount              decimal.Decimal        `json:"amount"`
	Type                ledger.TransactionType `json:"type"`
	Account             ledger.Account         `json:"account"`
	Category            string                 `json:"category"`
	Description         string                 `json:"description"`
	Contact             *string                `json:"contact"`
	ContactID           *string                `json:"contact_id"`
	LinkedTransactionID *string                `json:"linked_transaction_id"`
}

// TransactionService handles transaction CRUD on top of the ledger
type TransactionService struct {
	repo        repository.TransactionRepository
	contactRepo repository.ContactRepository
	balances    *BalanceService
	now         func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.TransactionRepository, contactRepo repository.ContactRepository, balances *BalanceService) *TransactionService {
	return &TransactionService{
		repo:        repo,
		contactRepo: contactRepo,
		balances:    balances,
		now:         time.Now,
	}
}

// List returns a page of transactions with remaining amount and status
// derived over the user's full set, not just the page.
func (s *TransactionService) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.TransactionResponse, int64, error) {
	txns, total, err := s.repo.List(ctx, userID, query)
	if err != nil {
		return nil, 0, err
	}
	snap, err := s.balances.snapshot(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.TransactionResponse, 0, len(txns))
	for i := range txns {
		responses = append(responses, txns[i].ToResponse(snap.Debts))
	}
	return responses, total, nil
}

// Get returns one transaction with its derived fields
func (s *TransactionService) Get(ctx context.Context, userID uint, id string) (*models.TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	snap, err := s.balances.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := txn.ToResponse(snap.Debts)
	return &resp, nil
}

// Create validates and stores a new transaction
func (s *TransactionService) Create(ctx context.Context, userID uint, input *TransactionInput) (*models.TransactionResponse, error) {
	txn := &models.Transaction{UserID: userID}
	if err := applyInput(txn, input, s.now()); err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	logger.Info("Transaction created", "user_id", userID, "transaction_id", txn.ID, "type", txn.Type)

	return s.Get(ctx, userID, txn.ID)
}

// Update corrects an existing transaction. Settlement status is never
// set here; it follows from the new field values.
func (s *TransactionService) Update(ctx context.Context, userID uint, id string, input *TransactionInput) (*models.TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	previous := txn.Type
	if err := applyInput(txn, input, txn.Date); err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, txn); err != nil {
		return nil, err
	}
	if previous.IsDebt() && txn.Type != previous {
		if err := s.checkLinkedPayments(ctx, txn); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	logger.Info("Transaction updated", "user_id", userID, "transaction_id", txn.ID)

	return s.Get(ctx, userID, txn.ID)
}

// Delete removes a transaction. Debts it used to settle get their
// remaining amount back on the next read.
func (s *TransactionService) Delete(ctx context.Context, userID uint, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	logger.Info("Transaction deleted", "user_id", userID, "transaction_id", id)
	return nil
}

// prepare validates txn against the ledger rules, checks its payment link
// and resolves its contact.
func (s *TransactionService) prepare(ctx context.Context, txn *models.Transaction) error {
	if err := validateLedgerFields(txn.Entry()); err != nil {
		return err
	}
	if !txn.Type.TouchesAccount() {
		txn.Account = ""
	}
	if err := s.checkLink(ctx, txn.UserID, txn.ID, txn.Type, txn.LinkedTransactionID); err != nil {
		return err
	}

	res, err := resolveContact(ctx, s.contactRepo, txn.UserID, txn.ContactID, txn.Contact)
	if err != nil {
		return err
	}
	// An explicit contact_id must name one of the user's contacts; the
	// name fallback only applies when no ID was given.
	if txn.ContactID != nil && res.Kind != ledger.ResolvedByID {
		return validationError(fmt.Errorf("contact %s does not exist", *txn.ContactID))
	}
	switch res.Kind {
	case ledger.ResolvedByID, ledger.ResolvedByName:
		id, name := res.Contact.ID, res.Contact.Name
		txn.ContactID = &id
		if txn.Contact == nil || strings.TrimSpace(*txn.Contact) == "" {
			txn.Contact = &name
		}
	case ledger.Ambiguous:
		txn.ContactID = nil
		logger.Warn("Contact name is ambiguous, leaving unlinked", "user_id", txn.UserID, "matches", len(res.Matches))
	}
	return nil
}

// checkLinkedPayments rejects a type change on a debt when a payment
// already linked to it could no longer settle it.
func (s *TransactionService) checkLinkedPayments(ctx context.Context, debt *models.Transaction) error {
	snap, err := s.balances.snapshot(ctx, debt.UserID)
	if err != nil {
		return err
	}
	for _, p := range snap.Transactions {
		if p.ID == debt.ID || p.LinkedTransactionID == nil || *p.LinkedTransactionID != debt.ID {
			continue
		}
		if !p.Type.Settles(debt.Type) {
			return validationError(fmt.Errorf("payment %s is a %s and cannot settle a %s", p.ID, p.Type, debt.Type))
		}
	}
	return nil
}

// checkLink enforces that only payments link, and that a payment settles
// the right direction when its target still exists. A missing target is
// accepted: the link is simply dangling.
func (s *TransactionService) checkLink(ctx context.Context, userID uint, selfID string, typ ledger.TransactionType, linkedID *string) error {
	if linkedID == nil || *linkedID == "" {
		return nil
	}
	if !typ.IsPayment() {
		return validationError(fmt.Errorf("only payments can link to another transaction, got %s", typ))
	}
	if *linkedID == selfID {
		return validationError(errors.New("a transaction cannot settle itself"))
	}

	target, err := s.repo.FindByID(ctx, userID, *linkedID)
	if err != nil {
		if errors.Is(translateRepoError(err), ErrNotFound) {
			logger.Warn("Payment links to a missing transaction", "user_id", userID, "linked_transaction_id", *linkedID)
			return nil
		}
		return err
	}
	if !typ.Settles(target.Type) {
		return validationError(fmt.Errorf("%s cannot settle a %s", typ, target.Type))
	}
	return nil
}

// validateLedgerFields runs the ledger checks plus the storage precision.
func validateLedgerFields(e ledger.Entry) error {
	if err := ledger.ValidateEntry(e); err != nil {
		return validationError(err)
	}
	if !e.Amount.Equal(e.Amount.Round(2)) {
		return validationError(fmt.Errorf("%w: at most two decimal places", ledger.ErrInvalidAmount))
	}
	return nil
}

// applyInput copies input onto txn. An empty date falls back to
// defaultDate.
func applyInput(txn *models.Transaction, input *TransactionInput, defaultDate time.Time) error {
	date, err := parseDateOr(input.Date, defaultDate)
	if err != nil {
		return err
	}
	due, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return err
	}

	txn.Date = date
	txn.DueDate = due
	txn.Amount = input.Amount
	txn.Type = ledger.TransactionType(strings.ToLower(strings.TrimSpace(string(input.Type))))
	txn.Account = ledger.Account(strings.ToLower(strings.TrimSpace(string(input.Account))))
	txn.Category = sanitizeText(input.Category)
	txn.Description = sanitizeText(input.Description)
	txn.Contact = sanitizeOptional(input.Contact)
	if txn.ContactID, err = optionalID("contact_id", input.ContactID); err != nil {
		return err
	}
	if txn.LinkedTransactionID, err = optionalID("linked_transaction_id", input.LinkedTransactionID); err != nil {
		return err
	}
	return nil
}

// optionalID trims value and requires it to be a UUID when present.
func optionalID(field string, value *string) (*string, error) {
	v := trimmedOrNil(value)
	if v == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, validationError(fmt.Errorf("%s %q is not a valid id", field, *v))
	}
	canonical := id.String()
	return &canonical, nil
}

func parseDateOr(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return startOfDay(fallback), nil
	}
	if len(value) > len(models.DateLayout) {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return startOfDay(t), nil
		}
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, validationError(fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return t, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDateOr(*value, time.Time{})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// resolveContact loads the user's contacts and runs the ledger resolver.
func resolveContact(ctx context.Context, repo repository.ContactRepository, userID uint, contactID, name *string) (ledger.Resolution, error) {
	if contactID == nil && name == nil {
		return ledger.Resolution{Kind: ledger.NotFound}, nil
	}
	contacts, err := repo.FindAllByUser(ctx, userID)
	if err != nil {
		return ledger.Resolution{}, fmt.Errorf("load contacts: %w", err)
	}
	var id, n string
	if contactID != nil {
		id = *contactID
	}
	if name != nil {
		n = *name
	}
	return ledger.ResolveContact(models.ContactRefs(contacts), id, n), nil
}
