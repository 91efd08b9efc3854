package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/metrics"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/statemachine"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// DraftService runs the draft lifecycle: pending drafts are edited, then
// confirmed into exactly one transaction or discarded.
type DraftService struct {
	repo        repository.DraftRepository
	txnRepo     repository.TransactionRepository
	contactRepo repository.ContactRepository
	balances    *BalanceService
	now         func() time.Time
}

// NewDraftService creates a new draft service
func NewDraftService(repo repository.DraftRepository, txnRepo repository.TransactionRepository, contactRepo repository.ContactRepository, balances *BalanceService) *DraftService {
	return &DraftService{
		repo:        repo,
		txnRepo:     txnRepo,
		contactRepo: contactRepo,
		balances:    balances,
		now:         time.Now,
	}
}

// ConfirmResult is returned by Confirm.
type ConfirmResult struct {
	Draft            models.DraftResponse       `json:"draft"`
	Transaction      models.TransactionResponse `json:"transaction"`
	ContactCreated   bool                       `json:"contact_created"`
	ContactAmbiguous bool                       `json:"contact_ambiguous"`
	DanglingLink     bool                       `json:"dangling_link"`
}

// Create stores a new pending draft.
func (s *DraftService) Create(ctx context.Context, userID uint, input *TransactionInput, source string) (*models.Draft, error) {
	draft, err := s.build(userID, input, source)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, translateRepoError(err)
	}
	metrics.DraftEvents.WithLabelValues("created", draft.Source).Inc()
	logger.Info("Draft created", "user_id", userID, "draft_id", draft.ID, "source", draft.Source)
	return draft, nil
}

// build validates a proposal and turns it into an unsaved pending draft.
func (s *DraftService) build(userID uint, input *TransactionInput, source string) (*models.Draft, error) {
	if source != models.DraftSourceAssistant {
		source = models.DraftSourceManual
	}
	draft := &models.Draft{
		UserID:       userID,
		ActionStatus: models.DraftStatusPending,
		Source:       source,
	}
	if err := applyDraftInput(draft, input, s.now()); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ListPending returns drafts still awaiting a decision.
func (s *DraftService) ListPending(ctx context.Context, userID uint) ([]models.Draft, error) {
	return s.repo.ListByStatus(ctx, userID, models.DraftStatusPending)
}

// List returns drafts in the given status, or all of them when empty.
func (s *DraftService) List(ctx context.Context, userID uint, status string) ([]models.Draft, error) {
	switch status {
	case "", models.DraftStatusPending, models.DraftStatusConfirmed, models.DraftStatusDiscarded:
	default:
		return nil, validationError(fmt.Errorf("unknown draft status %q", status))
	}
	return s.repo.ListByStatus(ctx, userID, status)
}

// Get returns one draft
func (s *DraftService) Get(ctx context.Context, userID uint, id string) (*models.Draft, error) {
	draft, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return draft, nil
}

// Update edits a pending draft. Confirmed and discarded drafts are
// rejected with ErrInvalidState and left untouched.
func (s *DraftService) Update(ctx context.Context, userID uint, id string, input *TransactionInput) (*models.Draft, error) {
	draft, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !draft.MayUpdate() {
		return nil, fmt.Errorf("%w: draft is %s", ErrInvalidState, draft.ActionStatus)
	}

	edited := *draft
	if err := applyDraftInput(&edited, input, draft.Date); err != nil {
		return nil, err
	}
	if err := validateDraft(&edited); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &edited); err != nil {
		return nil, translateRepoError(err)
	}
	return &edited, nil
}

// Confirm moves a pending draft to confirmed and materializes it as one
// transaction. The contact is resolved here: by ID, then by name, and a
// new contact is created when a name was given and nothing matched. A
// name shared by several contacts leaves the contact unlinked and sets
// ContactAmbiguous. A dangling payment link does not block confirmation.
func (s *DraftService) Confirm(ctx context.Context, userID uint, id string) (*ConfirmResult, error) {
	draft, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !draft.MayConfirm() {
		return nil, fmt.Errorf("%w: draft is %s", ErrInvalidState, draft.ActionStatus)
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	txn := draft.ToTransaction()
	if !txn.Type.TouchesAccount() {
		txn.Account = ""
	}

	newContact, err := s.resolveForConfirm(ctx, draft, txn, result)
	if err != nil {
		return nil, err
	}

	if err := s.checkConfirmLink(ctx, draft, result); err != nil {
		return nil, err
	}

	if err := statemachine.NewDraftFSM(draft).Confirm(ctx); err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.repo.Confirm(ctx, draft, txn, newContact); err != nil {
		return nil, translateRepoError(err)
	}
	s.balances.Invalidate(userID)
	metrics.DraftEvents.WithLabelValues("confirmed", draft.Source).Inc()
	logger.Info("Draft confirmed", "user_id", userID, "draft_id", draft.ID, "transaction_id", txn.ID)

	result.Draft = draft.ToResponse()
	snap, err := s.balances.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Transaction = txn.ToResponse(snap.Debts)
	return result, nil
}

func (s *DraftService) resolveForConfirm(ctx context.Context, draft *models.Draft, txn *models.Transaction, result *ConfirmResult) (*models.Contact, error) {
	res, err := resolveContact(ctx, s.contactRepo, draft.UserID, draft.ContactID, draft.Contact)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case ledger.ResolvedByID, ledger.ResolvedByName:
		id, name := res.Contact.ID, res.Contact.Name
		txn.ContactID = &id
		if txn.Contact == nil {
			txn.Contact = &name
		}
	case ledger.Ambiguous:
		txn.ContactID = nil
		result.ContactAmbiguous = true
		logger.Warn("Contact name is ambiguous, leaving unlinked", "draft_id", draft.ID, "matches", len(res.Matches))
	case ledger.NotFound:
		txn.ContactID = nil
		if txn.Contact != nil && strings.TrimSpace(*txn.Contact) != "" {
			result.ContactCreated = true
			return &models.Contact{UserID: draft.UserID, Name: sanitizeText(*txn.Contact)}, nil
		}
	}
	return nil, nil
}

// checkConfirmLink rejects a payment whose existing target has the wrong
// direction. A missing target only flags the result.
func (s *DraftService) checkConfirmLink(ctx context.Context, draft *models.Draft, result *ConfirmResult) error {
	if draft.LinkedTransactionID == nil {
		return nil
	}
	target, err := s.txnRepo.FindByID(ctx, draft.UserID, *draft.LinkedTransactionID)
	if err != nil {
		if errors.Is(translateRepoError(err), ErrNotFound) {
			result.DanglingLink = true
			return nil
		}
		return err
	}
	if !draft.Type.Settles(target.Type) {
		return validationError(fmt.Errorf("%s cannot settle a %s", draft.Type, target.Type))
	}
	return nil
}

// Discard moves a pending draft to discarded. No transaction is created.
func (s *DraftService) Discard(ctx context.Context, userID uint, id string) (*models.Draft, error) {
	draft, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.NewDraftFSM(draft).Discard(ctx); err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.repo.Discard(ctx, draft); err != nil {
		return nil, translateRepoError(err)
	}
	metrics.DraftEvents.WithLabelValues("discarded", draft.Source).Inc()
	logger.Info("Draft discarded", "user_id", userID, "draft_id", draft.ID)
	return draft, nil
}

func validateDraft(d *models.Draft) error {
	if err := validateLedgerFields(d.Entry()); err != nil {
		return err
	}
	if d.LinkedTransactionID != nil && !d.Type.IsPayment() {
		return validationError(fmt.Errorf("only payments can link to another transaction, got %s", d.Type))
	}
	return nil
}

func applyDraftInput(d *models.Draft, input *TransactionInput, defaultDate time.Time) error {
	var txn models.Transaction
	if err := applyInput(&txn, input, defaultDate); err != nil {
		return err
	}
	d.Date = txn.Date
	d.DueDate = txn.DueDate
	d.Amount = txn.Amount
	d.Type = txn.Type
	d.Account = txn.Account
	d.Category = txn.Category
	d.Description = txn.Description
	d.Contact = txn.Contact
	d.ContactID = txn.ContactID
	d.LinkedTransactionID = txn.LinkedTransactionID
	return nil
}
