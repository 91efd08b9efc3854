package repository

import (
	"context"

	"github.com/sjperalta/vantrack-api/internal/models"
	"gorm.io/gorm"
)

// DraftRepository defines the interface for draft data access
type DraftRepository interface {
	FindByID(ctx context.Context, userID uint, id string) (*models.Draft, error)
	ListByStatus(ctx context.Context, userID uint, status string) ([]models.Draft, error)
	Create(ctx context.Context, draft *models.Draft) error
	CreateBatch(ctx context.Context, drafts []models.Draft) error
	Update(ctx context.Context, draft *models.Draft) error
	Discard(ctx context.Context, draft *models.Draft) error
	Confirm(ctx context.Context, draft *models.Draft, txn *models.Transaction, contact *models.Contact) error
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) FindByID(ctx context.Context, userID uint, id string) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListByStatus returns the user's drafts in one lifecycle state, oldest
// first. An empty status returns all of them.
func (r *draftRepository) ListByStatus(ctx context.Context, userID uint, status string) ([]models.Draft, error) {
	var drafts []models.Draft
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		db = db.Where("action_status = ?", status)
	}
	err := db.Order("created_at ASC").Find(&drafts).Error
	return drafts, err
}

func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepository) CreateBatch(ctx context.Context, drafts []models.Draft) error {
	if len(drafts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&drafts).Error
}

// Update saves field edits, but only while the stored row is still pending.
func (r *draftRepository) Update(ctx context.Context, draft *models.Draft) error {
	res := r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ? AND user_id = ? AND action_status = ?", draft.ID, draft.UserID, models.DraftStatusPending).
		Select("Date", "DueDate", "Amount", "Type", "Account", "Category", "Description",
			"Contact", "ContactID", "LinkedTransactionID").
		Updates(draft)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *draftRepository) Discard(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return moveOutOfPending(tx, draft)
	})
}

// Confirm atomically marks the draft confirmed, creates the contact when
// one is given, and inserts the materialized transaction. A concurrent
// confirm of the same draft fails with ErrStaleState and rolls back.
func (r *draftRepository) Confirm(ctx context.Context, draft *models.Draft, txn *models.Transaction, contact *models.Contact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contact != nil {
			if err := tx.Create(contact).Error; err != nil {
				return translateWriteError(err)
			}
			txn.ContactID = &contact.ID
		}
		if err := tx.Create(txn).Error; err != nil {
			return translateWriteError(err)
		}
		draft.TransactionID = &txn.ID
		draft.ContactID = txn.ContactID
		return moveOutOfPending(tx, draft)
	})
}

func moveOutOfPending(tx *gorm.DB, draft *models.Draft) error {
	res := tx.Model(&models.Draft{}).
		Where("id = ? AND user_id = ? AND action_status = ?", draft.ID, draft.UserID, models.DraftStatusPending).
		Updates(map[string]interface{}{
			"action_status":  draft.ActionStatus,
			"transaction_id": draft.TransactionID,
			"contact_id":     draft.ContactID,
			"confirmed_at":   draft.ConfirmedAt,
			"discarded_at":   draft.DiscardedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
