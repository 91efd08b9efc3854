package repository

import (
	"context"

	"github.com/sjperalta/vantrack-api/internal/models"
	"gorm.io/gorm"
)

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	FindByID(ctx context.Context, userID uint, id string) (*models.Contact, error)
	FindAllByUser(ctx context.Context, userID uint) ([]models.Contact, error)
	List(ctx context.Context, userID uint, query *ListQuery) ([]models.Contact, int64, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, userID uint, id string) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) FindByID(ctx context.Context, userID uint, id string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindAllByUser(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) List(ctx context.Context, userID uint, query *ListQuery) ([]models.Contact, int64, error) {
	var contacts []models.Contact
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contact{}).Where("user_id = ?", userID)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(query.orderClause(map[string]string{"name": "name", "created_at": "created_at"}, "name ASC"))
	err := paginate(db, query).Find(&contacts).Error
	return contacts, total, err
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return translateWriteError(r.db.WithContext(ctx).Create(contact).Error)
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	return translateWriteError(r.db.WithContext(ctx).Save(contact).Error)
}

// Delete removes the contact. Transactions keep their free-text name and
// fall back to name matching.
func (r *contactRepository) Delete(ctx context.Context, userID uint, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Contact{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Transaction{}).
			Where("user_id = ? AND contact_id = ?", userID, id).
			Update("contact_id", nil).Error
	})
}
