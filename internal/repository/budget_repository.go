package repository

import (
	"context"

	"github.com/sjperalta/vantrack-api/internal/models"
	"gorm.io/gorm"
)

// BudgetRepository defines the interface for budget data access
type BudgetRepository interface {
	FindByID(ctx context.Context, userID uint, id string) (*models.Budget, error)
	ListByMonth(ctx context.Context, userID uint, month string) ([]models.Budget, error)
	Create(ctx context.Context, budget *models.Budget) error
	Update(ctx context.Context, budget *models.Budget) error
	Delete(ctx context.Context, userID uint, id string) error
}

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) FindByID(ctx context.Context, userID uint, id string) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&budget).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// ListByMonth returns budgets for one YYYY-MM month, or all of them when
// month is empty.
func (r *budgetRepository) ListByMonth(ctx context.Context, userID uint, month string) ([]models.Budget, error) {
	var budgets []models.Budget
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if month != "" {
		db = db.Where("month = ?", month)
	}
	err := db.Order("month DESC, category ASC").Find(&budgets).Error
	return budgets, err
}

func (r *budgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	return translateWriteError(r.db.WithContext(ctx).Create(budget).Error)
}

func (r *budgetRepository) Update(ctx context.Context, budget *models.Budget) error {
	return translateWriteError(r.db.WithContext(ctx).Save(budget).Error)
}

func (r *budgetRepository) Delete(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Budget{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
