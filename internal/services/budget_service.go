package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
)

// BudgetInput carries the writable fields of a budget.
type BudgetInput struct {
	Category string          `json:"category"`
	Month    string          `json:"month"`
	Limit    decimal.Decimal `json:"limit"`
}

// BudgetService manages monthly category budgets
type BudgetService struct {
	repo    repository.BudgetRepository
	txnRepo repository.TransactionRepository
	now     func() time.Time
}

// NewBudgetService creates a new budget service
func NewBudgetService(repo repository.BudgetRepository, txnRepo repository.TransactionRepository) *BudgetService {
	return &BudgetService{repo: repo, txnRepo: txnRepo, now: time.Now}
}

// CurrentMonth returns the YYYY-MM month of now.
func (s *BudgetService) CurrentMonth() string {
	return s.now().Format(models.MonthLayout)
}

func (s *BudgetService) List(ctx context.Context, userID uint, month string) ([]models.Budget, error) {
	if month != "" {
		if _, err := time.Parse(models.MonthLayout, month); err != nil {
			return nil, validationError(fmt.Errorf("invalid month %q, expected YYYY-MM", month))
		}
	}
	return s.repo.ListByMonth(ctx, userID, month)
}

func (s *BudgetService) Create(ctx context.Context, userID uint, input *BudgetInput) (*models.Budget, error) {
	budget := &models.Budget{UserID: userID}
	if err := s.apply(budget, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, budget); err != nil {
		return nil, translateRepoError(err)
	}
	return budget, nil
}

func (s *BudgetService) Update(ctx context.Context, userID uint, id string, input *BudgetInput) (*models.Budget, error) {
	budget, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.apply(budget, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, translateRepoError(err)
	}
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID uint, id string) error {
	return translateRepoError(s.repo.Delete(ctx, userID, id))
}

// Progress compares each budget of month with the expenses recorded in
// its category during that month.
func (s *BudgetService) Progress(ctx context.Context, userID uint, month string) ([]models.BudgetProgress, error) {
	if month == "" {
		month = s.CurrentMonth()
	}
	start, err := time.Parse(models.MonthLayout, month)
	if err != nil {
		return nil, validationError(fmt.Errorf("invalid month %q, expected YYYY-MM", month))
	}

	budgets, err := s.repo.ListByMonth(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	spent, err := s.txnRepo.SumExpensesByCategory(ctx, userID, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	progress := make([]models.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		used, ok := spent[b.Category]
		if !ok {
			used = decimal.Zero
		}
		remaining := b.Limit.Sub(used)
		progress = append(progress, models.BudgetProgress{
			BudgetID:  b.ID,
			Category:  b.Category,
			Month:     b.Month,
			Limit:     b.Limit,
			Spent:     used,
			Remaining: decimal.Max(remaining, decimal.Zero),
			Exceeded:  remaining.IsNegative(),
		})
	}
	return progress, nil
}

func (s *BudgetService) apply(b *models.Budget, input *BudgetInput) error {
	category := sanitizeText(input.Category)
	if category == "" {
		return validationError(errors.New("category is required"))
	}
	month := strings.TrimSpace(input.Month)
	if month == "" {
		month = s.CurrentMonth()
	}
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return validationError(fmt.Errorf("invalid month %q, expected YYYY-MM", month))
	}
	if !input.Limit.IsPositive() {
		return validationError(errors.New("limit must be greater than zero"))
	}

	b.Category = category
	b.Month = month
	b.Limit = input.Limit.Round(2)
	return nil
}
