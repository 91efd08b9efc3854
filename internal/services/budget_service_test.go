package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudgetService(t *testing.T) (*BudgetService, *ledgerFixture) {
	t.Helper()
	f := newLedgerFixture(t)
	svc := NewBudgetService(&memBudgetRepo{rows: map[string]models.Budget{}}, f.txns)
	svc.now = func() time.Time { return f.now }
	return svc, f
}

func TestBudgetService_Create(t *testing.T) {
	svc, _ := newTestBudgetService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input BudgetInput
	}{
		{"missing category", BudgetInput{Limit: dec("100")}},
		{"bad month", BudgetInput{Category: "fuel", Month: "2025-13", Limit: dec("100")}},
		{"zero limit", BudgetInput{Category: "fuel", Limit: dec("0")}},
		{"negative limit", BudgetInput{Category: "fuel", Limit: dec("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := svc.Create(ctx, testUser, &input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	b, err := svc.Create(ctx, testUser, &BudgetInput{Category: "fuel", Limit: dec("200.456")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03", b.Month, "defaults to the current month")
	assert.True(t, dec("200.46").Equal(b.Limit))

	_, err = svc.Create(ctx, testUser, &BudgetInput{Category: "fuel", Month: "2025-03", Limit: dec("50")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestBudgetService_Progress(t *testing.T) {
	svc, f := newTestBudgetService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, testUser, &BudgetInput{Category: "fuel", Month: "2025-03", Limit: dec("100")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUser, &BudgetInput{Category: "food", Month: "2025-03", Limit: dec("50")})
	require.NoError(t, err)

	expenses := []TransactionInput{
		{Date: "2025-03-02", Type: ledger.TypeExpense, Amount: dec("30"), Account: ledger.AccountCash, Category: "fuel"},
		{Date: "2025-03-15", Type: ledger.TypeExpense, Amount: dec("25.50"), Account: ledger.AccountBank, Category: "fuel"},
		{Date: "2025-03-20", Type: ledger.TypeExpense, Amount: dec("60"), Account: ledger.AccountCash, Category: "food"},
		{Date: "2025-02-28", Type: ledger.TypeExpense, Amount: dec("500"), Account: ledger.AccountCash, Category: "fuel"},
		{Date: "2025-03-05", Type: ledger.TypeIncome, Amount: dec("999"), Account: ledger.AccountCash, Category: "fuel"},
	}
	for i := range expenses {
		_, err := f.txnSvc.Create(ctx, testUser, &expenses[i])
		require.NoError(t, err)
	}

	progress, err := svc.Progress(ctx, testUser, "")
	require.NoError(t, err)
	require.Len(t, progress, 2)

	byCategory := map[string]models.BudgetProgress{}
	for _, p := range progress {
		byCategory[p.Category] = p
	}

	fuel := byCategory["fuel"]
	assert.True(t, dec("55.50").Equal(fuel.Spent))
	assert.True(t, dec("44.50").Equal(fuel.Remaining))
	assert.False(t, fuel.Exceeded)

	food := byCategory["food"]
	assert.True(t, dec("60").Equal(food.Spent))
	assert.True(t, food.Remaining.IsZero())
	assert.True(t, food.Exceeded)

	_, err = svc.Progress(ctx, testUser, "March")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBudgetService_UpdateDelete(t *testing.T) {
	svc, _ := newTestBudgetService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, testUser, &BudgetInput{Category: "fuel", Limit: dec("100")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testUser, b.ID, &BudgetInput{Category: "fuel", Month: "2025-04", Limit: dec("120")})
	require.NoError(t, err)
	assert.Equal(t, "2025-04", updated.Month)

	list, err := svc.List(ctx, testUser, "2025-04")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.List(ctx, testUser, "04/2025")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, testUser, b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, testUser, b.ID), ErrNotFound)
}
