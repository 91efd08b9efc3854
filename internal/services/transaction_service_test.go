package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingID is a well-formed id that no row carries.
const missingID = "7b0d5c1e-3f4a-4c1b-9d2e-5a6f7e8d9c01"

func TestTransactionService_Create_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TransactionInput
	}{
		{"unknown type", TransactionInput{Type: "gift", Amount: dec("10"), Account: ledger.AccountCash}},
		{"negative amount", TransactionInput{Type: ledger.TypeExpense, Amount: dec("-5"), Account: ledger.AccountCash}},
		{"zero amount", TransactionInput{Type: ledger.TypeExpense, Amount: decimal.Zero, Account: ledger.AccountCash}},
		{"three decimals", TransactionInput{Type: ledger.TypeExpense, Amount: dec("1.005"), Account: ledger.AccountCash}},
		{"missing account", TransactionInput{Type: ledger.TypeIncome, Amount: dec("10")}},
		{"bad date", TransactionInput{Type: ledger.TypeIncome, Amount: dec("10"), Account: ledger.AccountBank, Date: "03/01/2025"}},
		{"link on non payment", TransactionInput{Type: ledger.TypeExpense, Amount: dec("10"), Account: ledger.AccountCash, LinkedTransactionID: strPtr(missingID)}},
		{"unknown contact id", TransactionInput{Type: ledger.TypeExpense, Amount: dec("10"), Account: ledger.AccountCash, ContactID: strPtr(missingID)}},
		{"malformed contact id", TransactionInput{Type: ledger.TypeExpense, Amount: dec("10"), Account: ledger.AccountCash, ContactID: strPtr("nope")}},
		{"malformed link id", TransactionInput{Type: ledger.TypePaymentMade, Amount: dec("10"), Account: ledger.AccountCash, LinkedTransactionID: strPtr("x'; drop")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.txnSvc.Create(ctx, testUser, &input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, 0, f.txns.count(), "rejected input must not be stored")
}

func TestTransactionService_PartialThenSettled(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	debt, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("100"), Contact: strPtr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusOpen, debt.Status)
	assert.Empty(t, debt.Account, "credit types carry no account")

	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentReceived, Amount: dec("40"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	got, err := f.txnSvc.Get(ctx, testUser, debt.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RemainingAmount)
	assert.True(t, dec("60").Equal(*got.RemainingAmount))
	assert.Equal(t, ledger.StatusPartial, got.Status)

	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentReceived, Amount: dec("60"), Account: ledger.AccountBank, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	got, err = f.txnSvc.Get(ctx, testUser, debt.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingAmount.IsZero())
	assert.Equal(t, ledger.StatusSettled, got.Status)
}

func TestTransactionService_PaymentDirection(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	payable, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeLoanPayable, Amount: dec("200"), Account: ledger.AccountBank,
	})
	require.NoError(t, err)

	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentReceived, Amount: dec("50"), Account: ledger.AccountBank, LinkedTransactionID: &payable.ID,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentMade, Amount: dec("50"), Account: ledger.AccountBank, LinkedTransactionID: &payable.ID,
	})
	assert.NoError(t, err)
}

func TestTransactionService_DanglingLinkAllowed(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	payment, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentMade, Amount: dec("25"), Account: ledger.AccountCash, LinkedTransactionID: strPtr(" " + strings.ToUpper(missingID) + " "),
	})
	require.NoError(t, err)
	assert.Equal(t, missingID, *payment.LinkedTransactionID, "ids are stored in canonical form")

	summary, err := f.balances.Summary(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DanglingPayments)
	assert.True(t, dec("-25").Equal(summary.Cash))
}

func TestTransactionService_DeleteDebtLeavesPaymentDangling(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	debt, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("100"), Contact: strPtr("Alice"),
	})
	require.NoError(t, err)
	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentReceived, Amount: dec("40"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.txnSvc.Delete(ctx, testUser, debt.ID))

	debts, err := f.balances.Debts(ctx, testUser, DebtFilter{IncludeSettled: true})
	require.NoError(t, err)
	assert.Empty(t, debts)

	summary, err := f.balances.Summary(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DanglingPayments)
	assert.True(t, dec("40").Equal(summary.Cash))
	assert.True(t, dec("-40").Equal(summary.Credit), "the payment still moves balances, it only settles nothing")

	assert.ErrorIs(t, f.txnSvc.Delete(ctx, testUser, debt.ID), ErrNotFound)
}

func TestTransactionService_ResolvesContactByName(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.addContact(t, "Alice")

	txn, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeLoanReceivable, Amount: dec("80"), Account: ledger.AccountCash, Contact: strPtr("  alice "),
	})
	require.NoError(t, err)
	require.NotNil(t, txn.ContactID)
	assert.Equal(t, alice.ID, *txn.ContactID)

	byID, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeLoanReceivable, Amount: dec("20"), Account: ledger.AccountCash, ContactID: &alice.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", *byID.Contact)
}

func TestTransactionService_UnknownContactIDIsNotReplacedByName(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	f.addContact(t, "Alice")

	_, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("30"), Contact: strPtr("Alice"), ContactID: strPtr(missingID),
	})
	assert.ErrorIs(t, err, ErrValidation)

	f.addContact(t, "Alice")
	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("30"), Contact: strPtr("Alice"), ContactID: strPtr(missingID),
	})
	assert.ErrorIs(t, err, ErrValidation, "ambiguous name")
	assert.Equal(t, 0, f.txns.count())
}

func TestTransactionService_AmbiguousNameStaysUnlinked(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	f.addContact(t, "Alice")
	f.addContact(t, "Alice")

	txn, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("30"), Contact: strPtr("alice"),
	})
	require.NoError(t, err)
	assert.Nil(t, txn.ContactID)
	assert.Equal(t, "alice", *txn.Contact)
}

func TestTransactionService_UpdateDebtKeepsLinkedPaymentsValid(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	debt, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditReceivable, Amount: dec("100"), Contact: strPtr("Alice"),
	})
	require.NoError(t, err)
	_, err = f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentReceived, Amount: dec("40"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	_, err = f.txnSvc.Update(ctx, testUser, debt.ID, &TransactionInput{
		Type: ledger.TypeCreditPayable, Amount: dec("100"), Contact: strPtr("Alice"),
	})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.txnSvc.Get(ctx, testUser, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TypeCreditReceivable, got.Type)
	assert.True(t, dec("60").Equal(*got.RemainingAmount))

	// Same direction is fine
	updated, err := f.txnSvc.Update(ctx, testUser, debt.ID, &TransactionInput{
		Type: ledger.TypeLoanReceivable, Amount: dec("100"), Account: ledger.AccountBank, Contact: strPtr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TypeLoanReceivable, updated.Type)
	assert.Equal(t, ledger.StatusPartial, updated.Status)
}

func TestTransactionService_UpdateRecomputesStatus(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	debt, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypeCreditPayable, Amount: dec("50"),
	})
	require.NoError(t, err)
	payment, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Type: ledger.TypePaymentMade, Amount: dec("50"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	got, err := f.txnSvc.Get(ctx, testUser, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSettled, got.Status)

	_, err = f.txnSvc.Update(ctx, testUser, payment.ID, &TransactionInput{
		Type: ledger.TypePaymentMade, Amount: dec("20"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID,
	})
	require.NoError(t, err)

	got, err = f.txnSvc.Get(ctx, testUser, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, got.Status)
	assert.True(t, dec("30").Equal(*got.RemainingAmount))

	_, err = f.txnSvc.Update(ctx, testUser, payment.ID, &TransactionInput{
		Type: ledger.TypePaymentMade, Amount: dec("20"), Account: ledger.AccountCash, LinkedTransactionID: &payment.ID,
	})
	assert.ErrorIs(t, err, ErrValidation, "self link")
}

func TestTransactionService_SanitizesFreeText(t *testing.T) {
	f := newLedgerFixture(t)

	txn, err := f.txnSvc.Create(context.Background(), testUser, &TransactionInput{
		Type: ledger.TypeExpense, Amount: dec("5"), Account: ledger.AccountCash,
		Description: "<b>Fuel</b> & oil<script>alert(1)</script>", Category: " fuel ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fuel & oil", txn.Description)
	assert.Equal(t, "fuel", txn.Category)
}
