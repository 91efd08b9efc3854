package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_PartialThenSettled(t *testing.T) {
	entries := []Entry{
		{ID: "debt", Type: TypeCreditReceivable, Amount: d("100"), Contact: "Alice"},
		{ID: "p1", Type: TypePaymentReceived, Account: AccountCash, Amount: d("40"), LinkedTransactionID: "debt"},
	}

	got := Settle(entries)["debt"]
	assert.True(t, got.Remaining.Equal(d("60")), "remaining = %s", got.Remaining)
	assert.Equal(t, StatusPartial, got.Status)

	entries = append(entries, Entry{ID: "p2", Type: TypePaymentReceived, Account: AccountCash, Amount: d("60"), LinkedTransactionID: "debt"})
	got = Settle(entries)["debt"]
	assert.True(t, got.Remaining.IsZero())
	assert.Equal(t, StatusSettled, got.Status)
	assert.ElementsMatch(t, []string{"p1", "p2"}, got.Payments)
	assert.False(t, got.Overpaid)
}

func TestSettle_UntouchedDebtIsOpen(t *testing.T) {
	got := Settle([]Entry{{ID: "x", Type: TypeLoanPayable, Account: AccountBank, Amount: d("200")}})["x"]
	assert.Equal(t, StatusOpen, got.Status)
	assert.True(t, got.Remaining.Equal(d("200")))
	assert.True(t, got.Paid.IsZero())
}

func TestSettle_Overpayment(t *testing.T) {
	got := Settle([]Entry{
		{ID: "x", Type: TypeCreditPayable, Amount: d("50")},
		{ID: "p", Type: TypePaymentMade, Account: AccountCash, Amount: d("70"), LinkedTransactionID: "x"},
	})["x"]

	assert.True(t, got.Remaining.IsZero())
	assert.Equal(t, StatusSettled, got.Status)
	assert.True(t, got.Overpaid)
	assert.True(t, got.Overpayment.Equal(d("20")))
}

func TestSettle_DanglingLinkContributesNothing(t *testing.T) {
	entries := []Entry{
		{ID: "p1", Type: TypePaymentReceived, Account: AccountCash, Amount: d("40"), LinkedTransactionID: "deleted"},
		{ID: "other", Type: TypeCreditReceivable, Amount: d("10")},
	}

	var debts map[string]Debt
	require.NotPanics(t, func() { debts = Settle(entries) })
	assert.Len(t, debts, 1)
	assert.Equal(t, StatusOpen, debts["other"].Status)
	assert.Equal(t, []string{"p1"}, DanglingPayments(entries))
}

func TestSettle_DeletingDebtLeavesPaymentDangling(t *testing.T) {
	entries := []Entry{
		{ID: "debt", Type: TypeCreditReceivable, Amount: d("100"), Contact: "Alice"},
		{ID: "p1", Type: TypePaymentReceived, Account: AccountCash, Amount: d("40"), LinkedTransactionID: "debt"},
	}
	afterDelete := entries[1:]

	require.NotPanics(t, func() {
		Settle(afterDelete)
		Reduce(afterDelete)
	})
	assert.Empty(t, Settle(afterDelete))
	assert.Equal(t, []string{"p1"}, DanglingPayments(afterDelete))
}

func TestSettle_NonPaymentLinksIgnored(t *testing.T) {
	got := Settle([]Entry{
		{ID: "x", Type: TypeCreditReceivable, Amount: d("100")},
		{ID: "y", Type: TypeIncome, Account: AccountCash, Amount: d("100"), LinkedTransactionID: "x"},
	})["x"]
	assert.Equal(t, StatusOpen, got.Status)
}

func TestSettle_Monotonicity(t *testing.T) {
	entries := []Entry{{ID: "debt", Type: TypeLoanReceivable, Account: AccountCash, Amount: d("90")}}
	prev := Settle(entries)["debt"].Remaining

	for i, amt := range []string{"10", "25.5", "30", "40", "5"} {
		entries = append(entries, Entry{
			ID:                  string(rune('a' + i)),
			Type:                TypePaymentReceived,
			Account:             AccountCash,
			Amount:              d(amt),
			LinkedTransactionID: "debt",
		})
		cur := Settle(entries)["debt"].Remaining
		assert.True(t, cur.LessThanOrEqual(prev), "payment %d increased remaining", i)
		assert.False(t, cur.IsNegative(), "payment %d made remaining negative", i)
		prev = cur
	}
}

func TestSettle_Idempotent(t *testing.T) {
	entries := sampleEntries()
	assert.Equal(t, Settle(entries), Settle(entries))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusOpen, StatusFor(d("10"), d("10")))
	assert.Equal(t, StatusPartial, StatusFor(d("10"), d("0.01")))
	assert.Equal(t, StatusSettled, StatusFor(d("10"), d("0")))
}
