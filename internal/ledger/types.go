// Package ledger turns a user's transactions into balances and debt
// statuses. Everything here is a pure fold over in-memory values: no I/O,
// no logging, no clocks. Callers load the transaction set, hand it over and
// render whatever comes back.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of financial events the ledger knows.
type TransactionType string

const (
	TypeExpense          TransactionType = "expense"
	TypeIncome           TransactionType = "income"
	TypeTransfer         TransactionType = "transfer"
	TypeCreditReceivable TransactionType = "credit_receivable"
	TypeCreditPayable    TransactionType = "credit_payable"
	TypeLoanReceivable   TransactionType = "loan_receivable"
	TypeLoanPayable      TransactionType = "loan_payable"
	TypePaymentReceived  TransactionType = "payment_received"
	TypePaymentMade      TransactionType = "payment_made"
)

// AllTypes lists every valid transaction type in a stable order.
var AllTypes = []TransactionType{
	TypeExpense,
	TypeIncome,
	TypeTransfer,
	TypeCreditReceivable,
	TypeCreditPayable,
	TypeLoanReceivable,
	TypeLoanPayable,
	TypePaymentReceived,
	TypePaymentMade,
}

// Valid reports whether t belongs to the closed enumeration.
func (t TransactionType) Valid() bool {
	for _, v := range AllTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsDebt reports whether t creates a receivable or payable that payments
// can settle.
func (t TransactionType) IsDebt() bool {
	return t.IsReceivable() || t.IsPayable()
}

// IsReceivable is true for money owed to the user.
func (t TransactionType) IsReceivable() bool {
	return t == TypeCreditReceivable || t == TypeLoanReceivable
}

// IsPayable is true for money the user owes.
func (t TransactionType) IsPayable() bool {
	return t == TypeCreditPayable || t == TypeLoanPayable
}

// IsPayment is true for the two settlement types.
func (t TransactionType) IsPayment() bool {
	return t == TypePaymentReceived || t == TypePaymentMade
}

// TouchesAccount reports whether the type moves money in or out of a
// liquid account. Pure credit entries only affect the virtual ledgers.
func (t TransactionType) TouchesAccount() bool {
	return t != TypeCreditReceivable && t != TypeCreditPayable
}

// Settles reports whether a payment of type t may settle a debt of type
// debt: received payments close receivables, made payments close payables.
func (t TransactionType) Settles(debt TransactionType) bool {
	switch t {
	case TypePaymentReceived:
		return debt.IsReceivable()
	case TypePaymentMade:
		return debt.IsPayable()
	}
	return false
}

// Account is the liquid account a transaction moves money through.
type Account string

const (
	AccountCash Account = "cash"
	AccountBank Account = "bank"
)

// Valid reports whether a is cash or bank.
func (a Account) Valid() bool {
	return a == AccountCash || a == AccountBank
}

// DebtStatus is derived from the remaining amount, never stored.
type DebtStatus string

const (
	StatusOpen    DebtStatus = "open"
	StatusPartial DebtStatus = "partial"
	StatusSettled DebtStatus = "settled"
)

var (
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
)

// Entry is the part of a transaction the ledger needs.
type Entry struct {
	ID                  string
	Type                TransactionType
	Account             Account
	Amount              decimal.Decimal
	LinkedTransactionID string
	ContactID           string
	Contact             string
}

// ValidateEntry rejects entries the reducer must never see.
func ValidateEntry(e Entry) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, e.Amount.String())
	}
	if e.Type.TouchesAccount() && !e.Account.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, e.Account)
	}
	return nil
}
