package ledger

import "github.com/shopspring/decimal"

// Summary is the four-way balance derived from a transaction set.
type Summary struct {
	Cash   decimal.Decimal `json:"cash"`
	Bank   decimal.Decimal `json:"bank"`
	Credit decimal.Decimal `json:"credit"`
	Loan   decimal.Decimal `json:"loan"`
}

// Add returns the field-wise sum of s and o.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Cash:   s.Cash.Add(o.Cash),
		Bank:   s.Bank.Add(o.Bank),
		Credit: s.Credit.Add(o.Credit),
		Loan:   s.Loan.Add(o.Loan),
	}
}

// Equal compares by value, ignoring decimal exponent differences.
func (s Summary) Equal(o Summary) bool {
	return s.Cash.Equal(o.Cash) &&
		s.Bank.Equal(o.Bank) &&
		s.Credit.Equal(o.Credit) &&
		s.Loan.Equal(o.Loan)
}

// NetWorth is cash + bank + credit - loan.
func (s Summary) NetWorth() decimal.Decimal {
	return s.Cash.Add(s.Bank).Add(s.Credit).Sub(s.Loan)
}

// Liquid is the money available right now across cash and bank.
func (s Summary) Liquid() decimal.Decimal {
	return s.Cash.Add(s.Bank)
}

// Reduce folds entries into a Summary. Order does not matter. Entries are
// expected to have passed ValidateEntry; an unknown type contributes
// nothing.
func Reduce(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s = s.apply(e)
	}
	return s
}

func (s Summary) apply(e Entry) Summary {
	amt := e.Amount
	switch e.Type {
	case TypeIncome:
		s = s.moveAccount(e.Account, amt)
	case TypeExpense, TypeTransfer:
		s = s.moveAccount(e.Account, amt.Neg())
	case TypeCreditReceivable:
		s.Credit = s.Credit.Add(amt)
	case TypeCreditPayable:
		s.Loan = s.Loan.Add(amt)
	case TypeLoanReceivable:
		s = s.moveAccount(e.Account, amt.Neg())
		s.Credit = s.Credit.Add(amt)
	case TypeLoanPayable:
		s = s.moveAccount(e.Account, amt)
		s.Loan = s.Loan.Add(amt)
	case TypePaymentReceived:
		s = s.moveAccount(e.Account, amt)
		s.Credit = s.Credit.Sub(amt)
	case TypePaymentMade:
		s = s.moveAccount(e.Account, amt.Neg())
		s.Loan = s.Loan.Sub(amt)
	}
	return s
}

func (s Summary) moveAccount(a Account, delta decimal.Decimal) Summary {
	switch a {
	case AccountCash:
		s.Cash = s.Cash.Add(delta)
	case AccountBank:
		s.Bank = s.Bank.Add(delta)
	}
	return s
}
