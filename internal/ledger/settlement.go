package ledger

import "github.com/shopspring/decimal"

// Debt is the derived settlement view of one receivable or payable.
type Debt struct {
	ID        string
	Type      TransactionType
	Amount    decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Status    DebtStatus
	// Overpaid is set when linked payments exceed the face value. Remaining
	// stays clamped at zero; Overpayment carries the excess.
	Overpaid    bool
	Overpayment decimal.Decimal
	Payments    []string
	ContactID   string
	Contact     string
}

// StatusFor derives the status from a face value and remaining amount.
func StatusFor(amount, remaining decimal.Decimal) DebtStatus {
	switch {
	case !remaining.IsPositive():
		return StatusSettled
	case remaining.LessThan(amount):
		return StatusPartial
	default:
		return StatusOpen
	}
}

// Settle derives remaining amount and status for every debt-type entry,
// keyed by entry ID. Payments linked to an ID that is not a debt in the set
// are ignored.
func Settle(entries []Entry) map[string]Debt {
	debts := make(map[string]Debt)
	for _, e := range entries {
		if !e.Type.IsDebt() || e.ID == "" {
			continue
		}
		debts[e.ID] = Debt{
			ID:        e.ID,
			Type:      e.Type,
			Amount:    e.Amount,
			ContactID: e.ContactID,
			Contact:   e.Contact,
		}
	}

	for _, p := range entries {
		if !p.Type.IsPayment() || p.LinkedTransactionID == "" {
			continue
		}
		d, ok := debts[p.LinkedTransactionID]
		if !ok {
			continue
		}
		d.Paid = d.Paid.Add(p.Amount)
		d.Payments = append(d.Payments, p.ID)
		debts[d.ID] = d
	}

	for id, d := range debts {
		remaining := d.Amount.Sub(d.Paid)
		if remaining.IsNegative() {
			d.Overpaid = true
			d.Overpayment = remaining.Neg()
			remaining = decimal.Zero
		}
		d.Remaining = remaining
		d.Status = StatusFor(d.Amount, remaining)
		debts[id] = d
	}
	return debts
}

// DanglingPayments returns the IDs of payments whose link points at
// nothing in entries. They never affect settlement.
func DanglingPayments(entries []Entry) []string {
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Type.IsDebt() {
			known[e.ID] = true
		}
	}
	var dangling []string
	for _, e := range entries {
		if e.Type.IsPayment() && e.LinkedTransactionID != "" && !known[e.LinkedTransactionID] {
			dangling = append(dangling, e.ID)
		}
	}
	return dangling
}
