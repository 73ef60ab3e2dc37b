package models

import (
	"fmt"
	"time"
)

// TransactionType distinguishes the first payment from later renewals.
type TransactionType string

const (
	TransactionTypeSignup  TransactionType = "signup"
	TransactionTypeRenewal TransactionType = "renewal"
)

// Transaction is a row in the Transactions worksheet. The ledger is
// append-only; slice order mirrors append order.
type Transaction struct {
	TransactionID    string          `json:"transaction_id"`
	MemberID         int             `json:"member_id"`
	MembershipTypeID int             `json:"membership_types_id"`
	Type             TransactionType `json:"type"`
	Amount           float64         `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	TransactionDate  time.Time       `json:"transaction_date"`
	Note             string          `json:"note,omitempty"`
}

// PaymentOption maps a form label to the method value stored in the ledger.
type PaymentOption struct {
	ID     int
	Label  string
	Method string
}

var PaymentOptions = []PaymentOption{
	{ID: 1, Label: "Cash", Method: "cash"},
	{ID: 2, Label: "Trf/Qris", Method: "e-money"},
}

// PaymentMethodForLabel resolves a form label to its stored method value.
// Unknown labels fall back to the first option.
func PaymentMethodForLabel(label string) string {
	for _, opt := range PaymentOptions {
		if opt.Label == label {
			return opt.Method
		}
	}
	return PaymentOptions[0].Method
}

// NextTransactionID generates an id of the form YYYYMMDD-{member_id}. The
// base form is not unique when the same member transacts twice on one day,
// so a numeric suffix is appended until the id is unused in the ledger.
func NextTransactionID(ledger []Transaction, date time.Time, memberID int) string {
	taken := make(map[string]bool, len(ledger))
	for _, tx := range ledger {
		taken[tx.TransactionID] = true
	}

	base := fmt.Sprintf("%s-%d", date.Format("20060102"), memberID)
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !taken[id] {
			return id
		}
	}
}
