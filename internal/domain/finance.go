package domain

import "time"

// ============================================================
// Financial transactions
// ============================================================

// Transaction kinds.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is one financial entry (order payment, supplier expense...).
type Transaction struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // income | expense
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"` // always positive; kind carries the sign
	Method      string    `json:"method,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	OrderID     string    `json:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Signed returns the amount with the sign implied by the kind.
func (t *Transaction) Signed() float64 {
	if t.Kind == TransactionExpense {
		return -t.Amount
	}
	return t.Amount
}

// TransactionInput holds the editable fields of a transaction.
type TransactionInput struct {
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method,omitempty"`
	Date        string  `json:"date"`
	OrderID     string  `json:"order_id,omitempty"`
}

// TransactionFilter narrows a transaction listing. Zero values and the
// "all" sentinel impose no constraint.
type TransactionFilter struct {
	Kind     string `json:"kind,omitempty"`
	Category string `json:"category,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// Balance is the current balance as computed by the calcular_saldo_atual
// database function.
type Balance struct {
	Current      float64 `json:"current"`
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
}
