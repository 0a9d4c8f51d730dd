package model

import "time"

// TransactionStatus is the lifecycle state of a transaction. Transitions are
// monotonic: pending may move to approved or denied, terminal states never
// change again.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionDenied   TransactionStatus = "denied"
)

// Terminal reports whether the status admits no further transition.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionApproved || s == TransactionDenied
}

// Note is a free-form annotation attached to a transaction.
type Note struct {
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
}

// Transaction represents a card transaction awaiting or past review.
type Transaction struct {
	ID              string            `json:"id" yaml:"id"`
	CardID          string            `json:"cardId" yaml:"cardId"`
	ExpensePolicyID string            `json:"expensePolicyId,omitempty" yaml:"expensePolicyId,omitempty"`
	Title           string            `json:"title" yaml:"title"`
	Amount          float64           `json:"amount" yaml:"amount"`
	Status          TransactionStatus `json:"status" yaml:"status"`
	Notes           []Note            `json:"notes,omitempty" yaml:"notes,omitempty"`
}
