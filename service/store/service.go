package store

import (
	"context"

	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/service/dao"
)

// Service is the card/transaction store the dispatch core consumes. The
// store is the single writer of record: every mutation a handler performs
// goes through one of these calls, never through direct struct updates.
type Service interface {
	// CreateCard issues a new card from the request and returns it. Single
	// attempt; a failure surfaces immediately to the caller.
	CreateCard(ctx context.Context, request *model.NewCardRequest) (*model.Card, error)

	// SetPin replaces the pin of an existing card.
	SetPin(ctx context.Context, cardID, pin string) error

	// VerifyPin checks a candidate pin against the stored one.
	VerifyPin(ctx context.Context, cardID, pin string) (bool, error)

	// AssignPolicy attaches an expense policy to a card.
	AssignPolicy(ctx context.Context, cardID, policyID string) error

	// AddNote appends an annotation to a transaction.
	AddNote(ctx context.Context, transactionID, content string) error

	// SetTransactionStatus records a review decision. Transitions are
	// monotonic: only pending transactions accept a new status.
	SetTransactionStatus(ctx context.Context, transactionID string, status model.TransactionStatus) error

	// Read accessors.
	Cards(ctx context.Context) ([]*model.Card, error)
	Policies(ctx context.Context) ([]*model.ExpensePolicy, error)
	Transactions(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Transaction, error)
	Transaction(ctx context.Context, id string) (*model.Transaction, error)

	// MutationCount returns how many state-changing calls have been issued
	// since construction. Permission and validation tests assert it stays
	// at zero when a gate refuses an action.
	MutationCount() int64
}
