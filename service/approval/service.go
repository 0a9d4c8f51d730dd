package approval

import (
	"context"

	"github.com/agentgate/agentgate/service/messaging"
)

// Service defines the approval service interface.
type Service interface {
	RequestApproval(ctx context.Context, r *Request) error
	ListPending(ctx context.Context) ([]*Request, error)
	Decide(ctx context.Context, id, transactionID string, approved bool) (*Decision, error)
	Cancel(ctx context.Context, id string) error
	WaitForDecision(ctx context.Context, id string) (*Decision, error)
	Queue() messaging.Queue[Event]
}
