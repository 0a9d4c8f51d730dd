package approval

import (
	"context"
	"errors"
	"strings"

	"github.com/agentgate/agentgate/internal/clock"
	"github.com/agentgate/agentgate/internal/idgen"
	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/store"
)

// FlowState tracks where a review round currently is.
type FlowState string

const (
	// FlowAwaitingPresentation means pending transactions are being
	// collected and nothing has been shown yet.
	FlowAwaitingPresentation FlowState = "awaitingPresentation"
	// FlowPresented means the reviewer sees the items and a verdict is
	// outstanding.
	FlowPresented FlowState = "presented"
	// FlowResolved means a verdict has been recorded against the store.
	FlowResolved FlowState = "resolved"
	// FlowNoPendingItem means nothing matched and the round ended without
	// any presentation or mutation.
	FlowNoPendingItem FlowState = "noPendingItem"
)

// NoPendingItemMessage is reported when the supplied argument matches no
// pending transaction.
const NoPendingItemMessage = "A transaction ID was not given, could be that there arent any pending approval or there was an error"

// Result captures how a review round ended.
type Result struct {
	State         FlowState          `json:"state"`
	RequestID     string             `json:"requestId,omitempty"`
	TransactionID string             `json:"transactionId,omitempty"`
	Approved      *bool              `json:"approved,omitempty"`
	Outcome       *execution.Outcome `json:"outcome"`
}

// Flow drives one human review round: collect the pending transactions the
// agent-supplied argument refers to, present them, block until the reviewer
// decides and record the verdict. Cancellation before a decision withdraws
// the request and leaves the store untouched.
type Flow struct {
	store    store.Service
	approver Service
	renderer Renderer
}

// NewFlow creates a review flow over the given store and approval service.
func NewFlow(aStore store.Service, approver Service, renderer Renderer) *Flow {
	return &Flow{store: aStore, approver: approver, renderer: renderer}
}

// Run executes a single round for the supplied transaction reference. The
// reference is matched by containment: a pending transaction participates
// when its id appears anywhere inside the supplied string, so both a bare id
// and a sentence embedding one resolve the same way.
func (f *Flow) Run(ctx context.Context, sessionID, invocationID, action, transactionID string) (*Result, error) {
	matched, err := f.match(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &Result{
			State:   FlowNoPendingItem,
			Outcome: execution.NoPendingItem(NoPendingItemMessage),
		}, nil
	}

	request := &Request{
		ID:           idgen.New(),
		SessionID:    sessionID,
		InvocationID: invocationID,
		Action:       action,
		CreatedAt:    clock.Now(),
	}
	for _, t := range matched {
		request.TransactionIDs = append(request.TransactionIDs, t.ID)
	}
	if err = f.approver.RequestApproval(ctx, request); err != nil {
		return nil, err
	}

	if err = f.present(ctx, request, matched); err != nil {
		return nil, err
	}

	decision, err := f.approver.WaitForDecision(ctx, request.ID)
	if err != nil {
		// A cancelled round is withdrawn without touching any transaction.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = f.approver.Cancel(context.WithoutCancel(ctx), request.ID)
		}
		return nil, err
	}
	return f.resolve(ctx, request, decision)
}

// match returns the pending transactions whose id is contained in ref.
func (f *Flow) match(ctx context.Context, ref string) ([]*model.Transaction, error) {
	pending, err := f.store.Transactions(ctx,
		dao.NewParameter("Status", string(model.TransactionPending)))
	if err != nil {
		return nil, err
	}
	var matched []*model.Transaction
	for _, t := range pending {
		if t.ID != "" && strings.Contains(ref, t.ID) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (f *Flow) present(ctx context.Context, request *Request, matched []*model.Transaction) error {
	if f.renderer == nil {
		return nil
	}
	presentation := &Presentation{
		RequestID: request.ID,
		OnApprove: func(transactionID string) error {
			_, err := f.approver.Decide(context.WithoutCancel(ctx), request.ID, transactionID, true)
			return err
		},
		OnDeny: func(transactionID string) error {
			_, err := f.approver.Decide(context.WithoutCancel(ctx), request.ID, transactionID, false)
			return err
		},
	}
	for _, t := range matched {
		presentation.Items = append(presentation.Items, NewItem(t))
	}
	return f.renderer.Present(ctx, presentation)
}

func (f *Flow) resolve(ctx context.Context, request *Request, decision *Decision) (*Result, error) {
	status := model.TransactionDenied
	verdict := "denied"
	if decision.Approved {
		status = model.TransactionApproved
		verdict = "approved"
	}
	if err := f.store.SetTransactionStatus(ctx, decision.TransactionID, status); err != nil {
		return nil, err
	}
	return &Result{
		State:         FlowResolved,
		RequestID:     request.ID,
		TransactionID: decision.TransactionID,
		Approved:      &decision.Approved,
		Outcome:       execution.OK("transaction %v %v", decision.TransactionID, verdict),
	}, nil
}
