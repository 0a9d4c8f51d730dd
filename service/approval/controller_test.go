package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/approval"
	amemory "github.com/agentgate/agentgate/service/approval/memory"
	"github.com/agentgate/agentgate/service/store"
	smemory "github.com/agentgate/agentgate/service/store/memory"
)

func newFlowFixture(t *testing.T, renderer approval.Renderer, transactions ...*model.Transaction) (*approval.Flow, *smemory.Service, approval.Service) {
	t.Helper()
	aStore, err := smemory.NewWithSeed(context.Background(), &store.Seed{Transactions: transactions})
	require.NoError(t, err)
	approver := amemory.New()
	return approval.NewFlow(aStore, approver, renderer), aStore, approver
}

// decideRenderer resolves the round as soon as it is presented.
func decideRenderer(approve bool, transactionID string, captured **approval.Presentation) approval.Renderer {
	return approval.RendererFunc(func(_ context.Context, p *approval.Presentation) error {
		if captured != nil {
			*captured = p
		}
		if approve {
			return p.OnApprove(transactionID)
		}
		return p.OnDeny(transactionID)
	})
}

func TestFlow_Approve(t *testing.T) {
	var presented *approval.Presentation
	flow, aStore, _ := newFlowFixture(t,
		decideRenderer(true, "t-1001", &presented),
		&model.Transaction{ID: "t-1001", Title: "Team lunch", Amount: 42.5})

	result, err := flow.Run(context.Background(), "s1", "i1", "showAndApproveTransactions", "please approve t-1001")
	require.NoError(t, err)

	assert.Equal(t, approval.FlowResolved, result.State)
	assert.Equal(t, "t-1001", result.TransactionID)
	require.NotNil(t, result.Approved)
	assert.True(t, *result.Approved)
	assert.Equal(t, execution.OutcomeOK, result.Outcome.Status)
	assert.Equal(t, "transaction t-1001 approved", result.Outcome.Message)

	transaction, err := aStore.Transaction(context.Background(), "t-1001")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionApproved, transaction.Status)

	require.NotNil(t, presented)
	require.Len(t, presented.Items, 1)
	assert.Contains(t, presented.Items[0].ApproveDiff, "+status: approved")
	assert.Contains(t, presented.Items[0].DenyDiff, "+status: denied")
}

func TestFlow_Deny(t *testing.T) {
	flow, aStore, _ := newFlowFixture(t,
		decideRenderer(false, "t-1001", nil),
		&model.Transaction{ID: "t-1001", Title: "Team lunch"})

	result, err := flow.Run(context.Background(), "s1", "i1", "showAndApproveTransactions", "t-1001")
	require.NoError(t, err)

	assert.Equal(t, approval.FlowResolved, result.State)
	assert.Equal(t, "transaction t-1001 denied", result.Outcome.Message)

	transaction, _ := aStore.Transaction(context.Background(), "t-1001")
	assert.Equal(t, model.TransactionDenied, transaction.Status)
}

func TestFlow_NoPendingItem(t *testing.T) {
	rendered := false
	renderer := approval.RendererFunc(func(context.Context, *approval.Presentation) error {
		rendered = true
		return nil
	})
	flow, aStore, _ := newFlowFixture(t, renderer,
		&model.Transaction{ID: "t-1001", Status: model.TransactionApproved})

	testCases := []struct {
		name string
		ref  string
	}{
		{"empty reference", ""},
		{"unknown reference", "approve t-9999"},
		{"terminal transaction", "t-1001"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := flow.Run(context.Background(), "s1", "i1", "showAndApproveTransactions", tc.ref)
			require.NoError(t, err)
			assert.Equal(t, approval.FlowNoPendingItem, result.State)
			assert.Equal(t, execution.OutcomeNoPendingItem, result.Outcome.Status)
			assert.Equal(t, approval.NoPendingItemMessage, result.Outcome.Message)
		})
	}
	assert.False(t, rendered, "nothing may be presented")
	assert.Equal(t, int64(0), aStore.MutationCount(), "nothing may be mutated")
}

func TestFlow_ContainmentMatchesEveryEmbeddedID(t *testing.T) {
	var presented *approval.Presentation
	// "t-10" embeds "t-1", so both pending transactions participate
	flow, aStore, _ := newFlowFixture(t,
		decideRenderer(true, "t-10", &presented),
		&model.Transaction{ID: "t-1", Title: "Hotel"},
		&model.Transaction{ID: "t-10", Title: "Flights"})

	result, err := flow.Run(context.Background(), "s1", "i1", "showAndApproveTransactions", "t-10")
	require.NoError(t, err)

	require.NotNil(t, presented)
	assert.Len(t, presented.Items, 2)
	assert.Equal(t, "t-10", result.TransactionID)

	approved, _ := aStore.Transaction(context.Background(), "t-10")
	assert.Equal(t, model.TransactionApproved, approved.Status)
	untouched, _ := aStore.Transaction(context.Background(), "t-1")
	assert.Equal(t, model.TransactionPending, untouched.Status)
}

func TestFlow_CancellationLeavesStoreUntouched(t *testing.T) {
	silent := approval.RendererFunc(func(context.Context, *approval.Presentation) error { return nil })
	flow, aStore, approver := newFlowFixture(t, silent,
		&model.Transaction{ID: "t-1001", Title: "Team lunch"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := flow.Run(ctx, "s1", "i1", "showAndApproveTransactions", "t-1001")
		done <- err
	}()

	// wait for the round to be requested, then abandon it
	require.Eventually(t, func() bool {
		pending, _ := approver.ListPending(context.Background())
		return len(pending) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	transaction, _ := aStore.Transaction(context.Background(), "t-1001")
	assert.Equal(t, model.TransactionPending, transaction.Status)
	assert.Equal(t, int64(0), aStore.MutationCount())

	// the withdrawn request no longer lingers
	pending, _ := approver.ListPending(context.Background())
	assert.Empty(t, pending)
}

func TestFlow_SecondDecisionIsRefused(t *testing.T) {
	renderer := approval.RendererFunc(func(_ context.Context, p *approval.Presentation) error {
		require.NoError(t, p.OnApprove("t-1001"))
		assert.ErrorIs(t, p.OnDeny("t-1001"), amemory.ErrAlreadyDecided)
		return nil
	})
	flow, aStore, _ := newFlowFixture(t, renderer,
		&model.Transaction{ID: "t-1001", Title: "Team lunch"})

	result, err := flow.Run(context.Background(), "s1", "i1", "showAndApproveTransactions", "t-1001")
	require.NoError(t, err)
	assert.Equal(t, "transaction t-1001 approved", result.Outcome.Message)

	transaction, _ := aStore.Transaction(context.Background(), "t-1001")
	assert.Equal(t, model.TransactionApproved, transaction.Status)
}

func TestService_DecideUnknownTransaction(t *testing.T) {
	approver := amemory.New()
	ctx := context.Background()
	require.NoError(t, approver.RequestApproval(ctx, &approval.Request{
		ID: "r1", Action: "showAndApproveTransactions", TransactionIDs: []string{"t-1"},
	}))

	_, err := approver.Decide(ctx, "r1", "t-9", true)
	assert.Error(t, err)

	// the request is still pending and can be resolved properly
	decision, err := approver.Decide(ctx, "r1", "t-1", true)
	require.NoError(t, err)
	assert.True(t, decision.Approved)
}

func TestAutoApprove(t *testing.T) {
	flow, aStore, approver := newFlowFixture(t,
		approval.RendererFunc(func(context.Context, *approval.Presentation) error { return nil }),
		&model.Transaction{ID: "t-1001", Title: "Team lunch"})

	ctx := context.Background()
	stop := approval.AutoApprove(ctx, approver, 5*time.Millisecond)
	defer stop()

	result, err := flow.Run(ctx, "s1", "i1", "showAndApproveTransactions", "t-1001")
	require.NoError(t, err)
	assert.Equal(t, approval.FlowResolved, result.State)

	transaction, _ := aStore.Transaction(ctx, "t-1001")
	assert.Equal(t, model.TransactionApproved, transaction.Status)
}
