package agentgate_test

import (
	"context"
	"embed"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"

	"github.com/agentgate/agentgate"
	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/approval"
	"github.com/agentgate/agentgate/service/meta"
)

//go:embed testdata/*
var embedFS embed.FS

func newTestService(t *testing.T, options ...agentgate.Option) (*agentgate.Service, chan *approval.Presentation) {
	t.Helper()
	presentations := make(chan *approval.Presentation, 1)
	renderer := approval.RendererFunc(func(_ context.Context, p *approval.Presentation) error {
		presentations <- p
		return nil
	})

	ctx := context.Background()
	metaService := meta.New(afs.New(), "embed:///testdata", &embedFS)
	var cfg agentgate.Config
	require.NoError(t, metaService.Load(ctx, "config.yaml", &cfg))

	base := []agentgate.Option{
		agentgate.WithMetaService(metaService),
		agentgate.WithFetchDelay(0),
		agentgate.WithApprovalRenderer(renderer),
	}
	srv, err := agentgate.NewFromConfig(ctx, &cfg, append(base, options...)...)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	require.NoError(t, srv.Start(runCtx))
	t.Cleanup(func() {
		cancel()
		srv.Shutdown()
	})
	return srv, presentations
}

func TestService_ShowTransactions(t *testing.T) {
	srv, _ := newTestService(t)
	session := srv.NewSession(&policy.Actor{Name: "mia", Role: policy.RoleMember})

	outcome, err := session.Execute(context.Background(), "showTransactions", nil)
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeOK, outcome.Status)
	assert.Equal(t, "showing 2 transaction(s)", outcome.Message)

	outcome, err = session.Execute(context.Background(), "showTransactions",
		map[string]interface{}{"card4Digits": "1234"})
	require.NoError(t, err)
	assert.Equal(t, "showing 1 transaction(s)", outcome.Message)
}

func TestService_PermissionsPerRole(t *testing.T) {
	srv, _ := newTestService(t)
	member := srv.NewSession(&policy.Actor{Name: "mia", Role: policy.RoleMember})

	before := srv.Store().MutationCount()
	outcome, err := member.Execute(context.Background(), "addNewCard",
		map[string]interface{}{"type": "visa", "pin": "4321"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeDenied, outcome.Status)
	assert.Equal(t, before, srv.Store().MutationCount())

	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})
	outcome, err = admin.Execute(context.Background(), "addNewCard",
		map[string]interface{}{"type": "visa", "pin": "4321"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeOK, outcome.Status)
	assert.Equal(t, before+1, srv.Store().MutationCount())
}

func TestService_AddNote(t *testing.T) {
	srv, _ := newTestService(t)
	member := srv.NewSession(&policy.Actor{Name: "mia", Role: policy.RoleMember})

	outcome, err := member.Execute(context.Background(), "addNoteToTransaction",
		map[string]interface{}{"transactionId": "t-1001", "note": "team offsite lunch"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeOK, outcome.Status)

	transaction, err := srv.Store().Transaction(context.Background(), "t-1001")
	require.NoError(t, err)
	require.Len(t, transaction.Notes, 1)
	assert.Equal(t, "team offsite lunch", transaction.Notes[0].Content)

	outcome, err = member.Execute(context.Background(), "addNoteToTransaction",
		map[string]interface{}{"transactionId": "t-9999", "note": "ghost"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeInvalid, outcome.Status)
	assert.Equal(t, "transaction t-9999 was not found", outcome.Message)
}

func TestService_AssignPolicy(t *testing.T) {
	srv, _ := newTestService(t)
	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})

	outcome, err := admin.Execute(context.Background(), "assignPolicyToCard",
		map[string]interface{}{"card4Digits": "5678", "policy": "software"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeOK, outcome.Status)

	outcome, err = admin.Execute(context.Background(), "assignPolicyToCard",
		map[string]interface{}{"card4Digits": "5678", "policy": "entertainment"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeInvalid, outcome.Status)
	assert.Equal(t, "could not find matching policy to assign", outcome.Message)
}

func TestService_ApprovalRound(t *testing.T) {
	srv, presentations := newTestService(t)
	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})

	outcomeCh := make(chan *execution.Outcome, 1)
	go func() {
		outcome, err := admin.Execute(context.Background(), "showAndApproveTransactions",
			map[string]interface{}{"transactionId": "please approve t-1001"})
		require.NoError(t, err)
		outcomeCh <- outcome
	}()

	select {
	case p := <-presentations:
		require.Len(t, p.Items, 1)
		assert.Equal(t, "t-1001", p.Items[0].Transaction.ID)
		require.NoError(t, p.OnApprove("t-1001"))
	case <-time.After(2 * time.Second):
		t.Fatal("no presentation arrived")
	}

	select {
	case outcome := <-outcomeCh:
		assert.Equal(t, execution.OutcomeOK, outcome.Status)
		assert.Equal(t, "transaction t-1001 approved", outcome.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("approval round did not resolve")
	}

	transaction, err := srv.Store().Transaction(context.Background(), "t-1001")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionApproved, transaction.Status)
}

func TestService_ApprovalWithNoPendingMatch(t *testing.T) {
	srv, _ := newTestService(t)
	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})

	// t-1002 is already approved, so nothing is pending for it
	outcome, err := admin.Execute(context.Background(), "showAndApproveTransactions",
		map[string]interface{}{"transactionId": "t-1002"})
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeNoPendingItem, outcome.Status)
	assert.Equal(t, approval.NoPendingItemMessage, outcome.Message)
}

func TestSession_ActionView(t *testing.T) {
	srv, _ := newTestService(t)

	member := srv.NewSession(&policy.Actor{Name: "mia", Role: policy.RoleMember})
	memberKeys := map[string]bool{}
	for _, descriptor := range member.AvailableActions() {
		memberKeys[descriptor.Key] = descriptor.Enabled
	}
	enabled, seen := memberKeys["addNewCard"]
	assert.True(t, seen, "denied actions stay listed")
	assert.False(t, enabled, "denied actions are disabled")
	assert.True(t, memberKeys["showTransactions"])
	_, listed := memberKeys["queryVendorMSA"]
	assert.False(t, listed, "sensitive actions vanish from the view")

	executive := srv.NewSession(&policy.Actor{Name: "eve", Role: policy.RoleExecutiveAdmin})
	executiveKeys := map[string]bool{}
	for _, descriptor := range executive.AvailableActions() {
		executiveKeys[descriptor.Key] = descriptor.Enabled
	}
	assert.True(t, executiveKeys["queryVendorMSA"])

	assert.Equal(t, []string{
		"addNewCard",
		"assignPolicyToCard",
		"queryVendorMSA",
		"showAndApproveTransactions",
	}, member.ForbiddenActions())
	assert.Contains(t, member.Readable(), "mia is not allowed to perform")
}

func TestService_VendorMSA(t *testing.T) {
	srv, _ := newTestService(t)

	executive := srv.NewSession(&policy.Actor{Name: "eve", Role: policy.RoleExecutiveAdmin})
	outcome, err := executive.Execute(context.Background(), "queryVendorMSA", nil)
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeOK, outcome.Status)

	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})
	outcome, err = admin.Execute(context.Background(), "queryVendorMSA", nil)
	require.NoError(t, err)
	assert.Equal(t, execution.OutcomeDenied, outcome.Status)
}

func TestSession_CloseWithdrawsPendingApprovals(t *testing.T) {
	srv, presentations := newTestService(t)
	admin := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})

	errCh := make(chan error, 1)
	go func() {
		_, err := admin.Execute(context.Background(), "showAndApproveTransactions",
			map[string]interface{}{"transactionId": "t-1001"})
		errCh <- err
	}()

	select {
	case <-presentations:
	case <-time.After(2 * time.Second):
		t.Fatal("no presentation arrived")
	}

	require.NoError(t, admin.Close(context.Background()))

	// the suspended round resolves without touching the transaction
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("closing the session did not release the round")
	}
	transaction, err := srv.Store().Transaction(context.Background(), "t-1001")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionPending, transaction.Status)

	pending, err := srv.Approvals().ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}
