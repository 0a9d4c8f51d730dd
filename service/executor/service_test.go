package executor_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/action/cards"
	"github.com/agentgate/agentgate/service/executor"
	smemory "github.com/agentgate/agentgate/service/store/memory"
)

func newExecutorFixture(t *testing.T) (executor.Service, *smemory.Service) {
	t.Helper()
	aStore := smemory.New()
	actions := extension.NewActions()
	actions.Register(cards.New(aStore))
	evaluator, err := policy.NewEvaluator(policy.DefaultSet())
	require.NoError(t, err)
	return executor.NewService(actions, evaluator), aStore
}

func asActor(role policy.Role) context.Context {
	return policy.WithActor(context.Background(), &policy.Actor{Name: "tester", Role: role})
}

func TestService_PermissionGate(t *testing.T) {
	svc, aStore := newExecutorFixture(t)

	invocation := execution.NewInvocation("s1", "addNewCard",
		map[string]interface{}{"type": "visa", "pin": "1234"})
	require.NoError(t, svc.Execute(asActor(policy.RoleMember), invocation))

	require.NotNil(t, invocation.Outcome)
	assert.Equal(t, execution.OutcomeDenied, invocation.Outcome.Status)
	assert.Equal(t, "you do not have permission to perform addNewCard", invocation.Outcome.Message)
	assert.Equal(t, int64(0), aStore.MutationCount(), "a denied action must not touch the store")
}

func TestService_MissingActorIsDenied(t *testing.T) {
	svc, aStore := newExecutorFixture(t)

	invocation := execution.NewInvocation("s1", "addNewCard",
		map[string]interface{}{"type": "visa", "pin": "1234"})
	require.NoError(t, svc.Execute(context.Background(), invocation))

	assert.Equal(t, execution.OutcomeDenied, invocation.Outcome.Status)
	assert.Equal(t, int64(0), aStore.MutationCount())
}

func TestService_UnknownActionReadsAsDenied(t *testing.T) {
	svc, _ := newExecutorFixture(t)

	invocation := execution.NewInvocation("s1", "dropAllCards", nil)
	require.NoError(t, svc.Execute(asActor(policy.RoleExecutiveAdmin), invocation))

	assert.Equal(t, execution.OutcomeDenied, invocation.Outcome.Status)
	assert.Equal(t, "you do not have permission to perform dropAllCards", invocation.Outcome.Message)
}

func TestService_RequiredParameterValidation(t *testing.T) {
	svc, aStore := newExecutorFixture(t)

	testCases := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing pin", map[string]interface{}{"type": "visa"}},
		{"empty pin", map[string]interface{}{"type": "visa", "pin": ""}},
		{"nil args", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			invocation := execution.NewInvocation("s1", "addNewCard", tc.args)
			require.NoError(t, svc.Execute(asActor(policy.RoleDepartmentAdmin), invocation))
			assert.Equal(t, execution.OutcomeInvalid, invocation.Outcome.Status)
		})
	}
	assert.Equal(t, int64(0), aStore.MutationCount())
}

func TestService_HappyPath(t *testing.T) {
	svc, aStore := newExecutorFixture(t)

	invocation := execution.NewInvocation("s1", "addNewCard",
		map[string]interface{}{"type": "visa", "pin": "1234"})
	require.NoError(t, svc.Execute(asActor(policy.RoleDepartmentAdmin), invocation))

	require.NotNil(t, invocation.Outcome)
	assert.Equal(t, execution.OutcomeOK, invocation.Outcome.Status)
	assert.Equal(t, execution.StateCompleted, invocation.GetState())
	assert.Equal(t, int64(1), aStore.MutationCount())

	cardsInStore, err := aStore.Cards(context.Background())
	require.NoError(t, err)
	require.Len(t, cardsInStore, 1)
	assert.Contains(t, invocation.Outcome.Message, cardsInStore[0].Last4())
}

// faulty is an action service whose only method panics.
type faulty struct{}

type faultyInput struct{}
type faultyOutput struct{}

func (f *faulty) Name() string { return "faulty" }

func (f *faulty) Methods() types.Signatures {
	return []types.Signature{{
		Name:   "explode",
		Mode:   types.ModeDirect,
		Input:  reflect.TypeOf(&faultyInput{}),
		Output: reflect.TypeOf(&faultyOutput{}),
	}}
}

func (f *faulty) Method(name string) (types.Executable, error) {
	if name != "explode" {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(context.Context, interface{}, interface{}) error {
		panic("boom")
	}, nil
}

func TestService_PanicRecovery(t *testing.T) {
	// grant the action so the gate lets it through
	set := policy.DefaultSet()
	set["explode"] = []policy.Role{policy.RoleMember}
	evaluator, err := policy.NewEvaluator(set)
	require.NoError(t, err)

	actions := extension.NewActions()
	actions.Register(&faulty{})
	svc := executor.NewService(actions, evaluator)

	invocation := execution.NewInvocation("s1", "explode", nil)
	require.NoError(t, svc.Execute(asActor(policy.RoleMember), invocation))

	require.NotNil(t, invocation.Outcome)
	assert.Equal(t, execution.OutcomeFailed, invocation.Outcome.Status)
	assert.Contains(t, invocation.Outcome.Message, "boom")
	assert.Equal(t, execution.StateFailed, invocation.GetState())
}
