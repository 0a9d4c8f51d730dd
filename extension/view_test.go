package extension_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
)

// stub is a minimal action service for registry tests.
type stub struct {
	name       string
	signatures types.Signatures
}

func (s *stub) Name() string              { return s.name }
func (s *stub) Methods() types.Signatures { return s.signatures }
func (s *stub) Method(name string) (types.Executable, error) {
	if s.signatures.Lookup(name) == nil {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(context.Context, interface{}, interface{}) error { return nil }, nil
}

type anyIO struct{}

func signature(name string, sensitive bool) types.Signature {
	return types.Signature{
		Name:      name,
		Mode:      types.ModeDirect,
		Sensitive: sensitive,
		Input:     reflect.TypeOf(&anyIO{}),
		Output:    reflect.TypeOf(&anyIO{}),
	}
}

func newRegistry(t *testing.T) (*extension.Actions, *policy.Evaluator) {
	t.Helper()
	actions := extension.NewActions()
	actions.Register(&stub{name: "ledger", signatures: types.Signatures{
		signature("listEntries", false),
		signature("closeBooks", false),
	}})
	actions.Register(&stub{name: "contracts", signatures: types.Signatures{
		signature("readContract", true),
	}})
	evaluator, err := policy.NewEvaluator(policy.Set{
		"listEntries":  {policy.RoleMember, policy.RoleDepartmentAdmin},
		"closeBooks":   {policy.RoleDepartmentAdmin},
		"readContract": {policy.RoleExecutiveAdmin},
	})
	require.NoError(t, err)
	return actions, evaluator
}

func TestActions_Resolve(t *testing.T) {
	actions, _ := newRegistry(t)

	action, err := actions.Resolve("closeBooks")
	require.NoError(t, err)
	assert.Equal(t, "ledger", action.Service.Name())
	assert.Equal(t, "closeBooks", action.Signature.Name)

	_, err = actions.Resolve("unknown")
	assert.ErrorIs(t, err, extension.ErrActionNotFound)
}

func TestActions_View(t *testing.T) {
	actions, evaluator := newRegistry(t)

	keyed := func(view []*extension.Descriptor) map[string]bool {
		out := map[string]bool{}
		for _, d := range view {
			out[d.Key] = d.Enabled
		}
		return out
	}

	// denied plain actions stay listed as disabled
	memberView := actions.View(evaluator, policy.RoleMember)
	assert.Equal(t, map[string]bool{
		"listEntries": true,
		"closeBooks":  false,
	}, keyed(memberView))

	// sensitive actions vanish for everyone but the granted role
	adminView := actions.View(evaluator, policy.RoleDepartmentAdmin)
	assert.Equal(t, map[string]bool{
		"listEntries": true,
		"closeBooks":  true,
	}, keyed(adminView))

	executiveView := actions.View(evaluator, policy.RoleExecutiveAdmin)
	assert.Equal(t, map[string]bool{
		"listEntries": true,
		"closeBooks":  true,
		"readContract": true,
	}, keyed(executiveView))

	// the view is ordered by key
	var keys []string
	for _, d := range executiveView {
		keys = append(keys, d.Key)
	}
	assert.Equal(t, []string{"closeBooks", "listEntries", "readContract"}, keys)
}
