package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Allowed(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultSet())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		action   string
		role     Role
		expected bool
	}{
		{"member can list transactions", "showTransactions", RoleMember, true},
		{"member can annotate", "addNoteToTransaction", RoleMember, true},
		{"member cannot add card", "addNewCard", RoleMember, false},
		{"member cannot approve", "showAndApproveTransactions", RoleMember, false},
		{"department admin can add card", "addNewCard", RoleDepartmentAdmin, true},
		{"department admin can approve", "showAndApproveTransactions", RoleDepartmentAdmin, true},
		{"department admin cannot read vendor msa", "queryVendorMSA", RoleDepartmentAdmin, false},
		{"executive inherits card management", "addNewCard", RoleExecutiveAdmin, true},
		{"executive inherits approvals", "showAndApproveTransactions", RoleExecutiveAdmin, true},
		{"executive reads vendor msa", "queryVendorMSA", RoleExecutiveAdmin, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, evaluator.Allowed(tc.action, tc.role))
		})
	}
}

func TestEvaluator_FailClosed(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultSet())
	require.NoError(t, err)

	assert.False(t, evaluator.Allowed("dropAllCards", RoleExecutiveAdmin))
	assert.False(t, evaluator.Allowed("", RoleExecutiveAdmin))
	assert.False(t, evaluator.Allowed("showTransactions", Role("intern")))

	var nilEvaluator *Evaluator
	assert.False(t, nilEvaluator.Allowed("showTransactions", RoleMember))
}

func TestEvaluator_Forbidden(t *testing.T) {
	evaluator, err := NewEvaluator(DefaultSet())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"addNewCard",
		"assignPolicyToCard",
		"queryVendorMSA",
		"showAndApproveTransactions",
	}, evaluator.Forbidden(RoleMember))

	assert.Equal(t, []string{"queryVendorMSA"}, evaluator.Forbidden(RoleDepartmentAdmin))
	assert.Empty(t, evaluator.Forbidden(RoleExecutiveAdmin))
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet([]byte(`
permissions:
  showTransactions: [member, departmentAdmin]
  addNewCard: [departmentAdmin]
`))
	require.NoError(t, err)

	evaluator, err := NewEvaluator(set)
	require.NoError(t, err)

	assert.True(t, evaluator.Allowed("showTransactions", RoleMember))
	assert.False(t, evaluator.Allowed("addNewCard", RoleMember))
	assert.True(t, evaluator.Allowed("addNewCard", RoleDepartmentAdmin))
	// inherited through the departmentAdmin grant
	assert.True(t, evaluator.Allowed("addNewCard", RoleExecutiveAdmin))
	// absent from the set entirely
	assert.False(t, evaluator.Allowed("queryVendorMSA", RoleExecutiveAdmin))
}
