package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentgate/agentgate/model"
)

var testCards = []*model.Card{
	{ID: "c1", Number: "4532015112831234"},
	{ID: "c2", Number: "5425233430105678"},
}

var testTransactions = []*model.Transaction{
	{ID: "t1", CardID: "c1", ExpensePolicyID: "p1", Title: "Team lunch"},
	{ID: "t2", CardID: "c1", ExpensePolicyID: "p2", Title: "Cloud hosting"},
	{ID: "t3", CardID: "c2", ExpensePolicyID: "p1", Title: "Office lunch supplies"},
}

func ids(transactions []*model.Transaction) []string {
	var out []string
	for _, t := range transactions {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	testCases := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{
			name:     "no criteria returns everything",
			criteria: Criteria{},
			expected: []string{"t1", "t2", "t3"},
		},
		{
			name:     "card digits",
			criteria: Criteria{CardLast4: "1234"},
			expected: []string{"t1", "t2"},
		},
		{
			name:     "policy id",
			criteria: Criteria{PolicyID: "p1"},
			expected: []string{"t1", "t3"},
		},
		{
			name:     "title fragment is case insensitive",
			criteria: Criteria{Title: "LUNCH"},
			expected: []string{"t1", "t3"},
		},
		{
			name:     "card digits win over policy and title",
			criteria: Criteria{CardLast4: "5678", PolicyID: "p2", Title: "lunch"},
			expected: []string{"t3"},
		},
		{
			name:     "policy wins over title",
			criteria: Criteria{PolicyID: "p2", Title: "lunch"},
			expected: []string{"t2"},
		},
		{
			name:     "unknown card digits match nothing",
			criteria: Criteria{CardLast4: "0000"},
			expected: nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Filter(testTransactions, testCards, tc.criteria)
			assert.Equal(t, tc.expected, ids(actual))
		})
	}
}

func TestCriteria_Empty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.False(t, Criteria{Title: "lunch"}.Empty())
}
