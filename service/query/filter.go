// Package query implements the transaction filtering used by display
// requests and the approval workflow.
package query

import (
	"strings"

	"github.com/agentgate/agentgate/model"
)

// Criteria carries the optional filters of a transaction lookup. Exactly one
// branch applies per call even when several criteria are supplied: card
// suffix wins over policy id, policy id over title. This first-match
// precedence is deliberate, not an error state.
type Criteria struct {
	CardLast4 string
	PolicyID  string
	Title     string
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c.CardLast4 == "" && c.PolicyID == "" && c.Title == ""
}

// Filter returns the matching subset of transactions. With no criteria the
// input is returned unchanged.
func Filter(transactions []*model.Transaction, cards []*model.Card, criteria Criteria) []*model.Transaction {
	switch {
	case criteria.CardLast4 != "":
		return byCardLast4(transactions, cards, criteria.CardLast4)
	case criteria.PolicyID != "":
		return byPolicyID(transactions, criteria.PolicyID)
	case criteria.Title != "":
		return byTitle(transactions, criteria.Title)
	}
	return transactions
}

// byCardLast4 joins each transaction through the card collection and keeps
// those whose card number ends with the supplied digits.
func byCardLast4(transactions []*model.Transaction, cards []*model.Card, last4 string) []*model.Transaction {
	matching := make(map[string]bool, len(cards))
	for _, card := range cards {
		if card.Last4() == last4 {
			matching[card.ID] = true
		}
	}
	var out []*model.Transaction
	for _, transaction := range transactions {
		if matching[transaction.CardID] {
			out = append(out, transaction)
		}
	}
	return out
}

func byPolicyID(transactions []*model.Transaction, policyID string) []*model.Transaction {
	var out []*model.Transaction
	for _, transaction := range transactions {
		if transaction.ExpensePolicyID == policyID {
			out = append(out, transaction)
		}
	}
	return out
}

// byTitle keeps transactions whose title contains the fragment,
// case-insensitive.
func byTitle(transactions []*model.Transaction, title string) []*model.Transaction {
	needle := strings.ToLower(title)
	var out []*model.Transaction
	for _, transaction := range transactions {
		if strings.Contains(strings.ToLower(transaction.Title), needle) {
			out = append(out, transaction)
		}
	}
	return out
}
