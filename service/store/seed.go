package store

import "github.com/agentgate/agentgate/model"

// Seed is the declarative initial content of a store, typically loaded from
// a YAML asset via the meta service. Card pins appear in plaintext in the
// seed document and are hashed on ingestion.
type Seed struct {
	Cards        []*model.Card          `json:"cards" yaml:"cards"`
	Policies     []*model.ExpensePolicy `json:"policies" yaml:"policies"`
	Transactions []*model.Transaction   `json:"transactions" yaml:"transactions"`
}
