package model

// ExpensePolicy describes a spending policy that can be assigned to cards.
// Read-only from the dispatch core's perspective.
type ExpensePolicy struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}
