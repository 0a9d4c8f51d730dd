package approval

import (
	"time"
)

// Event envelope published on the approval queue.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"` // optional – session, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestCancelled = "request.cancelled"
	TopicDecisionCreated  = "decision.created"
)

// Request represents one round of human review: the pending transactions
// presented together for a single approve/deny decision.
type Request struct {
	ID           string    `json:"id"`                     // globally unique, primary key
	SessionID    string    `json:"sessionId,omitempty"`    // owning chat session
	InvocationID string    `json:"invocationId,omitempty"` // suspended invocation
	Action       string    `json:"action"`                 // action key that opened the round
	// TransactionIDs lists every pending transaction whose id is contained
	// in the agent-supplied argument. The decision picks one of them.
	TransactionIDs []string               `json:"transactionIds"`
	CreatedAt      time.Time              `json:"createdAt"`
	Meta           map[string]interface{} `json:"meta,omitempty"` // free-form: team, user, environment etc.
}

// Decision represents the human decision that resolves a request.
type Decision struct {
	ID            string    `json:"id"` // same as request.ID
	TransactionID string    `json:"transactionId"`
	Approved      bool      `json:"approved"`
	DecidedAt     time.Time `json:"decidedAt"`
}
