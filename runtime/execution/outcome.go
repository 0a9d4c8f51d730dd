package execution

import "fmt"

// OutcomeStatus classifies how an invocation concluded. The taxonomy is
// deliberately small: every failure mode the core can hit collapses into one
// of these kinds before it reaches the agent.
type OutcomeStatus string

const (
	OutcomeOK OutcomeStatus = "ok"
	// OutcomeDenied covers both a failed permission gate and an unresolved
	// action key; neither executes any side effect.
	OutcomeDenied OutcomeStatus = "denied"
	// OutcomeInvalid covers missing required arguments and failed lookups
	// such as an unknown policy type.
	OutcomeInvalid OutcomeStatus = "invalid"
	// OutcomeNoPendingItem is reported by the approval workflow when there
	// is nothing to present.
	OutcomeNoPendingItem OutcomeStatus = "noPendingItem"
	// OutcomeFailed covers errors and panics raised by the underlying store
	// call or handler.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the short textual result of an action. Message is delivered
// verbatim into the agent's conversation context, so it must read as natural
// language rather than as an error dump.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
}

// OK builds a success outcome.
func OK(format string, args ...interface{}) *Outcome {
	return &Outcome{Status: OutcomeOK, Message: fmt.Sprintf(format, args...)}
}

// Denied builds a permission-denied outcome for the given action.
func Denied(action string) *Outcome {
	return &Outcome{
		Status:  OutcomeDenied,
		Message: fmt.Sprintf("you do not have permission to perform %v", action),
	}
}

// Invalid builds a validation-failure outcome.
func Invalid(format string, args ...interface{}) *Outcome {
	return &Outcome{Status: OutcomeInvalid, Message: fmt.Sprintf(format, args...)}
}

// NoPendingItem builds the empty-approval outcome.
func NoPendingItem(message string) *Outcome {
	return &Outcome{Status: OutcomeNoPendingItem, Message: message}
}

// Failed builds an execution-failure outcome carrying a human-readable
// message.
func Failed(format string, args ...interface{}) *Outcome {
	return &Outcome{Status: OutcomeFailed, Message: fmt.Sprintf(format, args...)}
}

// Outcomer is implemented by action outputs that carry their own outcome.
// The executor prefers it over synthesising a generic success message.
type Outcomer interface {
	ActionOutcome() *Outcome
}

// Success reports whether the outcome is a plain success.
func (o *Outcome) Success() bool {
	return o != nil && o.Status == OutcomeOK
}
