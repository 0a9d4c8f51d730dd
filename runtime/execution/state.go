package execution

// State represents the current State of an invocation
type State string

const (
	StatePending   State = "pending"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
	// StateWaitForApproval indicates the invocation is suspended until a
	// human records an approve or deny decision. Used by approval-mode
	// actions only.
	StateWaitForApproval State = "waitForApproval"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
	StateCancelled       State = "cancelled"
)

func (s State) IsWaitForApproval() bool {
	return s == StateWaitForApproval
}

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}
