package execution

import (
	"sync"
	"time"

	"github.com/agentgate/agentgate/internal/clock"
	"github.com/agentgate/agentgate/internal/idgen"
	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/service/event"
)

// Invocation represents a single agent-issued command travelling through the
// dispatch pipeline.
type Invocation struct {
	ID          string                 `json:"id"`
	SessionID   string                 `json:"sessionId"`
	Action      string                 `json:"action"`
	Args        map[string]interface{} `json:"args,omitempty"`
	State       State                  `json:"state"`
	Input       interface{}            `json:"input,omitempty"`
	Output      interface{}            `json:"output,omitempty"`
	Outcome     *Outcome               `json:"outcome,omitempty"`
	Error       string                 `json:"error,omitempty"`
	ScheduledAt time.Time              `json:"scheduledAt"`
	StartedAt   *time.Time             `json:"startedAt,omitempty"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
	// Approved reflects the human decision for approval-mode actions, nil
	// while undecided.
	Approved *bool `json:"approved,omitempty"`

	// Actor carries the caller's identity so that the permission gate can be
	// enforced by the worker that picks the invocation up, not just by the
	// goroutine that submitted it.
	Actor *policy.Actor `json:"actor,omitempty"`

	mux sync.RWMutex
}

// NewInvocation creates an invocation for the given session and action.
func NewInvocation(sessionID, action string, args map[string]interface{}) *Invocation {
	return &Invocation{
		ID:          idgen.New(),
		SessionID:   sessionID,
		Action:      action,
		Args:        args,
		State:       StatePending,
		ScheduledAt: clock.Now(),
	}
}

// Start marks the invocation as started
func (e *Invocation) Start() {
	e.mux.Lock()
	defer e.mux.Unlock()
	now := clock.Now()
	e.StartedAt = &now
	e.State = StateRunning
}

// Complete records the outcome and marks the invocation completed or failed
// depending on the outcome status.
func (e *Invocation) Complete(outcome *Outcome) {
	e.mux.Lock()
	defer e.mux.Unlock()
	now := clock.Now()
	e.CompletedAt = &now
	e.Outcome = outcome
	if outcome != nil && outcome.Status == OutcomeFailed {
		e.State = StateFailed
		e.Error = outcome.Message
		return
	}
	e.State = StateCompleted
}

// Suspend transitions the invocation into the wait-for-approval state.
func (e *Invocation) Suspend() {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.State = StateWaitForApproval
}

// Cancel marks the invocation cancelled (session ended before a decision).
func (e *Invocation) Cancel() {
	e.mux.Lock()
	defer e.mux.Unlock()
	now := clock.Now()
	e.CompletedAt = &now
	e.State = StateCancelled
}

// EventContext builds the event envelope context for this invocation.
func (e *Invocation) EventContext(eventType string) *event.Context {
	e.mux.RLock()
	defer e.mux.RUnlock()
	ret := &event.Context{
		EventType:    eventType,
		SessionID:    e.SessionID,
		InvocationID: e.ID,
		Action:       e.Action,
	}
	if e.StartedAt != nil && e.CompletedAt != nil {
		ret.TimeTakenMs = int(e.CompletedAt.Sub(*e.StartedAt).Milliseconds())
	}
	return ret
}

// GetState returns the current state under the read lock.
func (e *Invocation) GetState() State {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.State
}
