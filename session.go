package agentgate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/internal/idgen"
	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/progress"
	execution2 "github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/approval"
)

// Session binds an actor to the dispatch core. The actor's role is fixed for
// the session's lifetime; every Execute call re-evaluates permissions against
// it.
type Session struct {
	id      string
	service *Service
	actor   *policy.Actor
	tracker *progress.Progress

	mux    sync.Mutex
	closed bool
}

// NewSession mints a session for the given actor.
func (s *Service) NewSession(actor *policy.Actor) *Session {
	return &Session{
		id:      idgen.New(),
		service: s,
		actor:   actor,
		tracker: &progress.Progress{},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Actor returns the actor behind the session.
func (s *Session) Actor() *policy.Actor {
	return s.actor
}

// Execute submits an action on behalf of the session's actor and blocks for
// its outcome. Whatever happens inside the pipeline, the caller receives a
// short natural-language outcome rather than an error dump; the error return
// covers infrastructure trouble only.
func (s *Session) Execute(ctx context.Context, action string, args map[string]interface{}) (*execution2.Outcome, error) {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return nil, fmt.Errorf("session %s is closed", s.id)
	}
	s.mux.Unlock()

	ctx = policy.WithActor(ctx, s.actor)
	invocation, err := s.service.dispatcher.Execute(ctx, s.id, action, args)
	if err != nil {
		return nil, err
	}
	outcome := invocation.Outcome
	delta := progress.Delta{Total: 1, Completed: 1}
	if invocation.GetState() == execution2.StateFailed {
		delta = progress.Delta{Total: 1, Failed: 1}
	}
	s.tracker.Update(delta)
	return outcome, nil
}

// Dispatch submits an action without waiting. Use the dispatcher to poll or
// wait for the returned invocation.
func (s *Session) Dispatch(ctx context.Context, action string, args map[string]interface{}) (*execution2.Invocation, error) {
	ctx = policy.WithActor(ctx, s.actor)
	return s.service.dispatcher.Dispatch(ctx, s.id, action, args)
}

// AvailableActions derives the action view for the session's role. Denied
// actions are listed as disabled; sensitive ones are left out entirely.
func (s *Session) AvailableActions() []*extension.Descriptor {
	return s.service.actions.View(s.service.evaluator, s.actor.Role)
}

// ForbiddenActions returns the sorted action keys the session may not
// invoke.
func (s *Session) ForbiddenActions() []string {
	return s.service.evaluator.Forbidden(s.actor.Role)
}

// Readable renders the session's restrictions as a sentence suitable for an
// agent's reasoning context.
func (s *Session) Readable() string {
	forbidden := s.ForbiddenActions()
	if len(forbidden) == 0 {
		return fmt.Sprintf("%s may perform every available action", s.actorName())
	}
	return fmt.Sprintf("%s is not allowed to perform: %s",
		s.actorName(), strings.Join(forbidden, ", "))
}

// Approvals exposes the approval service so a presentation layer can list
// and decide the session's review rounds.
func (s *Session) Approvals() approval.Service {
	return s.service.approvalService
}

// Progress returns a snapshot of the session's invocation counters.
func (s *Session) Progress() progress.Progress {
	return s.tracker.Snapshot()
}

// Close ends the session and withdraws its pending approval requests without
// touching any transaction.
func (s *Session) Close(ctx context.Context) error {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return nil
	}
	s.closed = true
	s.mux.Unlock()

	pending, err := s.service.approvalService.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, request := range pending {
		if request.SessionID != s.id {
			continue
		}
		if cancelErr := s.service.approvalService.Cancel(ctx, request.ID); cancelErr != nil {
			err = cancelErr
		}
	}
	return err
}

func (s *Session) actorName() string {
	if s.actor == nil || s.actor.Name == "" {
		return "this user"
	}
	return s.actor.Name
}
