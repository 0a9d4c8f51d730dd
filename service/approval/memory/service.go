package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	approval "github.com/agentgate/agentgate/service/approval"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/dao/store"
	"github.com/agentgate/agentgate/service/messaging"
	qmem "github.com/agentgate/agentgate/service/messaging/memory"
)

// ErrAlreadyDecided is returned when a second decision is recorded for the
// same request.
var ErrAlreadyDecided = errors.New("already decided")

// ErrCancelled is returned by WaitForDecision when the request was withdrawn
// before a decision arrived.
var ErrCancelled = errors.New("request cancelled")

type service struct {
	// DAO-backed stores
	reqDAO dao.Service[string, approval.Request]
	decDAO dao.Service[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]

	mux     sync.Mutex
	waiters map[string][]chan *approval.Decision
}

// key selectors – grab ID field
func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

// New creates an in-memory approval service.
func New() approval.Service {
	return &service{
		reqDAO:  store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO:  store.NewMemoryStore[string, approval.Decision](decKey),
		events:  qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
		waiters: map[string][]chan *approval.Decision{},
	}
}

/* ---------------- DAO-style operations -------------------------------- */

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return errors.New("invalid request")
	}
	// Ensure the request has a globally unique identifier.  Fall back to the
	// suspended invocation id which is unique within a run — this protects
	// against silent drops caused by empty ids.
	if r.ID == "" {
		switch {
		case r.InvocationID != "":
			r.ID = r.InvocationID
		default:
			r.ID = fmt.Sprintf("anon-%d", time.Now().UnixNano())
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	// Idempotent save – overwrite any previous copy to handle re-submissions
	// gracefully.
	_ = s.reqDAO.Save(ctx, r)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.reqDAO.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, r := range all {
		if d, _ := s.decDAO.Load(ctx, r.ID); d == nil {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id, transactionID string, approved bool) (*approval.Decision, error) {
	if id == "" {
		return nil, errors.New("empty id")
	}
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return nil, fmt.Errorf("request %s not found", id)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return nil, ErrAlreadyDecided
	}
	if !contains(request.TransactionIDs, transactionID) {
		return nil, fmt.Errorf("transaction %s is not part of request %s", transactionID, id)
	}

	d := &approval.Decision{
		ID:            id,
		TransactionID: transactionID,
		Approved:      approved,
		DecidedAt:     time.Now(),
	}
	_ = s.decDAO.Save(ctx, d)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	s.notify(id, d)
	return d, nil
}

func (s *service) Cancel(ctx context.Context, id string) error {
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return fmt.Errorf("request %s not found", id)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return ErrAlreadyDecided
	}
	_ = s.reqDAO.Delete(ctx, id)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCancelled, Data: request})
	s.notify(id, nil)
	return nil
}

// WaitForDecision blocks until the request is decided, cancelled or ctx
// expires.
func (s *service) WaitForDecision(ctx context.Context, id string) (*approval.Decision, error) {
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return d, nil
	}
	ch := make(chan *approval.Decision, 1)
	s.mux.Lock()
	s.waiters[id] = append(s.waiters[id], ch)
	s.mux.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case d := <-ch:
		if d == nil {
			return nil, ErrCancelled
		}
		return d, nil
	}
}

// notify delivers the decision (nil on cancellation) to every waiter.
func (s *service) notify(id string, d *approval.Decision) {
	s.mux.Lock()
	chans := s.waiters[id]
	delete(s.waiters, id)
	s.mux.Unlock()
	for _, ch := range chans {
		ch <- d
	}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

/* ---------------- Broker-style ---------------------------------------- */

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
