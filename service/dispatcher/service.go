package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/progress"
	execution "github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/executor"
	"github.com/agentgate/agentgate/service/messaging"
	"github.com/agentgate/agentgate/tracing"
)

// Config represents dispatcher service configuration
type Config struct {
	// WorkerCount is the number of workers processing invocations
	WorkerCount int

	// PollInterval is how often Wait re-checks the invocation state
	PollInterval time.Duration
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:  1,
		PollInterval: 10 * time.Millisecond,
	}
}

// Service handles invocation dispatch
type Service struct {
	config        Config
	invocationDAO dao.Service[string, execution.Invocation]

	queue    messaging.Queue[execution.Invocation]
	executor executor.Service

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new dispatcher service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.invocationDAO == nil {
		return nil, fmt.Errorf("invocationDAO service is required")
	}
	return s, nil
}

// Start begins the invocation dispatch service
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// Shutdown stops the workers and waits for them to drain.
func (s *Service) Shutdown() {
	for _, w := range s.workers {
		w.cancelFn()
	}
	s.workerWg.Wait()
}

// run processes messages from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		// Block until we either get a message or the context is cancelled.
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if msg == nil {
			continue
		}

		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// Dispatch persists and enqueues an invocation without waiting for it.
func (s *Service) Dispatch(ctx context.Context, sessionID, action string, args map[string]interface{}) (anInvocation *execution.Invocation, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("dispatcher.Dispatch %s", action), "PRODUCER")
	defer func() { tracing.EndSpan(span, err) }()

	anInvocation = execution.NewInvocation(sessionID, action, args)
	anInvocation.Actor = policy.ActorFromContext(ctx)
	span.WithAttributes(map[string]string{"invocation.id": anInvocation.ID, "action.key": action})

	if err = s.invocationDAO.Save(ctx, anInvocation); err != nil {
		return nil, fmt.Errorf("failed to save invocation: %w", err)
	}
	anInvocation.State = execution.StateScheduled
	if err = s.queue.Publish(ctx, anInvocation); err != nil {
		return nil, fmt.Errorf("failed to publish invocation: %w", err)
	}
	progress.UpdateCtx(ctx, progress.Delta{Total: 1, Pending: 1})
	return anInvocation, nil
}

// Execute dispatches the invocation and blocks until it completes or ctx
// expires.
func (s *Service) Execute(ctx context.Context, sessionID, action string, args map[string]interface{}) (*execution.Invocation, error) {
	anInvocation, err := s.Dispatch(ctx, sessionID, action, args)
	if err != nil {
		return nil, err
	}
	return s.Wait(ctx, anInvocation.ID)
}

// Wait blocks until the invocation reaches a terminal state.
func (s *Service) Wait(ctx context.Context, invocationID string) (*execution.Invocation, error) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()
	for {
		anInvocation, err := s.invocationDAO.Load(ctx, invocationID)
		if err != nil {
			return nil, err
		}
		if anInvocation != nil && anInvocation.GetState().Terminal() {
			return anInvocation, nil
		}
		select {
		case <-ctx.Done():
			return anInvocation, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetInvocation retrieves an invocation by ID
func (s *Service) GetInvocation(ctx context.Context, invocationID string) (*execution.Invocation, error) {
	return s.invocationDAO.Load(ctx, invocationID)
}

// processMessage handles a single invocation message
func (s *Service) processMessage(ctx context.Context, message messaging.Message[execution.Invocation]) error {
	anInvocation := message.T()

	// Restore the caller identity recorded at submission so the permission
	// gate applies on this goroutine too.
	execCtx := ctx
	if anInvocation.Actor != nil {
		execCtx = policy.WithActor(execCtx, anInvocation.Actor)
	}
	progress.UpdateCtx(execCtx, progress.Delta{Pending: -1, Running: 1})

	err := s.executor.Execute(execCtx, anInvocation)
	if err != nil {
		progress.UpdateCtx(execCtx, progress.Delta{Running: -1, Failed: 1})
		if saveErr := s.invocationDAO.Save(ctx, anInvocation); saveErr != nil {
			log.Printf("failed to save invocation %s: %v", anInvocation.ID, saveErr)
		}
		return message.Nack(err)
	}

	delta := progress.Delta{Running: -1, Completed: 1}
	if anInvocation.GetState() == execution.StateFailed {
		delta = progress.Delta{Running: -1, Failed: 1}
	}
	progress.UpdateCtx(execCtx, delta)

	if err = s.invocationDAO.Save(ctx, anInvocation); err != nil {
		return message.Nack(err)
	}
	return message.Ack()
}
