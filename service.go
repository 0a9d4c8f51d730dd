package agentgate

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/x"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
	execution2 "github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/action/cards"
	"github.com/agentgate/agentgate/service/action/documents"
	"github.com/agentgate/agentgate/service/action/transactions"
	"github.com/agentgate/agentgate/service/approval"
	amemory "github.com/agentgate/agentgate/service/approval/memory"
	"github.com/agentgate/agentgate/service/dao"
	dstore "github.com/agentgate/agentgate/service/dao/store"
	"github.com/agentgate/agentgate/service/dispatcher"
	"github.com/agentgate/agentgate/service/event"
	texecutor "github.com/agentgate/agentgate/service/executor"
	"github.com/agentgate/agentgate/service/messaging"
	mmemory "github.com/agentgate/agentgate/service/messaging/memory"
	"github.com/agentgate/agentgate/service/meta"
	"github.com/agentgate/agentgate/service/store"
	smemory "github.com/agentgate/agentgate/service/store/memory"
)

// Service is the dispatch core façade: it owns the store, the permission
// evaluator, the action registry and the dispatch pipeline, and mints
// per-caller sessions.
type Service struct {
	store            store.Service
	permissions      policy.Set
	evaluator        *policy.Evaluator
	approvalService  approval.Service
	approvalRenderer approval.Renderer
	approvalFlow     *approval.Flow
	eventService     *event.Service
	metaService      *meta.Service
	actions          *extension.Actions

	dispatcher *dispatcher.Service
	executor   texecutor.Service

	extensionTypes    []*x.Type
	extensionServices []types.Service
	executorOptions   []texecutor.Option
	queue             messaging.Queue[execution2.Invocation]
	invocationDAO     dao.Service[string, execution2.Invocation]
	metaBaseURL       string
	metaFsOptions     []storage.Option
	dispatcherWorkers int
	pinPrompt         cards.PinPrompt
	fetchDelay        *time.Duration
}

func invocationKey(i *execution2.Invocation) string { return i.ID }

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	s.actions = extension.NewActions(s.extensionTypes...)
	s.executor = texecutor.NewService(s.actions, s.evaluator, s.executorOptions...)
	var err error
	s.dispatcher, err = dispatcher.New(
		dispatcher.WithExecutor(s.executor),
		dispatcher.WithMessageQueue(s.queue),
		dispatcher.WithWorkers(s.dispatcherWorkers),
		dispatcher.WithInvocationDAO(s.invocationDAO))
	if err != nil {
		return err
	}

	s.approvalFlow = approval.NewFlow(s.store, s.approvalService, s.approvalRenderer)

	var cardOptions []cards.Option
	if s.pinPrompt != nil {
		cardOptions = append(cardOptions, cards.WithPinPrompt(s.pinPrompt))
	}
	s.actions.Register(cards.New(s.store, cardOptions...))

	var transactionOptions []transactions.Option
	if s.fetchDelay != nil {
		transactionOptions = append(transactionOptions, transactions.WithFetchDelay(*s.fetchDelay))
	}
	s.actions.Register(transactions.New(s.store, s.approvalFlow, transactionOptions...))
	s.actions.Register(documents.New())
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.store == nil {
		s.store = smemory.New()
	}
	if s.permissions == nil {
		s.permissions = policy.DefaultSet()
	}
	if s.evaluator == nil {
		evaluator, err := policy.NewEvaluator(s.permissions)
		if err != nil {
			return err
		}
		s.evaluator = evaluator
	}
	if s.approvalService == nil {
		s.approvalService = amemory.New()
	}
	if s.eventService == nil {
		s.eventService, _ = event.New()
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[execution2.Invocation](mmemory.DefaultConfig())
	}
	if s.invocationDAO == nil {
		s.invocationDAO = dstore.NewMemoryStore[string, execution2.Invocation](invocationKey)
	}
	if s.dispatcherWorkers <= 0 {
		s.dispatcherWorkers = 1
	}
	return nil
}

// Start launches the dispatch workers. The supplied context bounds their
// lifetime; cancelling it drains the pipeline.
func (s *Service) Start(ctx context.Context) error {
	ctx = execution2.WithEvents(ctx, s.eventService)
	return s.dispatcher.Start(ctx)
}

// Shutdown stops the dispatch workers.
func (s *Service) Shutdown() {
	s.dispatcher.Shutdown()
}

// RegisterExtensionTypes adds Go types to the action type registry.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices adds action services beyond the built-in ones.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Actions exposes the action registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Evaluator exposes the permission evaluator.
func (s *Service) Evaluator() *policy.Evaluator {
	return s.evaluator
}

// Store exposes the backing store.
func (s *Service) Store() store.Service {
	return s.store
}

// Approvals exposes the approval service so that a hosting application can
// surface pending requests and record decisions.
func (s *Service) Approvals() approval.Service {
	return s.approvalService
}

// Events exposes the event service.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// Dispatcher exposes the dispatch pipeline.
func (s *Service) Dispatcher() *dispatcher.Service {
	return s.dispatcher
}

// Meta exposes the declarative asset loader.
func (s *Service) Meta() *meta.Service {
	return s.metaService
}

// New creates the dispatch core with the supplied options.
func New(options ...Option) *Service {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		panic(fmt.Sprintf("agentgate: invalid configuration: %v", err))
	}
	return ret
}

// NewFromConfig builds the core from a decoded configuration, then applies
// options on top.
func NewFromConfig(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{}
	if config.Dispatcher.WorkerCount > 0 {
		ret.dispatcherWorkers = config.Dispatcher.WorkerCount
	}
	if config.Permissions != nil {
		ret.permissions = policy.FromConfig(config.Permissions)
	}
	for _, option := range options {
		option(ret)
	}
	if config.SeedURL != "" && ret.store == nil {
		if ret.metaService == nil {
			ret.metaService = meta.New(afs.New(), ret.metaBaseURL, ret.metaFsOptions...)
		}
		var seed store.Seed
		if err := ret.metaService.Load(ctx, config.SeedURL, &seed); err != nil {
			return nil, err
		}
		seeded, err := smemory.NewWithSeed(ctx, &seed)
		if err != nil {
			return nil, err
		}
		ret.store = seeded
	}
	if err := ret.init(nil); err != nil {
		return nil, err
	}
	return ret, nil
}
