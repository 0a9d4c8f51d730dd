package agentgate

import (
	"time"

	"github.com/viant/afs/storage"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
	execution2 "github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/action/cards"
	"github.com/agentgate/agentgate/service/approval"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/event"
	"github.com/agentgate/agentgate/service/executor"
	"github.com/agentgate/agentgate/service/messaging"
	"github.com/agentgate/agentgate/service/meta"
	"github.com/agentgate/agentgate/service/store"
	"github.com/agentgate/agentgate/tracing"
)

// Option customises the Service façade.
type Option func(s *Service)

// WithStore sets the backing card/transaction store
func WithStore(svc store.Service) Option {
	return func(s *Service) { s.store = svc }
}

// WithPermissionSet replaces the built-in permission table
func WithPermissionSet(set policy.Set) Option {
	return func(s *Service) { s.permissions = set }
}

// WithApprovalService sets the approvalService service
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithApprovalRenderer sets the renderer that surfaces review rounds
func WithApprovalRenderer(renderer approval.Renderer) Option {
	return func(s *Service) { s.approvalRenderer = renderer }
}

// WithPinPrompt installs the out-of-band pin prompt used by setCardPin
func WithPinPrompt(prompt cards.PinPrompt) Option {
	return func(s *Service) { s.pinPrompt = prompt }
}

// WithFetchDelay overrides the simulated transaction feed latency
func WithFetchDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.fetchDelay = &delay
	}
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithExtensionServices sets the extension services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithQueue sets the message queue
func WithQueue(queue messaging.Queue[execution2.Invocation]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithInvocationDAO sets the invocation DAO
func WithInvocationDAO(dao dao.Service[string, execution2.Invocation]) Option {
	return func(s *Service) {
		s.invocationDAO = dao
	}
}

// WithDispatcherWorkers sets the dispatcher workers
func WithDispatcherWorkers(count int) Option {
	return func(s *Service) {
		s.dispatcherWorkers = count
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. installing a listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
