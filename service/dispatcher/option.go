package dispatcher

import (
	execution "github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/executor"
	"github.com/agentgate/agentgate/service/messaging"
)

type Option func(*Service)

// WithInvocationDAO sets the invocation store implementation
func WithInvocationDAO(invocationDAO dao.Service[string, execution.Invocation]) Option {
	return func(s *Service) {
		s.invocationDAO = invocationDAO
	}
}

// WithMessageQueue sets the message queue implementation
func WithMessageQueue(queue messaging.Queue[execution.Invocation]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the invocation executor for the service
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
