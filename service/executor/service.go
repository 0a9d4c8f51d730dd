package executor

// The executor invokes registered extension actions, converts inputs/outputs and, after the
// user-supplied method runs, calls an optional listener that can observe the data that flew
// through the invocation.

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/viant/structology/conv"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/event"
	"github.com/agentgate/agentgate/tracing"
)

// Listener is invoked once an action completes (regardless of whether it succeeded or not).
// Implementations can log, collect metrics or perform any other side-effects they require.
//
// For convenience the listener is defined as a function type rather than an interface; users can
// therefore pass a plain function literal when customising the executor.
type Listener func(invocation *execution.Invocation, input, output interface{})

// StdoutListener serialises the invocation, input and output into JSON and prints them to
// standard output. Errors from json.Marshal are ignored on purpose – they indicate
// non-serialisable values and the caller would not have had access to the data either way.
func StdoutListener(invocation *execution.Invocation, input, output interface{}) {
	if invocation == nil {
		return
	}
	tt, _ := json.Marshal(invocation)
	fmt.Println(string(tt))
	if input != nil {
		in, _ := json.Marshal(input)
		fmt.Println(string(in))
	}
	if output != nil {
		out, _ := json.Marshal(output)
		fmt.Println(string(out))
	}
}

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener overrides the listener invoked after every executed invocation. Passing nil
// disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Service represents an invocation executor.
type Service interface {
	Execute(ctx context.Context, invocation *execution.Invocation) error
}

// service is the concrete implementation of Service.
type service struct {
	actions   *extension.Actions
	evaluator *policy.Evaluator
	converter *conv.Converter
	listener  Listener
}

// Execute runs a single invocation end to end and records its outcome. The
// permission gate sits in front of every other step: a denied action never
// reaches argument validation, let alone the store.
func (s *service) Execute(ctx context.Context, invocation *execution.Invocation) error {
	ctx, span := tracing.StartSpan(ctx, "executor.execute", "INTERNAL")
	span.WithAttributes(map[string]string{
		"invocation.id": invocation.ID,
		"action.key":    invocation.Action,
	})

	invocation.Start()
	ctx = execution.WithInvocation(ctx, invocation)
	outcome := s.run(ctx, invocation)
	invocation.Complete(outcome)
	tracing.EndSpan(span, nil)

	// Publish invocation event if an event service is attached to the context.
	if value := ctx.Value(execution.EventKey); value != nil {
		eventService := value.(*event.Service)
		publisher, err := event.PublisherOf[*execution.Invocation](eventService)
		if err == nil {
			eCtx := invocation.EventContext("executed")
			anEvent := event.NewEvent[*execution.Invocation](eCtx, invocation)
			if err = publisher.Publish(ctx, anEvent); err != nil {
				log.Printf("failed to publish invocation event: %v", err)
			}
		}
	}
	return nil
}

func (s *service) run(ctx context.Context, invocation *execution.Invocation) *execution.Outcome {
	action, err := s.actions.Resolve(invocation.Action)
	if err != nil {
		// An unknown action key reads the same as a forbidden one, so a
		// probing caller learns nothing about what exists.
		return execution.Denied(invocation.Action)
	}

	actor := policy.ActorFromContext(ctx)
	if actor == nil || !s.evaluator.Allowed(invocation.Action, actor.Role) {
		return execution.Denied(invocation.Action)
	}

	signature := action.Signature
	args := invocation.Args
	if args == nil {
		args = map[string]interface{}{}
	}
	if outcome := validate(signature, args); outcome != nil {
		return outcome
	}

	input, err := s.typedValue(signature.Input, args)
	if err != nil {
		return execution.Invalid("invalid arguments for %v: %v", invocation.Action, err)
	}
	output, err := s.typedValue(signature.Output, map[string]interface{}{})
	if err != nil {
		return execution.Failed("failed to prepare output for %v: %v", invocation.Action, err)
	}
	invocation.Input = input

	method, err := action.Service.Method(signature.Name)
	if err != nil {
		return execution.Failed("failed to find method %v: %v", signature.Name, err)
	}

	if signature.Mode == types.ModeApproval {
		invocation.Suspend()
	}

	if err = s.invoke(ctx, method, input, output); err != nil {
		return execution.Failed("%v", err)
	}
	invocation.Output = output

	if s.listener != nil {
		s.listener(invocation, input, output)
	}

	if outcomer, ok := output.(execution.Outcomer); ok {
		if outcome := outcomer.ActionOutcome(); outcome != nil {
			return outcome
		}
	}
	return execution.OK("%v completed", invocation.Action)
}

// invoke runs the handler and converts a panic into a plain error so one
// faulty action cannot take the dispatch loop down.
func (s *service) invoke(ctx context.Context, method types.Executable, input, output interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return method(ctx, input, output)
}

// validate checks that every required parameter is present and non-empty.
func validate(signature *types.Signature, args map[string]interface{}) *execution.Outcome {
	for _, name := range signature.RequiredParameters() {
		value, ok := args[name]
		if !ok || value == nil {
			return execution.Invalid("required parameter %v was not provided", name)
		}
		if text, isText := value.(string); isText && text == "" {
			return execution.Invalid("required parameter %v was not provided", name)
		}
	}
	return nil
}

// typedValue converts a raw value into a freshly allocated instance of aType.
func (s *service) typedValue(aType reflect.Type, value interface{}) (interface{}, error) {
	if aType == nil {
		var anon map[string]interface{}
		return &anon, nil
	}
	if aType.Kind() == reflect.Ptr {
		aType = aType.Elem()
	}
	instance := reflect.New(aType).Interface()
	if err := s.converter.Convert(value, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// NewService creates a new executor service instance.
func NewService(actions *extension.Actions, evaluator *policy.Evaluator, opts ...Option) Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &service{
		actions:   actions,
		evaluator: evaluator,
		converter: conv.NewConverter(options),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}
