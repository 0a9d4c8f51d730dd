package execution

import (
	"context"
	"reflect"

	"github.com/agentgate/agentgate/service/event"
)

var InvocationKey = KeyOf[*Invocation]()
var EventKey = KeyOf[*event.Service]()

// WithInvocation attaches the in-flight invocation to the context so that
// handlers and observers can reach it without extra plumbing.
func WithInvocation(ctx context.Context, invocation *Invocation) context.Context {
	return context.WithValue(ctx, InvocationKey, invocation)
}

// WithEvents attaches the event service to the context.
func WithEvents(ctx context.Context, service *event.Service) context.Context {
	if service == nil {
		return ctx
	}
	return context.WithValue(ctx, EventKey, service)
}

// ContextValue returns the value of the provided type from the context
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		return value.(T)
	}
	var t T
	return t
}

// KeyOf returns the reflect.Type of the provided type
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}
