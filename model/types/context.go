package types

import "context"

type invocationContextKey string

// InvocationContextKey carries free-form key/value pairs describing the
// current invocation (session id, action key) down to action handlers.
var InvocationContextKey = invocationContextKey("invocation-context")

// EnsureInvocationContext ensure
func EnsureInvocationContext(ctx context.Context, pairs ...string) context.Context {
	v := ctx.Value(InvocationContextKey)
	if v == nil {
		ctx = context.WithValue(ctx, InvocationContextKey, map[string]any{})
	}
	values := ctx.Value(InvocationContextKey).(map[string]any)
	for i := 0; i < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return ctx
}
