package policy

import "context"

// Actor identifies who is behind the current session together with the
// free-form contextual properties that gate action availability.
type Actor struct {
	Name       string
	Role       Role
	Team       string
	Properties map[string]string
}

// Property returns a contextual property value or "".
func (a *Actor) Property(name string) string {
	if a == nil || a.Properties == nil {
		return ""
	}
	return a.Properties[name]
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithActor embeds the actor in ctx.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, a)
}

// ActorFromContext extracts (*Actor, ok-style nil on absence).
func ActorFromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Actor); ok {
		return v
	}
	return nil
}
