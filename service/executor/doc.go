// Package executor bridges invocations enqueued by the dispatcher with the
// backing action implementations.  It resolves the action key, gates it
// against the caller's role, validates and converts the arguments and only
// then hands control to the handler.  Every way an invocation can end is
// collapsed into a short natural-language outcome.
package executor
