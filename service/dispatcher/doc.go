// Package dispatcher moves invocations from submission to completion.  Each
// submitted invocation is persisted, published to an in-memory queue and
// picked up by a worker that drives it through the executor.  Callers either
// fire-and-forget via Dispatch or block for the outcome via Execute.
package dispatcher
