// Package policy implements per-action permission gating over actor roles.
// A Set maps action keys to the roles allowed to invoke them; the Evaluator
// answers the gate question on every invocation attempt, fail-closed for
// unknown actions. The actor travels in context so that every layer of the
// dispatch pipeline can re-evaluate the gate without plumbing extra
// arguments.
package policy
