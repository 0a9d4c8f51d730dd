// Package extension provides the run-time registry of action services. Each
// registered service contributes a set of flat action keys; the registry
// resolves a key to its executable and derives per-caller action views.
//
// The registry is normally populated through the public APIs under the root
// agentgate package, therefore most applications do not need to import this
// package directly.
package extension
