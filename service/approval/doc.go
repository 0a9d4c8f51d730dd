// Package approval implements the human-in-the-loop review layer. An
// approval-mode action suspends its invocation, presents the matched pending
// transactions to a human and completes only once an approve or deny
// decision has been recorded – or the owning session ends, in which case the
// pending request is discarded without touching transaction state.
package approval
