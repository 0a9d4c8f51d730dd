// Package agentgate provides a permission-gated command dispatch core for
// agent-driven applications.
//
// An external agent proposes actions by flat key; the core resolves the key
// against the registered action services, gates it against the caller's
// role, validates and converts the arguments and executes the handler.
// Actions that need a human in the loop suspend until a decision is
// recorded.  Every attempt ends in a short natural-language outcome that can
// be fed straight back into the agent's conversation context.
//
// End-users typically interact with the core via the high-level Service
// façade exposed by the root package:
//
//	srv := agentgate.New()
//	_ = srv.Start(ctx)
//	session := srv.NewSession(&policy.Actor{Name: "ada", Role: policy.RoleDepartmentAdmin})
//	outcome, _ := session.Execute(ctx, "showTransactions", nil)
//
// For more details see the individual sub-packages.
package agentgate
