package approval

import (
	"context"
	"time"
)

// DecisionFunc decides what to do with a pending request.
// Return the transaction to resolve plus the verdict; return "" to leave the
// request pending.
type DecisionFunc func(r *Request) (transactionID string, approved bool)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request.  It returns stop() – call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					id, ok := fn(r)
					if id == "" {
						continue
					}
					_, _ = svc.Decide(ctx, r.ID, id, ok)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves the first transaction of every pending
// request.
func AutoApprove(ctx context.Context,
	svc Service,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(r *Request) (string, bool) {
		if len(r.TransactionIDs) == 0 {
			return "", false
		}
		return r.TransactionIDs[0], true
	}, interval)
}

// AutoReject automatically denies the first transaction of every pending
// request.
func AutoReject(ctx context.Context,
	svc Service,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(r *Request) (string, bool) {
		if len(r.TransactionIDs) == 0 {
			return "", false
		}
		return r.TransactionIDs[0], false
	}, interval)
}
