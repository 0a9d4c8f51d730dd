package approval

import (
	"context"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/agentgate/agentgate/model"
)

// Item is one transaction presented for review together with the status
// change each verdict would apply, rendered as a unified diff.
type Item struct {
	Transaction *model.Transaction `json:"transaction"`
	ApproveDiff string             `json:"approveDiff,omitempty"`
	DenyDiff    string             `json:"denyDiff,omitempty"`
}

// Presentation is handed to the renderer once the matching transactions have
// been collected. OnApprove/OnDeny resolve the round for one of the presented
// transactions; they are safe to call from another goroutine.
type Presentation struct {
	RequestID string
	Items     []*Item
	OnApprove func(transactionID string) error
	OnDeny    func(transactionID string) error
}

// Renderer surfaces a presentation to the reviewer.
type Renderer interface {
	Present(ctx context.Context, p *Presentation) error
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, p *Presentation) error

func (f RendererFunc) Present(ctx context.Context, p *Presentation) error { return f(ctx, p) }

// NewItem builds a presentation item for a pending transaction.
func NewItem(t *model.Transaction) *Item {
	approve, _ := statusDiff(t, model.TransactionApproved)
	deny, _ := statusDiff(t, model.TransactionDenied)
	return &Item{Transaction: t, ApproveDiff: approve, DenyDiff: deny}
}

// statusDiff renders the record before and after the verdict as a unified
// diff so the reviewer sees exactly what a decision changes.
func statusDiff(t *model.Transaction, next model.TransactionStatus) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(renderTransaction(t, t.Status)),
		B:        difflib.SplitLines(renderTransaction(t, next)),
		FromFile: fmt.Sprintf("transaction/%s (current)", t.ID),
		ToFile:   fmt.Sprintf("transaction/%s (%s)", t.ID, next),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}

func renderTransaction(t *model.Transaction, status model.TransactionStatus) string {
	return fmt.Sprintf("id: %s\ntitle: %s\namount: %.2f\nstatus: %s\n",
		t.ID, t.Title, t.Amount, status)
}

// NewWriterRenderer returns a renderer that prints each pending item to w.
// It never decides; the decision arrives out of band via the approval
// service.
func NewWriterRenderer(w io.Writer) Renderer {
	return RendererFunc(func(_ context.Context, p *Presentation) error {
		_, _ = fmt.Fprintf(w, "approval request %s: %d transaction(s) pending\n", p.RequestID, len(p.Items))
		for _, item := range p.Items {
			_, _ = fmt.Fprintf(w, "%s", item.ApproveDiff)
		}
		return nil
	})
}
