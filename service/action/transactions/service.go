package transactions

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/viant/x"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/progress"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/approval"
	"github.com/agentgate/agentgate/service/query"
	"github.com/agentgate/agentgate/service/store"
)

const name = "transactions"

// defaultFetchDelay mimics the latency of the upstream transaction feed so
// that in-flight reporting stays observable in interactive use.
const defaultFetchDelay = 3 * time.Second

// Service exposes transaction display, annotation and review actions.
type Service struct {
	store      store.Service
	flow       *approval.Flow
	fetchDelay time.Duration
}

// Option customises the transactions service.
type Option func(*Service)

// WithFetchDelay overrides the simulated feed latency; tests pass zero.
func WithFetchDelay(delay time.Duration) Option {
	return func(s *Service) { s.fetchDelay = delay }
}

// New creates a new transactions service
func New(aStore store.Service, flow *approval.Flow, options ...Option) *Service {
	ret := &Service{store: aStore, flow: flow, fetchDelay: defaultFetchDelay}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// ShowInput are the optional filters of the showTransactions action. When
// several are supplied only the strongest one applies: card digits, then
// policy id, then title fragment.
type ShowInput struct {
	CardLast4 string `json:"card4Digits,omitempty"`
	PolicyID  string `json:"policyId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// ShowOutput lists the matching transactions.
type ShowOutput struct {
	Transactions []*model.Transaction `json:"transactions"`
	Outcome      *execution.Outcome   `json:"outcome,omitempty"`
}

func (o *ShowOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// NoteInput are the arguments of the addNoteToTransaction action.
type NoteInput struct {
	TransactionID string `json:"transactionId"`
	Note          string `json:"note"`
}

// NoteOutput reports the annotation.
type NoteOutput struct {
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *NoteOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// ReviewInput are the arguments of the showAndApproveTransactions action.
// TransactionID may be a bare id or a sentence that embeds one.
type ReviewInput struct {
	TransactionID string `json:"transactionId"`
}

// ReviewOutput reports how the review round ended.
type ReviewOutput struct {
	Result  *approval.Result   `json:"result,omitempty"`
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *ReviewOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "showTransactions",
			Description: "Lists transactions, optionally narrowed by card digits, policy id or title fragment.",
			Mode:        types.ModeDirect,
			Parameters: []types.Parameter{
				{Name: "card4Digits", Description: "last four digits of a card number"},
				{Name: "policyId", Description: "expense policy id"},
				{Name: "title", Description: "case-insensitive title fragment"},
			},
			Input:  reflect.TypeOf(&ShowInput{}),
			Output: reflect.TypeOf(&ShowOutput{}),
		},
		{
			Name:        "addNoteToTransaction",
			Description: "Appends a note to the given transaction.",
			Mode:        types.ModeDirect,
			Parameters: []types.Parameter{
				{Name: "transactionId", Description: "transaction to annotate", Required: true},
				{Name: "note", Description: "note content", Required: true},
			},
			Input:  reflect.TypeOf(&NoteInput{}),
			Output: reflect.TypeOf(&NoteOutput{}),
		},
		{
			Name:        "showAndApproveTransactions",
			Description: "Presents the pending transactions referenced by the given id for an approve or deny decision.",
			Mode:        types.ModeApproval,
			Parameters: []types.Parameter{
				{Name: "transactionId", Description: "pending transaction reference", Required: true},
			},
			Input:  reflect.TypeOf(&ReviewInput{}),
			Output: reflect.TypeOf(&ReviewOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "showTransactions":
		return s.showTransactions, nil
	case "addNoteToTransaction":
		return s.addNoteToTransaction, nil
	case "showAndApproveTransactions":
		return s.showAndApproveTransactions, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// InitTypes registers the transaction related types with the registry.
func (s *Service) InitTypes(registry *extension.Types) {
	registry.Register(x.NewType(reflect.TypeOf(model.Transaction{})))
	registry.Register(x.NewType(reflect.TypeOf(model.Note{})))
}

func (s *Service) showTransactions(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ShowInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ShowOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	progress.Report(ctx, "fetching transactions")
	if s.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.fetchDelay):
		}
	}

	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return err
	}
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return err
	}
	output.Transactions = query.Filter(transactions, cards, query.Criteria{
		CardLast4: input.CardLast4,
		PolicyID:  input.PolicyID,
		Title:     input.Title,
	})
	output.Outcome = execution.OK("showing %v transaction(s)", len(output.Transactions))
	return nil
}

func (s *Service) addNoteToTransaction(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*NoteInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*NoteOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if err := s.store.AddNote(ctx, input.TransactionID, input.Note); err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			output.Outcome = execution.Invalid("transaction %v was not found", input.TransactionID)
			return nil
		}
		return err
	}
	output.Outcome = execution.OK("note added to transaction %v", input.TransactionID)
	return nil
}

func (s *Service) showAndApproveTransactions(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ReviewInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ReviewOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	invocation := execution.ContextValue[*execution.Invocation](ctx)
	sessionID, invocationID := "", ""
	if invocation != nil {
		sessionID, invocationID = invocation.SessionID, invocation.ID
	}

	result, err := s.flow.Run(ctx, sessionID, invocationID, "showAndApproveTransactions", input.TransactionID)
	if err != nil {
		return err
	}
	output.Result = result
	output.Outcome = result.Outcome
	if invocation != nil && result.Approved != nil {
		invocation.Approved = result.Approved
	}
	return nil
}
