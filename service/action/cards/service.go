package cards

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/viant/x"

	"github.com/agentgate/agentgate/extension"
	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/runtime/execution"
	"github.com/agentgate/agentgate/service/store"
)

const name = "cards"

// PinPrompt asks the card holder for a pin out of band. It is used when the
// caller did not supply one; the returned value is treated as plaintext and
// hashed by the store.
type PinPrompt func(ctx context.Context) (string, error)

// Service exposes card management actions.
type Service struct {
	store     store.Service
	pinPrompt PinPrompt
}

// Option customises the cards service.
type Option func(*Service)

// WithPinPrompt installs an out-of-band pin prompt.
func WithPinPrompt(prompt PinPrompt) Option {
	return func(s *Service) { s.pinPrompt = prompt }
}

// New creates a new cards service
func New(aStore store.Service, options ...Option) *Service {
	ret := &Service{store: aStore}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// AddInput are the arguments of the addNewCard action.
type AddInput struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Pin   string `json:"pin"`
	Team  string `json:"team,omitempty"`
}

// AddOutput carries the created card.
type AddOutput struct {
	Card    *model.Card        `json:"card,omitempty"`
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *AddOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// SetPinInput are the arguments of the setCardPin action.
type SetPinInput struct {
	CardLast4 string `json:"card4Digits"`
	Pin       string `json:"pin,omitempty"`
}

// SetPinOutput reports the pin update.
type SetPinOutput struct {
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *SetPinOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// AssignPolicyInput are the arguments of the assignPolicyToCard action.
type AssignPolicyInput struct {
	CardLast4 string `json:"card4Digits"`
	Policy    string `json:"policy"`
}

// AssignPolicyOutput reports the policy assignment.
type AssignPolicyOutput struct {
	Outcome *execution.Outcome `json:"outcome,omitempty"`
}

func (o *AssignPolicyOutput) ActionOutcome() *execution.Outcome { return o.Outcome }

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "addNewCard",
			Description: "Issues a new card of the given type, protected by the supplied pin.",
			Mode:        types.ModeDirect,
			Parameters: []types.Parameter{
				{Name: "type", Description: "card network, visa or mastercard", Required: true},
				{Name: "color", Description: "presentation color, defaults per card type"},
				{Name: "pin", Description: "plaintext pin to protect the card with", Required: true},
			},
			Input:  reflect.TypeOf(&AddInput{}),
			Output: reflect.TypeOf(&AddOutput{}),
		},
		{
			Name:        "setCardPin",
			Description: "Replaces the pin of the card ending in the given four digits.",
			Mode:        types.ModeDirect,
			Parameters: []types.Parameter{
				{Name: "card4Digits", Description: "last four digits of the card number", Required: true},
				{Name: "pin", Description: "new pin; prompted out of band when omitted"},
			},
			Input:  reflect.TypeOf(&SetPinInput{}),
			Output: reflect.TypeOf(&SetPinOutput{}),
		},
		{
			Name:        "assignPolicyToCard",
			Description: "Assigns an expense policy to the card ending in the given four digits.",
			Mode:        types.ModeDirect,
			Parameters: []types.Parameter{
				{Name: "card4Digits", Description: "last four digits of the card number", Required: true},
				{Name: "policy", Description: "expense policy id or type to assign", Required: true},
			},
			Input:  reflect.TypeOf(&AssignPolicyInput{}),
			Output: reflect.TypeOf(&AssignPolicyOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "addNewCard":
		return s.addNewCard, nil
	case "setCardPin":
		return s.setCardPin, nil
	case "assignPolicyToCard":
		return s.assignPolicyToCard, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// InitTypes registers the card related types with the registry.
func (s *Service) InitTypes(registry *extension.Types) {
	registry.Register(x.NewType(reflect.TypeOf(model.Card{})))
	registry.Register(x.NewType(reflect.TypeOf(model.NewCardRequest{})))
}

func (s *Service) addNewCard(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AddInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*AddOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	cardType := model.CardType(strings.ToLower(input.Type))
	if _, known := model.CardColors[cardType]; !known {
		output.Outcome = execution.Invalid("unsupported card type %v", input.Type)
		return nil
	}
	card, err := s.store.CreateCard(ctx, &model.NewCardRequest{
		Type:  cardType,
		Color: input.Color,
		PIN:   input.Pin,
		Team:  input.Team,
	})
	if err != nil {
		return err
	}
	output.Card = card
	output.Outcome = execution.OK("added a new %v card ending in %v", card.Type, card.Last4())
	return nil
}

func (s *Service) setCardPin(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SetPinInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SetPinOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	card, outcome, err := s.cardByLast4(ctx, input.CardLast4)
	if err != nil {
		return err
	}
	if outcome != nil {
		output.Outcome = outcome
		return nil
	}
	pin := input.Pin
	if pin == "" {
		if s.pinPrompt == nil {
			output.Outcome = execution.Invalid("a pin is required to update card %v", input.CardLast4)
			return nil
		}
		if pin, err = s.pinPrompt(ctx); err != nil {
			return err
		}
	}
	if err = s.store.SetPin(ctx, card.ID, pin); err != nil {
		return err
	}
	output.Outcome = execution.OK("pin updated for card ending in %v", card.Last4())
	return nil
}

func (s *Service) assignPolicyToCard(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AssignPolicyInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*AssignPolicyOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	card, outcome, err := s.cardByLast4(ctx, input.CardLast4)
	if err != nil {
		return err
	}
	if outcome != nil {
		output.Outcome = outcome
		return nil
	}
	policy, err := s.matchPolicy(ctx, input.Policy)
	if err != nil {
		return err
	}
	if policy == nil {
		output.Outcome = execution.Invalid("could not find matching policy to assign")
		return nil
	}
	if err = s.store.AssignPolicy(ctx, card.ID, policy.ID); err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			output.Outcome = execution.Invalid("could not find matching policy to assign")
			return nil
		}
		return err
	}
	output.Outcome = execution.OK("assigned %v policy to card ending in %v", policy.Type, card.Last4())
	return nil
}

// cardByLast4 resolves a card by the last four digits of its number. A
// missing match yields an invalid outcome rather than an error.
func (s *Service) cardByLast4(ctx context.Context, last4 string) (*model.Card, *execution.Outcome, error) {
	if len(last4) != 4 {
		return nil, execution.Invalid("card reference %v must be the last four digits", last4), nil
	}
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, card := range cards {
		if card.Last4() == last4 {
			return card, nil, nil
		}
	}
	return nil, execution.Invalid("no card ends in %v", last4), nil
}

// matchPolicy finds a policy by exact id or exact type.
func (s *Service) matchPolicy(ctx context.Context, ref string) (*model.ExpensePolicy, error) {
	policies, err := s.store.Policies(ctx)
	if err != nil {
		return nil, err
	}
	for _, policy := range policies {
		if policy.ID == ref || policy.Type == ref {
			return policy, nil
		}
	}
	return nil, nil
}
