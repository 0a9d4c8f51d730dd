package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/agentgate/agentgate/internal/clock"
	"github.com/agentgate/agentgate/internal/idgen"
	"github.com/agentgate/agentgate/model"
	"github.com/agentgate/agentgate/service/dao"
	"github.com/agentgate/agentgate/service/dao/criteria"
	dstore "github.com/agentgate/agentgate/service/dao/store"
	"github.com/agentgate/agentgate/service/store"
)

func cardKey(c *model.Card) string               { return c.ID }
func policyKey(p *model.ExpensePolicy) string    { return p.ID }
func transactionKey(t *model.Transaction) string { return t.ID }

// Service is the in-memory store implementation. Pins are kept as bcrypt
// hashes; plaintext never survives the call that carried it.
type Service struct {
	cards        *dstore.MemoryStore[string, model.Card]
	policies     *dstore.MemoryStore[string, model.ExpensePolicy]
	transactions *dstore.MemoryStore[string, model.Transaction]
	mutations    atomic.Int64
}

// New creates an empty in-memory store.
func New() *Service {
	return &Service{
		cards:        dstore.NewMemoryStore[string, model.Card](cardKey),
		policies:     dstore.NewMemoryStore[string, model.ExpensePolicy](policyKey),
		transactions: dstore.NewMemoryStore[string, model.Transaction](transactionKey),
	}
}

// NewWithSeed creates a store pre-populated from the supplied seed.
func NewWithSeed(ctx context.Context, seed *store.Seed) (*Service, error) {
	ret := New()
	if seed == nil {
		return ret, nil
	}
	for _, card := range seed.Cards {
		cp := *card
		if cp.ID == "" {
			cp.ID = idgen.New()
		}
		if cp.Number == "" {
			cp.Number = randomDigits(16)
		}
		if cp.PIN != "" {
			hashed, err := hashPin(cp.PIN)
			if err != nil {
				return nil, err
			}
			cp.PIN = hashed
		}
		if err := ret.cards.Save(ctx, &cp); err != nil {
			return nil, err
		}
	}
	for _, policy := range seed.Policies {
		cp := *policy
		if err := ret.policies.Save(ctx, &cp); err != nil {
			return nil, err
		}
	}
	for _, transaction := range seed.Transactions {
		cp := *transaction
		if cp.Status == "" {
			cp.Status = model.TransactionPending
		}
		if err := ret.transactions.Save(ctx, &cp); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// CreateCard issues a new card. Missing color falls back to the default for
// the card type; the card number is generated.
func (s *Service) CreateCard(ctx context.Context, request *model.NewCardRequest) (*model.Card, error) {
	if request == nil {
		return nil, fmt.Errorf("card request was empty")
	}
	if request.Type == "" || request.PIN == "" {
		return nil, fmt.Errorf("card type and pin are required")
	}
	color := request.Color
	if color == "" {
		color = model.CardColors[request.Type]
	}
	hashed, err := hashPin(request.PIN)
	if err != nil {
		return nil, err
	}
	card := &model.Card{
		ID:     idgen.New(),
		Number: randomDigits(16),
		Type:   request.Type,
		Color:  color,
		PIN:    hashed,
		Team:   request.Team,
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, err
	}
	s.mutations.Add(1)
	return card, nil
}

// SetPin replaces the pin of an existing card.
func (s *Service) SetPin(ctx context.Context, cardID, pin string) error {
	card, err := s.cards.Load(ctx, cardID)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: %v", store.ErrCardNotFound, cardID)
	}
	hashed, err := hashPin(pin)
	if err != nil {
		return err
	}
	card.PIN = hashed
	if err := s.cards.Save(ctx, card); err != nil {
		return err
	}
	s.mutations.Add(1)
	return nil
}

// VerifyPin checks a candidate pin against the stored hash.
func (s *Service) VerifyPin(ctx context.Context, cardID, pin string) (bool, error) {
	card, err := s.cards.Load(ctx, cardID)
	if err != nil {
		return false, err
	}
	if card == nil {
		return false, fmt.Errorf("%w: %v", store.ErrCardNotFound, cardID)
	}
	err = bcrypt.CompareHashAndPassword([]byte(card.PIN), []byte(pin))
	return err == nil, nil
}

// AssignPolicy attaches an existing expense policy to a card.
func (s *Service) AssignPolicy(ctx context.Context, cardID, policyID string) error {
	card, err := s.cards.Load(ctx, cardID)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: %v", store.ErrCardNotFound, cardID)
	}
	policy, err := s.policies.Load(ctx, policyID)
	if err != nil {
		return err
	}
	if policy == nil {
		return fmt.Errorf("%w: %v", store.ErrPolicyNotFound, policyID)
	}
	card.ExpensePolicyID = policy.ID
	if err := s.cards.Save(ctx, card); err != nil {
		return err
	}
	s.mutations.Add(1)
	return nil
}

// AddNote appends an annotation to a transaction.
func (s *Service) AddNote(ctx context.Context, transactionID, content string) error {
	transaction, err := s.transactions.Load(ctx, transactionID)
	if err != nil {
		return err
	}
	if transaction == nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionNotFound, transactionID)
	}
	transaction.Notes = append(transaction.Notes, model.Note{Content: content, CreatedAt: clock.Now()})
	if err := s.transactions.Save(ctx, transaction); err != nil {
		return err
	}
	s.mutations.Add(1)
	return nil
}

// SetTransactionStatus records a review decision. Only pending transactions
// accept a new status; terminal states never change again.
func (s *Service) SetTransactionStatus(ctx context.Context, transactionID string, status model.TransactionStatus) error {
	transaction, err := s.transactions.Load(ctx, transactionID)
	if err != nil {
		return err
	}
	if transaction == nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionNotFound, transactionID)
	}
	if transaction.Status.Terminal() {
		return fmt.Errorf("%w: %v is already %v", store.ErrStatusFinal, transactionID, transaction.Status)
	}
	transaction.Status = status
	if err := s.transactions.Save(ctx, transaction); err != nil {
		return err
	}
	s.mutations.Add(1)
	return nil
}

// Cards returns all cards.
func (s *Service) Cards(ctx context.Context) ([]*model.Card, error) {
	return s.cards.List(ctx)
}

// Policies returns all expense policies.
func (s *Service) Policies(ctx context.Context) ([]*model.ExpensePolicy, error) {
	return s.policies.List(ctx)
}

// Transactions returns transactions, optionally narrowed by a Status
// parameter.
func (s *Service) Transactions(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Transaction, error) {
	all, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(parameters) == 0 {
		return all, nil
	}
	out := make([]*model.Transaction, 0, len(all))
	for _, transaction := range all {
		if criteria.FilterByStatus(string(transaction.Status), parameters) {
			out = append(out, transaction)
		}
	}
	return out, nil
}

// Transaction returns a single transaction or nil when absent.
func (s *Service) Transaction(ctx context.Context, id string) (*model.Transaction, error) {
	return s.transactions.Load(ctx, id)
}

// MutationCount returns the number of state-changing calls issued so far.
func (s *Service) MutationCount() int64 {
	return s.mutations.Load()
}

func hashPin(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hashed), nil
}

// randomDigits returns n random decimal digits, first one non-zero.
func randomDigits(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte(byte('1' + rand.Intn(9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}

var _ store.Service = (*Service)(nil)
