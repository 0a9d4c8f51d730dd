package model

// CardType enumerates supported card networks.
type CardType string

const (
	CardTypeVisa       CardType = "visa"
	CardTypeMastercard CardType = "mastercard"
)

// CardColors maps a card type to its default presentation color.
var CardColors = map[CardType]string{
	CardTypeVisa:       "bg-blue-500",
	CardTypeMastercard: "bg-red-500",
}

// Card represents a corporate credit card. PIN holds a bcrypt hash when the
// card lives in a store; the plaintext pin never leaves the create/set-pin
// call.
type Card struct {
	ID              string   `json:"id" yaml:"id"`
	Number          string   `json:"number" yaml:"number"`
	Type            CardType `json:"type" yaml:"type"`
	Color           string   `json:"color" yaml:"color"`
	PIN             string   `json:"-" yaml:"pin,omitempty"`
	ExpensePolicyID string   `json:"expensePolicyId,omitempty" yaml:"expensePolicyId,omitempty"`
	Team            string   `json:"team,omitempty" yaml:"team,omitempty"`
}

// Last4 returns the last four digits of the card number.
func (c *Card) Last4() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// NewCardRequest captures the arguments of a create-card command.
type NewCardRequest struct {
	Type  CardType `json:"type"`
	Color string   `json:"color"`
	PIN   string   `json:"pin"`
	Team  string   `json:"team,omitempty"`
}
