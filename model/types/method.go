package types

import (
	"context"
	"reflect"
)

// Mode controls how an action completes from the agent's point of view.
type Mode string

const (
	// ModeDirect actions execute and return once their side effect completes.
	ModeDirect Mode = "direct"
	// ModeApproval actions suspend until a human records a decision.
	ModeApproval Mode = "approval"
)

// Parameter describes a single action argument as exposed to the agent.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"` // semantic type, defaults to string
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type Signatures []Signature

func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature describes a named action: the contract the external agent binds
// against. Name is the flat action key, unique across all registered
// services; Parameters is the ordered argument list; Mode selects direct or
// suspend-for-approval completion.
type Signature struct {
	Name        string
	Description string
	Mode        Mode
	Parameters  []Parameter
	// Sensitive signatures are omitted from a caller's action view when the
	// caller may not invoke them, instead of being listed as disabled.
	Sensitive bool
	Input     reflect.Type
	Output    reflect.Type
}

// RequiredParameters returns the names of all required parameters in
// declaration order.
func (s *Signature) RequiredParameters() []string {
	var out []string
	for _, p := range s.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
