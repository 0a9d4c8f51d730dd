package extension

import (
	"sort"

	"github.com/agentgate/agentgate/model/types"
	"github.com/agentgate/agentgate/policy"
)

// Gate decides whether a role may invoke an action key.
type Gate interface {
	Allowed(actionKey string, role policy.Role) bool
}

// Descriptor is one entry of a caller's derived action view.
type Descriptor struct {
	Key         string            `json:"key"`
	Service     string            `json:"service"`
	Description string            `json:"description,omitempty"`
	Mode        types.Mode        `json:"mode"`
	Parameters  []types.Parameter `json:"parameters,omitempty"`
	Enabled     bool              `json:"enabled"`
}

// View derives the action list for a role. Denied actions stay listed with
// Enabled false so the caller can explain the refusal; sensitive actions are
// dropped from the view entirely when denied, so their existence never leaks.
// The result is computed on every call and ordered by key.
func (s *Actions) View(gate Gate, role policy.Role) []*Descriptor {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*Descriptor, 0, len(s.index))
	for key, action := range s.index {
		allowed := gate.Allowed(key, role)
		if !allowed && action.Signature.Sensitive {
			continue
		}
		out = append(out, &Descriptor{
			Key:         key,
			Service:     action.Service.Name(),
			Description: action.Signature.Description,
			Mode:        action.Signature.Mode,
			Parameters:  action.Signature.Parameters,
			Enabled:     allowed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
