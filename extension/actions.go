package extension

import (
	"fmt"
	"sync"

	"github.com/viant/x"

	"github.com/agentgate/agentgate/model/types"
)

// ErrActionNotFound signals an action key no registered service exposes.
var ErrActionNotFound = fmt.Errorf("action not found")

// DataTypeIniter lets a service register its input/output types on
// registration.
type DataTypeIniter interface {
	InitTypes(types *Types)
}

// Action binds a flat action key to the service and signature that
// implement it.
type Action struct {
	Service   types.Service
	Signature *types.Signature
}

// Actions provides action service
type Actions struct {
	types    *Types
	services map[string]types.Service
	// index maps flat action keys across all registered services
	index map[string]*Action
	mux   sync.RWMutex
}

func (s *Actions) Types() *Types {
	return s.types
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Resolve returns the registration for a flat action key, or
// ErrActionNotFound when no registered service exposes it.
func (s *Actions) Resolve(actionKey string) (*Action, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	action, ok := s.index[actionKey]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrActionNotFound, actionKey)
	}
	return action, nil
}

// Keys returns every registered flat action key.
func (s *Actions) Keys() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	keys := make([]string, 0, len(s.index))
	for key := range s.index {
		keys = append(keys, key)
	}
	return keys
}

// Register registers a service and indexes its action keys. A later
// registration overwrites earlier keys, mirroring map semantics.
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if typer, ok := service.(DataTypeIniter); ok {
		typer.InitTypes(s.types)
	}
	s.services[service.Name()] = service
	methods := service.Methods()
	for i := range methods {
		signature := &methods[i]
		s.index[signature.Name] = &Action{Service: service, Signature: signature}
	}
}

// NewActions creates a new action service
func NewActions(goTypes ...*x.Type) *Actions {
	ret := &Actions{
		types:    NewTypes(),
		services: make(map[string]types.Service),
		index:    make(map[string]*Action),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
