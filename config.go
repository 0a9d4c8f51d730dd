package agentgate

import (
	"fmt"

	"github.com/agentgate/agentgate/policy"
)

// Config is a serialisable representation of the core configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value
// is useful – all nested fields inherit their package defaults.
type Config struct {
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`
	// Permissions overrides the built-in action/role grants when non-nil.
	Permissions *policy.Config `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	// SeedURL points at a YAML/JSON asset with cards, policies and
	// transactions to pre-populate the store from.
	SeedURL string `json:"seedURL,omitempty" yaml:"seedURL,omitempty"`
}

type DispatcherConfig struct {
	WorkerCount int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors use. Callers may modify the returned struct before passing it
// to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: DispatcherConfig{
			WorkerCount: 1,
		},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Dispatcher.WorkerCount <= 0 {
		return fmt.Errorf("dispatcher.workerCount must be > 0")
	}
	if c.Permissions != nil {
		for action, roles := range policy.FromConfig(c.Permissions) {
			for _, role := range roles {
				if !role.Valid() {
					return fmt.Errorf("permissions.%s: unknown role %v", action, role)
				}
			}
		}
	}
	return nil
}
