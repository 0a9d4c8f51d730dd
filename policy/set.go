package policy

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Set maps an action key to the ordered list of roles allowed to invoke it.
// It is defined once at service construction and read-only thereafter. An
// action absent from the set is implicitly forbidden.
type Set map[string][]Role

// Actions returns all action keys present in the set, sorted.
func (s Set) Actions() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy so that callers cannot mutate a shared set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for key, roles := range s {
		out[key] = append([]Role(nil), roles...)
	}
	return out
}

// Config is the serialisable representation of a permission set.
type Config struct {
	Permissions map[string][]string `json:"permissions" yaml:"permissions"`
}

// FromConfig converts a decoded Config into a Set.
func FromConfig(c *Config) Set {
	if c == nil {
		return Set{}
	}
	out := make(Set, len(c.Permissions))
	for key, roles := range c.Permissions {
		list := make([]Role, 0, len(roles))
		for _, r := range roles {
			list = append(list, Role(r))
		}
		out[key] = list
	}
	return out
}

// ParseSet decodes a YAML permission-set document.
func ParseSet(data []byte) (Set, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return FromConfig(&cfg), nil
}

// DefaultSet returns the built-in permission table. Approval stays with
// admins; read and annotate operations are open to every role; vendor MSA
// lookup is reserved for executive admins.
func DefaultSet() Set {
	return Set{
		"addNewCard":                  {RoleDepartmentAdmin, RoleExecutiveAdmin},
		"assignPolicyToCard":          {RoleDepartmentAdmin, RoleExecutiveAdmin},
		"addNoteToTransaction":        {RoleMember, RoleDepartmentAdmin, RoleExecutiveAdmin},
		"showTransactions":            {RoleMember, RoleDepartmentAdmin, RoleExecutiveAdmin},
		"setCardPin":                  {RoleMember, RoleDepartmentAdmin, RoleExecutiveAdmin},
		"showAndApproveTransactions":  {RoleDepartmentAdmin},
		"queryVendorMSA":              {RoleExecutiveAdmin},
	}
}
