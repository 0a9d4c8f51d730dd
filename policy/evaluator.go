package policy

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

// rbacModel is the casbin model used by the evaluator. Requests carry
// (role, action, act); the single g relation expresses role inheritance.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const actInvoke = "invoke"

// Evaluator answers allowed(action, role) for a fixed permission set. It is
// stateless with respect to sessions: every invocation attempt consults it
// again, nothing is cached across role changes.
type Evaluator struct {
	set      Set
	enforcer *casbin.Enforcer
}

// NewEvaluator builds an evaluator from the supplied permission set. The
// executive admin role inherits every department admin grant so that
// cross-department approvals work without listing the role per action.
func NewEvaluator(set Set) (*Evaluator, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	for action, roles := range set {
		for _, role := range roles {
			if _, err := enforcer.AddPolicy(string(role), action, actInvoke); err != nil {
				return nil, fmt.Errorf("failed to add policy for %v: %w", action, err)
			}
		}
	}
	if _, err := enforcer.AddGroupingPolicy(string(RoleExecutiveAdmin), string(RoleDepartmentAdmin)); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}
	return &Evaluator{set: set.Clone(), enforcer: enforcer}, nil
}

// Allowed reports whether role may invoke the action. Unknown action keys
// are forbidden (fail-closed); the function is total and has no side
// effects.
func (e *Evaluator) Allowed(action string, role Role) bool {
	if e == nil || action == "" {
		return false
	}
	ok, err := e.enforcer.Enforce(string(role), action, actInvoke)
	if err != nil {
		return false
	}
	return ok
}

// Forbidden returns the sorted action keys of the permission set that the
// role may not invoke. The session exposes this list to the agent's
// reasoning context so that refusals are explained as missing permission.
func (e *Evaluator) Forbidden(role Role) []string {
	var out []string
	for _, action := range e.set.Actions() {
		if !e.Allowed(action, role) {
			out = append(out, action)
		}
	}
	return out
}

// Set returns the permission set the evaluator was built from.
func (e *Evaluator) Set() Set {
	return e.set.Clone()
}
