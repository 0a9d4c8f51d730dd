package policy

// Role classifies the actor behind a session. It is immutable once the
// session has been established.
type Role string

const (
	// RoleMember is a standard team member.
	RoleMember Role = "member"
	// RoleDepartmentAdmin administers cards and approvals for one department.
	RoleDepartmentAdmin Role = "departmentAdmin"
	// RoleExecutiveAdmin inherits every department admin grant and may act
	// across departments.
	RoleExecutiveAdmin Role = "executiveAdmin"
)

// Valid reports whether the role is one of the known classifications.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleDepartmentAdmin, RoleExecutiveAdmin:
		return true
	}
	return false
}
