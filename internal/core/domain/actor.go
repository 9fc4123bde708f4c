package domain

// Role is the capability level of a user inside a tenant.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleMember     Role = "MEMBER"
	RoleReadOnly   Role = "READONLY"
)

// Actor carries the request scope every engine call runs under.
// It is threaded explicitly instead of being looked up from ambient session state.
type Actor struct {
	TenantID string `json:"tenantID"`
	UserID   string `json:"userID"`
	Role     Role   `json:"role"`
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleMember, RoleReadOnly:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve drafts and post journal entries.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanEdit reports whether the role may create or edit drafts.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleAccountant || r == RoleMember
}

// CanAdministerChart reports whether the role may change the chart of accounts and mappings.
func (r Role) CanAdministerChart() bool {
	return r == RoleAdmin
}
