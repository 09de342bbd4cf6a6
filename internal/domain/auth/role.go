package auth

// Package auth contains domain-level types for authentication and
// authorization. It is pure and free of framework/adapter concerns.

// Role represents an application authorization role.
// Keep string form for easy persistence and JSON transport.
// Valid values are defined as constants below, ordered by privilege.
type Role string

const (
	RoleUser       Role = "user"
	RoleRescuer    Role = "rescuer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// roleRank maps each known role to its index in the privilege order
// user < rescuer < admin < superadmin. Roles outside this table have no
// defined comparison and never satisfy a permission check.
var roleRank = map[Role]int{
	RoleUser:       0,
	RoleRescuer:    1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Roles returns all known roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleUser, RoleRescuer, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasPermission reports whether userRole meets or exceeds requiredRole in the
// privilege order. Unknown roles on either side fail closed.
func HasPermission(userRole, requiredRole Role) bool {
	userLevel, ok := roleRank[userRole]
	if !ok {
		return false
	}
	requiredLevel, ok := roleRank[requiredRole]
	if !ok {
		return false
	}
	return userLevel >= requiredLevel
}

// IsAdmin reports whether role holds admin privileges or higher.
func IsAdmin(role Role) bool {
	return HasPermission(role, RoleAdmin)
}

// IsSuperAdmin reports exact equality with superadmin. Deliberately stricter
// than a hierarchy comparison: a role added above superadmin later must not
// satisfy this check silently.
func IsSuperAdmin(role Role) bool {
	return role == RoleSuperAdmin
}

// CanManageAnimals reports whether role may create or edit animal records.
func CanManageAnimals(role Role) bool {
	return HasPermission(role, RoleRescuer)
}

// CanManageUser reports whether actingRole may manage an account holding
// targetRole. This is a hand-authored rule table, not a hierarchy shortcut:
// admins manage only rescuers and plain users, never their peers or above.
func CanManageUser(actingRole, targetRole Role) bool {
	switch actingRole {
	case RoleSuperAdmin:
		return targetRole.Valid()
	case RoleAdmin:
		return targetRole == RoleRescuer || targetRole == RoleUser
	default:
		return false
	}
}

// AssignableRoles returns the roles actingRole may assign to other accounts,
// in ascending privilege order. Kept in lockstep with CanManageUser.
func AssignableRoles(actingRole Role) []Role {
	switch actingRole {
	case RoleSuperAdmin:
		return Roles()
	case RoleAdmin:
		return []Role{RoleUser, RoleRescuer}
	default:
		return nil
	}
}
