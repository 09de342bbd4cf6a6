package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_Hierarchy(t *testing.T) {
	ordered := Roles()

	for i, userRole := range ordered {
		for j, required := range ordered {
			got := HasPermission(userRole, required)
			assert.Equalf(t, i >= j, got, "HasPermission(%s, %s)", userRole, required)
		}
	}
}

func TestHasPermission_UnknownRolesFailClosed(t *testing.T) {
	for _, required := range Roles() {
		assert.Falsef(t, HasPermission("", required), "empty role vs %s", required)
		assert.Falsef(t, HasPermission("owner", required), "unknown role vs %s", required)
	}

	// Unknown required role is undecidable too
	assert.False(t, HasPermission(RoleSuperAdmin, "owner"))
	assert.False(t, HasPermission(RoleSuperAdmin, ""))
}

func TestHasPermission_CaseSensitive(t *testing.T) {
	assert.False(t, HasPermission("Admin", RoleUser))
	assert.False(t, HasPermission("SUPERADMIN", RoleUser))
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(RoleUser))
	assert.False(t, IsAdmin(RoleRescuer))
	assert.True(t, IsAdmin(RoleAdmin))
	assert.True(t, IsAdmin(RoleSuperAdmin))
	assert.False(t, IsAdmin("moderator"))
}

func TestIsSuperAdmin_ExactEquality(t *testing.T) {
	assert.True(t, IsSuperAdmin(RoleSuperAdmin))

	// admin satisfies HasPermission(admin, admin) but is not a superadmin
	assert.False(t, IsSuperAdmin(RoleAdmin))
	assert.False(t, IsSuperAdmin(RoleUser))
	assert.False(t, IsSuperAdmin(RoleRescuer))
	assert.False(t, IsSuperAdmin(""))
}

func TestCanManageAnimals(t *testing.T) {
	assert.False(t, CanManageAnimals(RoleUser))
	assert.True(t, CanManageAnimals(RoleRescuer))
	assert.True(t, CanManageAnimals(RoleAdmin))
	assert.True(t, CanManageAnimals(RoleSuperAdmin))
	assert.False(t, CanManageAnimals("volunteer"))
}

func TestCanManageUser_RuleTable(t *testing.T) {
	tests := []struct {
		acting Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RoleUser, true},
		{RoleSuperAdmin, RoleRescuer, true},
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleRescuer, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleRescuer, RoleUser, false},
		{RoleUser, RoleRescuer, false},
		{RoleUser, RoleUser, false},
	}

	for _, tt := range tests {
		got := CanManageUser(tt.acting, tt.target)
		assert.Equalf(t, tt.want, got, "CanManageUser(%s, %s)", tt.acting, tt.target)
	}
}

func TestCanManageUser_UnknownTargetFailsClosed(t *testing.T) {
	assert.False(t, CanManageUser(RoleSuperAdmin, "owner"))
	assert.False(t, CanManageUser(RoleAdmin, ""))
	assert.False(t, CanManageUser("owner", RoleUser))
}

func TestAssignableRoles(t *testing.T) {
	assert.ElementsMatch(t,
		[]Role{RoleUser, RoleRescuer, RoleAdmin, RoleSuperAdmin},
		AssignableRoles(RoleSuperAdmin))
	assert.ElementsMatch(t, []Role{RoleRescuer, RoleUser}, AssignableRoles(RoleAdmin))
	assert.Empty(t, AssignableRoles(RoleRescuer))
	assert.Empty(t, AssignableRoles(RoleUser))
	assert.Empty(t, AssignableRoles("owner"))
}

func TestAssignableRoles_LockstepWithCanManageUser(t *testing.T) {
	for _, acting := range Roles() {
		assignable := make(map[Role]bool)
		for _, r := range AssignableRoles(acting) {
			assignable[r] = true
		}
		for _, target := range Roles() {
			assert.Equalf(t, CanManageUser(acting, target), assignable[target],
				"acting=%s target=%s", acting, target)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}
