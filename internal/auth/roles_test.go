package auth

import (
	"testing"

	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAccessLevels(t *testing.T) {
	assert.True(t, HasAdminAccess(models.RoleAdmin))
	assert.True(t, HasAdminAccess(models.RoleSubAdmin))
	assert.False(t, HasAdminAccess(models.RoleStaff))
	assert.False(t, HasAdminAccess(models.RoleCustomer))

	assert.True(t, HasStaffAccess(models.RoleAdmin))
	assert.True(t, HasStaffAccess(models.RoleSubAdmin))
	assert.True(t, HasStaffAccess(models.RoleStaff))
	assert.False(t, HasStaffAccess(models.RoleCustomer))

	assert.True(t, CanManageOrders(models.RoleStaff))
	assert.False(t, CanManageOrders(models.RoleCustomer))

	assert.True(t, CanManageUsers(models.RoleAdmin))
	assert.False(t, CanManageUsers(models.RoleSubAdmin))
}

func TestCanEditUser(t *testing.T) {
	assert.True(t, CanEditUser(models.RoleAdmin, 1, 99))
	assert.True(t, CanEditUser(models.RoleSubAdmin, 5, 5))
	assert.False(t, CanEditUser(models.RoleSubAdmin, 5, 6))
	assert.True(t, CanEditUser(models.RoleCustomer, 9, 9))
	assert.False(t, CanEditUser(models.RoleCustomer, 9, 10))
}

func TestCanChangeRole(t *testing.T) {
	tests := []struct {
		name      string
		actor     string
		target    string
		requested string
		want      bool
	}{
		{"admin promotes customer to staff", models.RoleAdmin, models.RoleCustomer, models.RoleStaff, true},
		{"admin promotes staff to sub_admin", models.RoleAdmin, models.RoleStaff, models.RoleSubAdmin, true},
		{"admin demotes staff to customer", models.RoleAdmin, models.RoleStaff, models.RoleCustomer, true},
		{"admin cannot mint admins", models.RoleAdmin, models.RoleStaff, models.RoleAdmin, false},
		{"admin cannot touch admins", models.RoleAdmin, models.RoleAdmin, models.RoleCustomer, false},
		{"admin cannot demote sub_admin", models.RoleAdmin, models.RoleSubAdmin, models.RoleStaff, false},

		{"sub_admin promotes customer to staff", models.RoleSubAdmin, models.RoleCustomer, models.RoleStaff, true},
		{"sub_admin demotes staff to customer", models.RoleSubAdmin, models.RoleStaff, models.RoleCustomer, true},
		{"sub_admin cannot grant sub_admin", models.RoleSubAdmin, models.RoleCustomer, models.RoleSubAdmin, false},
		{"sub_admin cannot touch sub_admins", models.RoleSubAdmin, models.RoleSubAdmin, models.RoleCustomer, false},
		{"sub_admin cannot touch admins", models.RoleSubAdmin, models.RoleAdmin, models.RoleCustomer, false},

		{"staff cannot change roles", models.RoleStaff, models.RoleCustomer, models.RoleStaff, false},
		{"customer cannot change roles", models.RoleCustomer, models.RoleCustomer, models.RoleStaff, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanChangeRole(tc.actor, tc.target, tc.requested))
		})
	}
}
