package auth

import "github.com/sajanbk/meatshop-golang/internal/models"

// The role permission matrix, consolidated into pure functions so every
// handler asks the same questions the same way.
//
// Hierarchy: admin > sub_admin > staff > customer.

// HasAdminAccess: admin or sub-admin.
func HasAdminAccess(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSubAdmin
}

// HasStaffAccess: admin, sub-admin or staff.
func HasStaffAccess(role string) bool {
	return HasAdminAccess(role) || role == models.RoleStaff
}

// CanManageOrders: order confirmation and delivery updates are staff work.
func CanManageOrders(role string) bool {
	return HasStaffAccess(role)
}

// CanManageUsers: admin only.
func CanManageUsers(role string) bool {
	return role == models.RoleAdmin
}

// CanGrantStaffRole: admins and sub-admins may grant/revoke staff.
func CanGrantStaffRole(role string) bool {
	return HasAdminAccess(role)
}

// CanEditUser reports whether actorRole acting as actorID may edit targetID's
// details. Sub-admins cannot edit other users; customers only themselves.
func CanEditUser(actorRole string, actorID, targetID int64) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	if actorRole == models.RoleSubAdmin {
		return actorID == targetID
	}
	return actorID == targetID
}

// CanChangeRole is the single decision point for role grants:
// (actor role, target's current role, requested role) -> permitted.
func CanChangeRole(actorRole, targetRole, requestedRole string) bool {
	switch actorRole {
	case models.RoleAdmin:
		// Admins may not touch other admins, and may not demote sub-admins.
		if targetRole == models.RoleAdmin {
			return false
		}
		if targetRole == models.RoleSubAdmin && requestedRole != models.RoleSubAdmin {
			return false
		}
		return requestedRole != models.RoleAdmin
	case models.RoleSubAdmin:
		// Sub-admins may only move users between customer and staff.
		if targetRole != models.RoleCustomer && targetRole != models.RoleStaff {
			return false
		}
		return requestedRole == models.RoleCustomer || requestedRole == models.RoleStaff
	default:
		return false
	}
}
