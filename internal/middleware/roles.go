package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/auth"
)

// StaffMiddleware gates routes that manage orders and inventory.
// Must run after AuthMiddleware.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("userRole")
		if !auth.HasStaffAccess(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware gates the back-office routes (admin or sub-admin).
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("userRole")
		if !auth.HasAdminAccess(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
