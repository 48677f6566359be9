package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/auth"
	"github.com/sajanbk/meatshop-golang/internal/models"
)

//
// --- Admin: User & Role Management ---
//

// ListUsers is the handler for GET /v1/admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, role, email, full_name, phone, address, is_active, created_at, updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Role, &u.Email, &u.FullName, &u.Phone,
			&u.Address, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user row"})
			return
		}
		users = append(users, u)
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRoleInput defines the JSON for a role grant.
type UpdateUserRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole is the handler for PATCH /v1/admin/users/:id/role
// Every grant runs through the single permission matrix; nothing here makes
// its own hierarchy decisions.
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	actorRole := c.GetString("userRole")
	targetID := c.Param("id")

	var input UpdateUserRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch input.Role {
	case models.RoleSubAdmin, models.RoleStaff, models.RoleCustomer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	var targetRole string
	err := h.DB.QueryRow("SELECT role FROM users WHERE id = ?", targetID).Scan(&targetRole)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !auth.CanChangeRole(actorRole, targetRole, input.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to make this role change"})
		return
	}

	_, err = h.DB.Exec("UPDATE users SET role = ?, updated_at = ? WHERE id = ?",
		input.Role, time.Now(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": input.Role})
}

// DeactivateUser is the handler for PATCH /v1/admin/users/:id/deactivate
func (h *Handlers) DeactivateUser(c *gin.Context) {
	if !auth.CanManageUsers(c.GetString("userRole")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can deactivate users"})
		return
	}

	res, err := h.DB.Exec("UPDATE users SET is_active = 0, updated_at = ? WHERE id = ? AND role <> ?",
		time.Now(), c.Param("id"), models.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found (admins cannot be deactivated)"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

//
// --- Admin: Delivery Areas ---
//

// DeliveryAreaInput defines the JSON for creating/updating an area.
type DeliveryAreaInput struct {
	AreaName       string  `json:"areaName" binding:"required"`
	AreaNameNepali string  `json:"areaNameNepali" binding:"required"`
	DeliveryCharge float64 `json:"deliveryCharge" binding:"gte=0"`
	IsActive       *bool   `json:"isActive"`
}

// ListDeliveryAreas is the handler for GET /v1/delivery-areas (public)
func (h *Handlers) ListDeliveryAreas(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, area_name, area_name_nepali, delivery_charge, is_active
		FROM delivery_areas WHERE is_active = 1 ORDER BY area_name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var areas []models.DeliveryArea
	for rows.Next() {
		var a models.DeliveryArea
		if err := rows.Scan(&a.ID, &a.AreaName, &a.AreaNameNepali, &a.DeliveryCharge, &a.IsActive); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan area row"})
			return
		}
		areas = append(areas, a)
	}
	if areas == nil {
		areas = []models.DeliveryArea{}
	}
	c.JSON(http.StatusOK, gin.H{"areas": areas})
}

// CreateDeliveryArea is the handler for POST /v1/admin/delivery-areas
func (h *Handlers) CreateDeliveryArea(c *gin.Context) {
	var input DeliveryAreaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	res, err := h.DB.Exec(`
		INSERT INTO delivery_areas (area_name, area_name_nepali, delivery_charge, is_active)
		VALUES (?, ?, ?, ?)`,
		input.AreaName, input.AreaNameNepali, input.DeliveryCharge, active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create delivery area"})
		return
	}
	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "Delivery area created", "id": id})
}

// UpdateDeliveryArea is the handler for PUT /v1/admin/delivery-areas/:id
func (h *Handlers) UpdateDeliveryArea(c *gin.Context) {
	var input DeliveryAreaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	res, err := h.DB.Exec(`
		UPDATE delivery_areas
		SET area_name = ?, area_name_nepali = ?, delivery_charge = ?, is_active = ?
		WHERE id = ?`,
		input.AreaName, input.AreaNameNepali, input.DeliveryCharge, active, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery area"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Delivery area not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery area updated"})
}

//
// --- Admin: Dashboard Stats ---
//

// AdminStats is the KPI block for the back-office dashboard.
type AdminStats struct {
	PendingOrders   int     `json:"pendingOrders"`
	PreparingOrders int     `json:"preparingOrders"`
	OutForDelivery  int     `json:"outForDelivery"`
	DeliveredToday  int     `json:"deliveredToday"`
	RevenueToday    float64 `json:"revenueToday"`
	LowStockCount   int     `json:"lowStockCount"`
}

// GetAdminStats is the handler for GET /v1/admin/dashboard-stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	countByStatus := func(status models.OrderStatus, dest *int) error {
		return h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE status = ?", status).Scan(dest)
	}
	if err := countByStatus(models.OrderStatusPending, &stats.PendingOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending orders"})
		return
	}
	if err := countByStatus(models.OrderStatusPreparing, &stats.PreparingOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count preparing orders"})
		return
	}
	if err := countByStatus(models.OrderStatusOutForDelivery, &stats.OutForDelivery); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count delivery orders"})
		return
	}

	err := h.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status = ? AND DATE(updated_at) = CURDATE()`,
		models.OrderStatusDelivered).Scan(&stats.DeliveredToday, &stats.RevenueToday)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute today's revenue"})
		return
	}

	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM products WHERE is_available = 1 AND stock_kg <= 5").Scan(&stats.LowStockCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count low-stock products"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOrderAuditLog is the handler for GET /v1/admin/orders/:id/audit
func (h *Handlers) GetOrderAuditLog(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, order_id, actor, from_status, to_status, reason, created_at
		FROM order_audit_log WHERE order_id = ? ORDER BY created_at ASC`, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var entries []models.OrderAuditEntry
	for rows.Next() {
		var e models.OrderAuditEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Actor, &e.FromStatus, &e.ToStatus, &e.Reason, &e.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan audit row"})
			return
		}
		entries = append(entries, e)
	}
	if entries == nil {
		entries = []models.OrderAuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}
