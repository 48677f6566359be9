package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/auth"
	"github.com/sajanbk/meatshop-golang/internal/models"
)

// RegisterInput holds the sign-up form. Role is never accepted from the
// client; everyone registers as a customer.
type RegisterInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
}

// Register is the handler for POST /v1/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	var address *string
	if input.Address != "" {
		address = &input.Address
	}

	res, err := h.DB.Exec(`
		INSERT INTO users (role, email, password_hash, full_name, phone, address, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		models.RoleCustomer, input.Email, password.Hash, input.FullName, input.Phone, address, now, now)
	if err != nil {
		// A duplicate email is by far the most common failure here.
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
		return
	}
	userID, _ := res.LastInsertId()

	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "खाता बन्यो / Account created",
		"token":   token,
		"userId":  userID,
	})
}

// LoginInput defines the JSON for the login request.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, role, email, password_hash, full_name, is_active
		FROM users WHERE email = ?`, input.Email).Scan(
		&user.ID, &user.Role, &user.Email, &user.PasswordHash, &user.FullName, &user.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"role":     user.Role,
			"email":    user.Email,
			"fullName": user.FullName,
		},
	})
}
