package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// ChatAI is the handler for POST /v1/ai/chat — the shop assistant widget.
func (h *Handlers) ChatAI(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	userID := c.GetInt64("userID")
	userRole := c.GetString("userRole")

	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	aiResponse, tokens, err := h.AIService.GenerateResponse(c.Request.Context(), input.Message, userRole, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI Service unavailable: " + err.Error()})
		return
	}

	// Keep a record of the conversation; the user already has their answer,
	// so a failed insert is only logged.
	_, dbErr := h.DB.Exec(`
		INSERT INTO ai_chat_history (user_id, user_role, user_message, ai_response, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())`,
		userID, userRole, input.Message, aiResponse, tokens)
	if dbErr != nil {
		log.Printf("Warning: failed to save chat history: %v", dbErr)
	}

	c.JSON(http.StatusOK, gin.H{
		"response": aiResponse,
		"tokens":   tokens,
	})
}
