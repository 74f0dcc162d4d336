package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/domain/repository"
)

const (
	defaultListLimit  = 50
	defaultListOffset = 0
)

// MessageHandler serves the message history endpoints: thin pass-throughs to
// the message store.
type MessageHandler struct {
	messages repository.MessageRepository
	logger   *zap.Logger
}

// NewMessageHandler creates the message handler.
func NewMessageHandler(messages repository.MessageRepository, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger,
	}
}

// List handles GET /messages?user_id=&limit=&offset=
func (h *MessageHandler) List(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(defaultListOffset)))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	messages, err := h.messages.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list messages", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetByID handles GET /messages/:id
func (h *MessageHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message id must be an integer"})
		return
	}

	message, err := h.messages.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

// Delete handles DELETE /messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message id must be an integer"})
		return
	}

	deleted, err := h.messages.DeleteByID(c.Request.Context(), uint(id))
	if err != nil {
		h.logger.Error("Failed to delete message", zap.Uint64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
