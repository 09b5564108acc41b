// Package handlers provides HTTP API request handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/void-terminal/voidterm/internal/model"
	"github.com/void-terminal/voidterm/internal/repository"
	"github.com/void-terminal/voidterm/internal/server"
)

// TerminalHandler handles HTTP requests for terminals and their messages.
type TerminalHandler struct {
	relay *server.Handler
	repo  *repository.MessageRepository
}

// NewTerminalHandler creates a new TerminalHandler.
func NewTerminalHandler(relay *server.Handler, repo *repository.MessageRepository) *TerminalHandler {
	return &TerminalHandler{
		relay: relay,
		repo:  repo,
	}
}

// TerminalResponse represents a terminal in API responses.
type TerminalResponse struct {
	ID      string `json:"id"`
	Clients int    `json:"clients"`
	Pending int    `json:"pending"`
}

// CreateMessageRequest represents the request body for injecting a message.
type CreateMessageRequest struct {
	Sender  string `json:"sender" binding:"required"`
	Content string `json:"content" binding:"required"`
	Type    string `json:"type"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// List handles GET /api/terminals - lists known terminals.
func (h *TerminalHandler) List(c *gin.Context) {
	manager := h.relay.HubManager()

	terminals := make([]TerminalResponse, 0)
	for _, id := range manager.TerminalIDs() {
		hub := manager.Get(id)
		if hub == nil {
			continue
		}
		terminals = append(terminals, TerminalResponse{
			ID:      id,
			Clients: hub.ClientCount(),
			Pending: hub.PendingCount(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"terminals": terminals})
}

// ListMessages handles GET /api/terminals/:id/messages - returns persisted
// history, most recent `limit` messages in chronological order.
func (h *TerminalHandler) ListMessages(c *gin.Context) {
	terminalID := c.Param("id")
	if terminalID == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Terminal ID is required")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.repo.ListByTerminal(c.Request.Context(), terminalID, limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list messages: "+err.Error())
		return
	}
	if messages == nil {
		messages = []*model.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage handles POST /api/terminals/:id/messages - injects a message
// into a terminal. The message is buffered when no client is attached.
func (h *TerminalHandler) CreateMessage(c *gin.Context) {
	terminalID := c.Param("id")
	if terminalID == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Terminal ID is required")
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	msgType := model.MessageType(req.Type)
	if req.Type == "" {
		msgType = model.MessageTypeDefault
	}
	if !msgType.Valid() {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown message type: "+req.Type)
		return
	}

	msg := model.NewMessage(req.Sender, req.Content, msgType)
	if err := h.relay.Inject(c.Request.Context(), terminalID, msg); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to deliver message: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// DeleteMessages handles DELETE /api/terminals/:id/messages - purges
// persisted history for a terminal.
func (h *TerminalHandler) DeleteMessages(c *gin.Context) {
	terminalID := c.Param("id")
	if terminalID == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Terminal ID is required")
		return
	}

	if err := h.repo.DeleteByTerminal(c.Request.Context(), terminalID); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete messages: "+err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}
