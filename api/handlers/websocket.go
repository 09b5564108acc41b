package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/void-terminal/voidterm/internal/server"
)

// WebSocketHandler handles WebSocket attach requests for terminals.
type WebSocketHandler struct {
	relay *server.Handler
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(relay *server.Handler) *WebSocketHandler {
	return &WebSocketHandler{relay: relay}
}

// Attach handles GET /ws/:terminalId - attaches a client to a terminal.
func (h *WebSocketHandler) Attach(c *gin.Context) {
	terminalID := c.Param("terminalId")
	if terminalID == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Terminal ID is required")
		return
	}

	if err := h.relay.HandleConnection(c.Writer, c.Request, terminalID); err != nil {
		// Upgrade failures already wrote an HTTP error response.
		log.Printf("terminal %s: websocket upgrade failed: %v", terminalID, err)
	}
}
