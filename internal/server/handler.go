package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/void-terminal/voidterm/internal/logger"
	"github.com/void-terminal/voidterm/internal/model"
	"github.com/void-terminal/voidterm/internal/repository"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// Handler upgrades connections and relays message traffic between the
// clients attached to a terminal. Valid messages are persisted and recorded
// before delivery; malformed frames are dropped without affecting the
// connection.
type Handler struct {
	hubManager  *HubManager
	repo        *repository.MessageRepository
	transcripts *logger.Store
}

// NewHandler creates a relay handler. repo and transcripts may be nil to
// disable persistence or transcript recording.
func NewHandler(hubManager *HubManager, repo *repository.MessageRepository, transcripts *logger.Store) *Handler {
	return &Handler{
		hubManager:  hubManager,
		repo:        repo,
		transcripts: transcripts,
	}
}

// HubManager returns the hub manager.
func (h *Handler) HubManager() *HubManager {
	return h.hubManager
}

// HandleConnection upgrades the HTTP request and attaches the resulting
// client to the terminal's hub. Buffered offline messages are delivered to
// the new client before live traffic.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request, terminalID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	hub := h.hubManager.GetOrCreate(terminalID)
	client := NewClient(hub)
	hub.Register(client)

	go h.writePump(client, conn)
	go h.readPump(client, hub, conn)

	return nil
}

// Inject delivers a message to a terminal on behalf of the HTTP API. The
// message is persisted and recorded like any other, and buffered when no
// client is attached.
func (h *Handler) Inject(ctx context.Context, terminalID string, msg *model.Message) error {
	if err := h.store(ctx, terminalID, "inject", msg); err != nil {
		return err
	}
	h.hubManager.GetOrCreate(terminalID).Deliver(msg, nil)
	return nil
}

// store persists and records a message; persistence failures are returned,
// transcript failures only logged.
func (h *Handler) store(ctx context.Context, terminalID, direction string, msg *model.Message) error {
	if h.repo != nil {
		if err := h.repo.Create(ctx, terminalID, msg); err != nil {
			return err
		}
	}
	if h.transcripts != nil {
		if data, err := msg.Encode(); err == nil {
			t, err := h.transcripts.Get(terminalID)
			if err != nil {
				log.Printf("failed to open transcript for terminal %s: %v", terminalID, err)
			} else if err := t.Record(direction, data); err != nil {
				log.Printf("failed to record transcript for terminal %s: %v", terminalID, err)
			}
		}
	}
	return nil
}

// handleFrame processes one inbound frame from a client. A frame that does
// not parse is dropped with a log line; it is never fatal to the connection.
func (h *Handler) handleFrame(client *Client, hub *Hub, data []byte) {
	msg, err := model.ParseMessage(data)
	if err != nil {
		log.Printf("terminal %s: dropping malformed frame: %v", hub.TerminalID(), err)
		return
	}

	if err := h.store(context.Background(), hub.TerminalID(), "recv", msg); err != nil {
		log.Printf("terminal %s: failed to persist message: %v", hub.TerminalID(), err)
	}

	hub.Deliver(msg, client)
}

// readPump pumps frames from the WebSocket connection into the relay.
func (h *Handler) readPump(client *Client, hub *Hub, conn *websocket.Conn) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("terminal %s: websocket error: %v", hub.TerminalID(), err)
			}
			break
		}
		h.handleFrame(client, hub, data)
	}
}

// writePump pumps queued frames to the WebSocket connection, one frame per
// message so the client can parse each payload independently.
func (h *Handler) writePump(client *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.SendChan():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the client
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
