package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Time allowed to write a message or close frame to the peer.
const writeWait = 10 * time.Second

// Transport is the opaque bidirectional connection primitive used by the
// Manager. Implementations must make ReadMessage block until a frame arrives
// or the connection fails, and must unblock any pending read when Close is
// called.
type Transport interface {
	// ReadMessage blocks until the next frame is received.
	ReadMessage() ([]byte, error)

	// WriteMessage transmits a single frame.
	WriteMessage(data []byte) error

	// Close tears the connection down.
	Close() error
}

// Dialer opens a Transport to the given endpoint URL. The context bounds the
// attempt; implementations must abort when it is cancelled.
type Dialer func(ctx context.Context, url string) (Transport, error)

// wsTransport adapts a gorilla websocket connection to the Transport interface.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	// Best-effort close frame so the peer sees a graceful shutdown.
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return t.conn.Close()
}

// DialWebSocket is the production Dialer backed by gorilla/websocket.
func DialWebSocket(ctx context.Context, url string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}
