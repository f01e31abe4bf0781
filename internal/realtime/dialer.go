package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketDialer dials the backend realtime endpoint over websocket with
// the auth token presented at handshake.
type WebsocketDialer struct {
	handshakeTimeout time.Duration
}

// NewWebsocketDialer creates a dialer with default handshake timeout.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{handshakeTimeout: 10 * time.Second}
}

// Dial opens a websocket connection to rawURL.
func (d *WebsocketDialer) Dial(ctx context.Context, rawURL, token string) (Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}
	wsConn, resp, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}
	return &websocketConn{conn: wsConn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) ReadMessage() (Message, error) {
	var msg Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (c *websocketConn) WriteMessage(msg Message) error {
	return c.conn.WriteJSON(msg)
}

func (c *websocketConn) Close() error {
	return c.conn.Close()
}
