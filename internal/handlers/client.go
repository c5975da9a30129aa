package handlers

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

// wsClient is one websocket connection. It satisfies arena.Conn: the
// hub hands it events, the writer pump drains them to the socket.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan []byte, 64)}
}

// Send marshals an envelope onto the outbound queue. Slow consumers
// drop frames rather than stall the hub; the periodic presence
// rebroadcast repairs anything a client misses. The hub's delayed
// notifications can fire after the read loop exits, so sends to a
// closed client are silently dropped.
func (c *wsClient) Send(event string, payload any) {
	out, err := protocol.Marshal(event, payload)
	if err != nil {
		logging.Debugf("marshal %s: %v", event, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- out:
	default:
	}
}

// close shuts the outbound queue exactly once; the writer pump exits
// after draining what remains.
func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *wsClient) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
