package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single frame write
	writeWait = 10 * time.Second

	// maxMessageSize caps inbound frames
	maxMessageSize = 4096

	// sendBufferSize is the per-connection outbound queue; a connection
	// that cannot drain this is dropped rather than stalling its session
	sendBufferSize = 64
)

// wsConn adapts a gorilla websocket connection to the coordinator's Conn
// interface. The coordinator enqueues frames; writePump owns all writes.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send enqueues one frame without blocking. False means the connection is
// closed or its buffer is full; the coordinator treats either as a dead
// connection.
func (c *wsConn) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which closes the underlying transport and
// unblocks the read pump. Safe to call from any goroutine, more than once.
func (c *wsConn) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// writePump serializes all writes to the transport
func (c *wsConn) writePump() {
	defer c.ws.Close()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			// Flush anything already queued, then say goodbye.
			for {
				select {
				case data := <-c.send:
					c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if c.ws.WriteMessage(websocket.TextMessage, data) != nil {
						return
					}
				default:
					c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					c.ws.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
