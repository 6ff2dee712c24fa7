package services

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lottoplay/housie-backend/utils/logger"
)

// Client is one websocket subscriber of a room.
type Client struct {
	id     string
	roomID uint
	conn   *websocket.Conn
	bc     *Broadcaster
	send   chan []byte
	once   sync.Once
}

// Send queues a message without blocking. False means the outbox is
// full and the broadcaster should drop this client.
func (c *Client) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.bc.Leave(c.roomID, c.id)
		c.Close()
	}()

	for {
		// Incoming messages carry no authority (draws and claims go
		// through the REST API); reading just keeps the socket open.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Room %d] client %s disconnected", c.roomID, c.id)
			} else {
				logger.Debugf("[Room %d] client %s read error: %v", c.roomID, c.id, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[Room %d] client %s write error: %v", c.roomID, c.id, err)
			return
		}
	}
}
