package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lottoplay/housie-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict this in production to your domains
		return true
	},
}

// HandleWebSocket subscribes a client to a room's event stream. Joining
// an unknown room is rejected; joining twice with the same identity is
// a no-op.
func (m *Manager) HandleWebSocket(c *gin.Context) {
	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	roomID := uint(roomID64)

	session, err := m.Session(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	userIDStr := c.Query("user")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user query param"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		id:     fmt.Sprintf("%s#%s", userIDStr, conn.RemoteAddr()),
		roomID: roomID,
		conn:   conn,
		bc:     m.bc,
		send:   make(chan []byte, 32),
	}

	m.bc.Join(roomID, client.id, client)
	logger.Infof("[Room %d] subscriber %s joined (total=%d)", roomID, client.id, m.bc.Count(roomID))

	// Push the current state to the new subscriber so late joiners
	// catch up immediately; the rest of the room already has it.
	snap := session.Snapshot()
	if msg, err := json.Marshal(Event{Type: EventWinnersUpdated, RoomID: roomID, Payload: WinnersList{Winners: snap.Winners}}); err == nil {
		client.Send(msg)
	}

	go client.writePump()
	go client.readPump()
}
