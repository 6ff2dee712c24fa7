package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lottoplay/housie-backend/housie"
	"github.com/lottoplay/housie-backend/services"
)

type GameController struct {
	Mgr *services.Manager
}

func NewGameController(mgr *services.Manager) *GameController {
	return &GameController{Mgr: mgr}
}

func roomParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return 0, false
	}
	return uint(id), true
}

// Start begins a game in the room. Organizer only.
func (gc *GameController) Start(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	session, err := gc.Mgr.Session(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	game, err := session.Start(currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game started successfully", "game": game})
}

// Draw calls the next number. The number always comes from the server's
// own sequencer; the request body carries nothing.
func (gc *GameController) Draw(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	session, err := gc.Mgr.Session(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	number, called, err := session.Draw(currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"number": number, "calledNumbers": called})
}

// End completes the game and the room. Organizer only, terminal.
func (gc *GameController) End(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	if err := gc.Mgr.End(roomID, currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game ended successfully"})
}

// Claim submits a win claim for one of the caller's tickets. The server
// re-validates against its own called sequence; called_count is kept on
// the record for display, never trusted for the decision.
func (gc *GameController) Claim(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	var req struct {
		TicketID    uint   `json:"ticket_id" binding:"required"`
		WinType     string `json:"win_type" binding:"required"`
		CalledCount int    `json:"called_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := gc.Mgr.Session(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	rec, err := session.Claim(currentUser(c).ID, req.TicketID, housie.Category(req.WinType), req.CalledCount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Win submitted successfully", "winner": rec})
}

// State returns a consistent snapshot of the room's live game.
func (gc *GameController) State(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	session, err := gc.Mgr.Session(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

// Winners lists the room's win records in claim order.
func (gc *GameController) Winners(c *gin.Context) {
	roomID, ok := roomParam(c)
	if !ok {
		return
	}

	session, err := gc.Mgr.Session(roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"winners": session.Snapshot().Winners})
}
