package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lottoplay/housie-backend/config"
	"github.com/lottoplay/housie-backend/housie"
	"github.com/lottoplay/housie-backend/models"
	"github.com/lottoplay/housie-backend/services"
)

type TicketController struct {
	Mgr   *services.Manager
	Store services.Store
}

func NewTicketController(mgr *services.Manager, store services.Store) *TicketController {
	return &TicketController{Mgr: mgr, Store: store}
}

// Buy purchases one ticket in a waiting room: generate a grid, debit
// the wallet and insert the ticket atomically.
func (tc *TicketController) Buy(c *gin.Context) {
	var req struct {
		RoomID uint `json:"room_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := tc.Store.LoadRoom(req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	if room.Status != models.RoomWaiting {
		respondError(c, services.ErrRoomClosed)
		return
	}

	grid, err := housie.NewGrid()
	if err != nil {
		respondError(c, err)
		return
	}

	user := currentUser(c)
	ticket := &models.Ticket{UserID: user.ID, RoomID: room.ID}
	ticket.SetGrid(grid)

	if err := tc.Store.PurchaseTicket(user.ID, room, ticket); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Ticket purchased successfully", "ticket": ticket})
}

// ListMine returns the caller's tickets, optionally scoped to a room.
func (tc *TicketController) ListMine(c *gin.Context) {
	query := config.DB.Where("user_id = ?", currentUser(c).ID)
	if roomID := c.Query("room_id"); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC").Find(&tickets).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (tc *TicketController) ownTicket(c *gin.Context) (*models.Ticket, bool) {
	id, err := strconv.ParseUint(c.Param("ticketId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return nil, false
	}

	ticket, err := tc.Store.LoadTicket(uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if ticket.UserID != currentUser(c).ID {
		respondError(c, services.ErrTicketNotFound)
		return nil, false
	}
	return ticket, true
}

// Detail returns one of the caller's tickets with the live game state.
func (tc *TicketController) Detail(c *gin.Context) {
	ticket, ok := tc.ownTicket(c)
	if !ok {
		return
	}

	session, err := tc.Mgr.Session(ticket.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "state": session.Snapshot()})
}

// Check reports which categories the ticket currently satisfies. Pure
// display hint; claiming still goes through the claim endpoint.
func (tc *TicketController) Check(c *gin.Context) {
	ticket, ok := tc.ownTicket(c)
	if !ok {
		return
	}

	session, err := tc.Mgr.Session(ticket.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	wins, called, err := session.Evaluate(ticket)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"winStatus":     wins.List(),
		"calledNumbers": called,
	})
}
