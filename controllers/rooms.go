package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lottoplay/housie-backend/config"
	"github.com/lottoplay/housie-backend/models"
	"github.com/lottoplay/housie-backend/services"
)

type RoomController struct {
	Mgr *services.Manager
}

func NewRoomController(mgr *services.Manager) *RoomController {
	return &RoomController{Mgr: mgr}
}

// Create opens a new room with the caller as organizer.
func (rc *RoomController) Create(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		TicketPrice float64 `json:"ticket_price"`
		MaxPlayers  int     `json:"max_players"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxPlayers <= 0 {
		req.MaxPlayers = 100
	}

	room := models.Room{
		Name:        req.Name,
		OrganizerID: currentUser(c).ID,
		TicketPrice: req.TicketPrice,
		MaxPlayers:  req.MaxPlayers,
		Status:      models.RoomWaiting,
	}
	if err := config.DB.Create(&room).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Room created successfully", "room": room})
}

type roomListing struct {
	models.Room
	OrganizerName string `json:"organizer_name"`
	PlayerCount   int64  `json:"player_count"`
}

// List returns rooms still open for play, newest first.
func (rc *RoomController) List(c *gin.Context) {
	var rooms []models.Room
	err := config.DB.Where("status IN ?", []string{models.RoomWaiting, models.RoomActive}).
		Order("created_at DESC").Find(&rooms).Error
	if err != nil {
		respondError(c, err)
		return
	}

	listings := make([]roomListing, 0, len(rooms))
	for _, room := range rooms {
		entry := roomListing{Room: room}

		var organizer models.User
		if err := config.DB.First(&organizer, room.OrganizerID).Error; err == nil {
			entry.OrganizerName = organizer.Username
		}
		config.DB.Model(&models.Ticket{}).Where("room_id = ?", room.ID).Count(&entry.PlayerCount)

		listings = append(listings, entry)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": listings})
}

// Detail returns the room, its players and a consistent snapshot of the
// live game state, winners included.
func (rc *RoomController) Detail(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var room models.Room
	if err := config.DB.First(&room, roomID).Error; err != nil {
		respondError(c, services.ErrRoomNotFound)
		return
	}

	type roomPlayer struct {
		Username string `json:"username"`
	}
	var players []roomPlayer
	config.DB.Model(&models.Ticket{}).
		Select("DISTINCT users.username").
		Joins("JOIN users ON users.id = tickets.user_id").
		Where("tickets.room_id = ?", room.ID).
		Scan(&players)

	session, err := rc.Mgr.Session(room.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":    room,
		"players": players,
		"state":   session.Snapshot(),
	})
}
