package models

import "time"

// Room lifecycle states. Transitions are one-directional:
// waiting -> active -> completed.
const (
	RoomWaiting   = "waiting"
	RoomActive    = "active"
	RoomCompleted = "completed"
)

type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	TicketPrice float64   `json:"ticket_price"`
	MaxPlayers  int       `gorm:"default:100" json:"max_players"`
	Status      string    `gorm:"default:waiting" json:"status"` // waiting | active | completed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
