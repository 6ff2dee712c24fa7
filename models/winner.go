package models

import "time"

// WinRecord is one validated win. The unique index enforces at most one
// record per (room, ticket, category) even under concurrent claims.
type WinRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      uint      `gorm:"not null;uniqueIndex:idx_win_room_ticket_type" json:"room_id"`
	GameID      uint      `gorm:"not null;index" json:"game_id"`
	TicketID    uint      `gorm:"not null;uniqueIndex:idx_win_room_ticket_type" json:"ticket_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	Username    string    `json:"username"`
	WinType     string    `gorm:"not null;uniqueIndex:idx_win_room_ticket_type" json:"win_type"`
	CalledCount int       `json:"called_count"` // called sequence length at validation time
	CreatedAt   time.Time `json:"created_at"`
}
