package models

import "time"

type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Method    string    `gorm:"default:wallet" json:"method"`
	Status    string    `gorm:"default:completed" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
