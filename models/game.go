package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	GameActive    = "active"
	GameCompleted = "completed"
)

type Game struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	RoomID        uint           `gorm:"not null;index" json:"room_id"`
	Status        string         `gorm:"default:active" json:"status"` // active | completed
	CalledJSON    datatypes.JSON `json:"called_numbers"`               // drawn numbers, in call order
	CurrentNumber int            `json:"current_number"`
	StartedAt     time.Time      `json:"started_at"`
	EndedAt       *time.Time     `json:"ended_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CalledNumbers decodes the stored called sequence. A missing or empty
// column decodes as an empty sequence.
func (g *Game) CalledNumbers() []int {
	if len(g.CalledJSON) == 0 {
		return []int{}
	}
	var nums []int
	if err := json.Unmarshal(g.CalledJSON, &nums); err != nil {
		return []int{}
	}
	return nums
}

// SetCalledNumbers encodes the called sequence for storage.
func (g *Game) SetCalledNumbers(nums []int) {
	b, _ := json.Marshal(nums)
	g.CalledJSON = datatypes.JSON(b)
}
