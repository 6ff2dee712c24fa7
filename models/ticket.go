package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/lottoplay/housie-backend/housie"
)

// Ticket is immutable after purchase except for the winner annotation
// written when a win claim commits.
type Ticket struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_ticket_user_room" json:"user_id"`
	RoomID    uint           `gorm:"not null;uniqueIndex:idx_ticket_user_room" json:"room_id"`
	Numbers   datatypes.JSON `json:"numbers"` // 3x9 grid, 0 = blank
	IsWinner  bool           `json:"is_winner"`
	WinType   *string        `json:"win_type,omitempty"` // headline win, first category only
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Grid decodes the stored grid. The blob is validated once here, at the
// persistence boundary; everything past it works with the typed grid.
func (t *Ticket) Grid() (housie.Grid, error) {
	var g housie.Grid
	if err := json.Unmarshal(t.Numbers, &g); err != nil {
		return housie.Grid{}, fmt.Errorf("ticket %d: decoding grid: %w", t.ID, err)
	}
	if err := g.Validate(); err != nil {
		return housie.Grid{}, fmt.Errorf("ticket %d: %w", t.ID, err)
	}
	return g, nil
}

// SetGrid encodes the grid for storage.
func (t *Ticket) SetGrid(g housie.Grid) {
	b, _ := json.Marshal(g)
	t.Numbers = datatypes.JSON(b)
}
