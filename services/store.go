package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lottoplay/housie-backend/models"
)

// Store is the persistence collaborator for room sessions. The commit
// methods are atomic: either every side effect lands or none does.
type Store interface {
	LoadRoom(id uint) (*models.Room, error)
	LoadUser(id uint) (*models.User, error)
	LoadTicket(id uint) (*models.Ticket, error)
	LoadActiveGame(roomID uint) (*models.Game, error)
	LoadWinners(roomID uint) ([]models.WinRecord, error)

	// CreateGame inserts a new active game and flips the room to active,
	// failing with ErrAlreadyActive if the room already has one.
	CreateGame(roomID uint) (*models.Game, error)

	// AppendCalledNumber persists the called sequence after a draw.
	AppendCalledNumber(game *models.Game, number int, called []int) error

	// CommitWin inserts the record and marks the ticket as a winner in
	// one transaction. Fails with ErrDuplicateClaim if a record for the
	// same (room, ticket, category) already exists.
	CommitWin(rec *models.WinRecord) error

	// CompleteGame flips the room's active game and the room itself to
	// completed in one transaction.
	CompleteGame(roomID uint) error

	// PurchaseTicket debits the wallet, inserts the ticket and records
	// the payment in one transaction.
	PurchaseTicket(userID uint, room *models.Room, ticket *models.Ticket) error
}

// GormStore backs Store with Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadRoom(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *GormStore) LoadUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) LoadTicket(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) LoadActiveGame(roomID uint) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("room_id = ? AND status = ?", roomID, models.GameActive).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveGame
		}
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) LoadWinners(roomID uint) ([]models.WinRecord, error) {
	var winners []models.WinRecord
	err := s.db.Where("room_id = ?", roomID).Order("created_at ASC").Find(&winners).Error
	return winners, err
}

func (s *GormStore) CreateGame(roomID uint) (*models.Game, error) {
	game := &models.Game{
		RoomID:    roomID,
		Status:    models.GameActive,
		StartedAt: time.Now(),
	}
	game.SetCalledNumbers([]int{})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Game
		err := tx.Where("room_id = ? AND status = ?", roomID, models.GameActive).First(&existing).Error
		if err == nil {
			return ErrAlreadyActive
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(game).Error; err != nil {
			return err
		}
		return tx.Model(&models.Room{}).Where("id = ?", roomID).
			Update("status", models.RoomActive).Error
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *GormStore) AppendCalledNumber(game *models.Game, number int, called []int) error {
	game.SetCalledNumbers(called)
	game.CurrentNumber = number
	return s.db.Model(game).Updates(map[string]interface{}{
		"called_json":    game.CalledJSON,
		"current_number": number,
	}).Error
}

func (s *GormStore) CommitWin(rec *models.WinRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			// The unique index on (room, ticket, win_type) resolves the
			// race between simultaneous claims: one insert wins.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateClaim
			}
			return err
		}

		// First win sets the headline win type; later categories keep it.
		return tx.Model(&models.Ticket{}).Where("id = ?", rec.TicketID).
			Updates(map[string]interface{}{
				"is_winner": true,
				"win_type":  gorm.Expr("COALESCE(win_type, ?)", rec.WinType),
			}).Error
	})
}

func (s *GormStore) CompleteGame(roomID uint) error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Game{}).
			Where("room_id = ? AND status = ?", roomID, models.GameActive).
			Updates(map[string]interface{}{"status": models.GameCompleted, "ended_at": now}).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Room{}).Where("id = ?", roomID).
			Update("status", models.RoomCompleted).Error
	})
}

func (s *GormStore) PurchaseTicket(userID uint, room *models.Room, ticket *models.Ticket) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if user.Balance < room.TicketPrice {
			return ErrInsufficientBalance
		}

		var count int64
		if err := tx.Model(&models.Ticket{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(room.MaxPlayers) {
			return ErrRoomFull
		}

		user.Balance -= room.TicketPrice
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if err := tx.Create(ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}

		payment := models.Payment{
			UserID: userID,
			RoomID: room.ID,
			Amount: room.TicketPrice,
			Method: "wallet",
			Status: "completed",
		}
		return tx.Create(&payment).Error
	})
}
