package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/lottoplay/housie-backend/housie"
	"github.com/lottoplay/housie-backend/models"
	"github.com/lottoplay/housie-backend/utils/logger"
)

// Session is the single authority for one room: it owns the number
// caller, the winners cache and the lifecycle state, and serializes
// every mutation (start, draw, claim, end) behind one mutex. Rooms run
// concurrently with each other, never within themselves.
type Session struct {
	roomID      uint
	organizerID uint

	store Store
	bc    *Broadcaster

	mu      sync.Mutex
	status  string // mirrors the room lifecycle: waiting | active | completed
	game    *models.Game
	caller  *housie.Caller
	winners []models.WinRecord
}

// NumberDrawn is the payload of a number-drawn event.
type NumberDrawn struct {
	Number        int   `json:"number"`
	CalledNumbers []int `json:"called_numbers"`
}

// WinnersList is the payload of a winners-updated event.
type WinnersList struct {
	Winners []models.WinRecord `json:"winners"`
}

// NewSession builds the authority for a room, resuming an active game
// (called sequence and winners cache) from the store if one exists.
func NewSession(room *models.Room, store Store, bc *Broadcaster) (*Session, error) {
	s := &Session{
		roomID:      room.ID,
		organizerID: room.OrganizerID,
		store:       store,
		bc:          bc,
		status:      room.Status,
	}

	if room.Status == models.RoomActive {
		game, err := store.LoadActiveGame(room.ID)
		if err != nil {
			return nil, fmt.Errorf("room %d marked active: %w", room.ID, err)
		}
		s.game = game
		s.caller = housie.NewCaller(game.CalledNumbers())
	}

	if room.Status != models.RoomWaiting {
		winners, err := store.LoadWinners(room.ID)
		if err != nil {
			return nil, err
		}
		s.winners = winners
	}

	return s, nil
}

// RoomID returns the room this session governs.
func (s *Session) RoomID() uint { return s.roomID }

// Start begins a new game. Organizer only; fails with ErrAlreadyActive
// if a game is running and ErrRoomClosed once the room has completed.
func (s *Session) Start(userID uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.organizerID {
		return nil, ErrNotAuthorized
	}
	switch s.status {
	case models.RoomActive:
		return nil, ErrAlreadyActive
	case models.RoomCompleted:
		return nil, ErrRoomClosed
	}

	game, err := s.store.CreateGame(s.roomID)
	if err != nil {
		return nil, err
	}

	s.game = game
	s.caller = housie.NewCaller(nil)
	s.winners = nil
	s.status = models.RoomActive

	logger.Infof("[Room %d] game %d started", s.roomID, game.ID)
	return game, nil
}

// Draw calls the next number. Organizer only, active game only. The
// number comes from the session's own caller; nothing a client sends
// can enter the called sequence.
func (s *Session) Draw(userID uint) (int, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.organizerID {
		return 0, nil, ErrNotAuthorized
	}
	if s.status != models.RoomActive {
		return 0, nil, ErrNoActiveGame
	}

	number, err := s.caller.Pick()
	if err != nil {
		return 0, nil, err
	}

	// Persist before committing: if the store fails, the sequence has
	// not advanced and a later draw may pick the same number again.
	called, _ := s.caller.Current()
	called = append(called, number)
	if err := s.store.AppendCalledNumber(s.game, number, called); err != nil {
		return 0, nil, err
	}
	s.caller.Commit(number)

	s.bc.Publish(s.roomID, EventNumberDrawn, NumberDrawn{Number: number, CalledNumbers: called})
	return number, called, nil
}

// Claim validates and commits a win claim. The category is re-checked
// against the authoritative called set; the asOfCount a client sends is
// a display hint only and never decides the outcome. Exactly one of two
// simultaneous claims for the same (ticket, category) succeeds.
func (s *Session) Claim(userID, ticketID uint, category housie.Category, asOfCount int) (*models.WinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.RoomActive {
		return nil, ErrNoActiveGame
	}
	if !category.Valid() {
		return nil, ErrInvalidClaim
	}

	ticket, err := s.store.LoadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RoomID != s.roomID {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != userID {
		return nil, ErrNotAuthorized
	}

	grid, err := ticket.Grid()
	if err != nil {
		return nil, err
	}

	called, _ := s.caller.Current()
	if !housie.Evaluate(grid, called).Has(category) {
		return nil, ErrInvalidClaim
	}

	for _, w := range s.winners {
		if w.TicketID == ticketID && w.WinType == string(category) {
			return nil, ErrDuplicateClaim
		}
	}

	user, err := s.store.LoadUser(userID)
	if err != nil {
		return nil, err
	}

	rec := &models.WinRecord{
		RoomID:      s.roomID,
		GameID:      s.game.ID,
		TicketID:    ticketID,
		UserID:      userID,
		Username:    user.Username,
		WinType:     string(category),
		CalledCount: len(called),
		CreatedAt:   time.Now(),
	}

	// Record insert, ticket annotation and winners cache commit together;
	// CommitWin is atomic and the cache is only appended after it returns.
	if err := s.store.CommitWin(rec); err != nil {
		return nil, err
	}
	s.winners = append(s.winners, *rec)

	logger.Infof("[Room %d] user %d won %s with ticket %d", s.roomID, userID, category, ticketID)

	s.bc.Publish(s.roomID, EventWinnerDeclared, rec)
	s.bc.Publish(s.roomID, EventWinnersUpdated, WinnersList{Winners: append([]models.WinRecord(nil), s.winners...)})
	return rec, nil
}

// End completes the game and the room. Organizer only; terminal.
func (s *Session) End(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.organizerID {
		return ErrNotAuthorized
	}
	if s.status != models.RoomActive {
		return ErrGameNotActive
	}

	if err := s.store.CompleteGame(s.roomID); err != nil {
		return err
	}

	s.bc.Publish(s.roomID, EventWinnersUpdated, WinnersList{Winners: append([]models.WinRecord(nil), s.winners...)})
	s.bc.CloseRoom(s.roomID)

	s.status = models.RoomCompleted
	s.game = nil
	s.caller = nil

	logger.Infof("[Room %d] game ended", s.roomID)
	return nil
}

// State is a consistent point-in-time view of the session.
type State struct {
	RoomID        uint               `json:"room_id"`
	Status        string             `json:"status"`
	GameID        uint               `json:"game_id,omitempty"`
	CalledNumbers []int              `json:"called_numbers"`
	CurrentNumber int                `json:"current_number"`
	Winners       []models.WinRecord `json:"winners"`
}

// Snapshot returns the session state without observing a mutation
// mid-flight.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		RoomID:        s.roomID,
		Status:        s.status,
		CalledNumbers: []int{},
		Winners:       append([]models.WinRecord(nil), s.winners...),
	}
	if s.game != nil {
		st.GameID = s.game.ID
	}
	if s.caller != nil {
		st.CalledNumbers, st.CurrentNumber = s.caller.Current()
	}
	return st
}

// Evaluate reports which categories a ticket currently satisfies, as a
// display hint for clients. It never mutates anything.
func (s *Session) Evaluate(ticket *models.Ticket) (housie.CategorySet, []int, error) {
	grid, err := ticket.Grid()
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.RoomActive {
		return nil, nil, ErrNoActiveGame
	}
	called, _ := s.caller.Current()
	return housie.Evaluate(grid, called), called, nil
}
