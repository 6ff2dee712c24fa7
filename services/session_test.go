package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lottoplay/housie-backend/housie"
	"github.com/lottoplay/housie-backend/models"
)

// fakeStore is an in-memory Store for session tests. Its commit methods
// mirror the transactional guarantees of the real one.
type fakeStore struct {
	mu      sync.Mutex
	rooms   map[uint]*models.Room
	users   map[uint]*models.User
	tickets map[uint]*models.Ticket
	games   map[uint]*models.Game
	winners []models.WinRecord
	nextID  uint

	// appendErr, when set, fails the next AppendCalledNumber once.
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:   map[uint]*models.Room{},
		users:   map[uint]*models.User{},
		tickets: map[uint]*models.Ticket{},
		games:   map[uint]*models.Game{},
		nextID:  1,
	}
}

func (f *fakeStore) LoadRoom(id uint) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (f *fakeStore) LoadUser(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.users[id]
	return &cp, nil
}

func (f *fakeStore) LoadTicket(id uint) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeStore) LoadActiveGame(roomID uint) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.RoomID == roomID && g.Status == models.GameActive {
			cp := *g
			return &cp, nil
		}
	}
	return nil, ErrNoActiveGame
}

func (f *fakeStore) LoadWinners(roomID uint) ([]models.WinRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WinRecord{}
	for _, w := range f.winners {
		if w.RoomID == roomID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGame(roomID uint) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.RoomID == roomID && g.Status == models.GameActive {
			return nil, ErrAlreadyActive
		}
	}
	game := &models.Game{ID: f.nextID, RoomID: roomID, Status: models.GameActive, StartedAt: time.Now()}
	game.SetCalledNumbers([]int{})
	f.nextID++
	f.games[game.ID] = game
	f.rooms[roomID].Status = models.RoomActive
	return game, nil
}

func (f *fakeStore) AppendCalledNumber(game *models.Game, number int, called []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		err := f.appendErr
		f.appendErr = nil
		return err
	}
	g := f.games[game.ID]
	g.SetCalledNumbers(called)
	g.CurrentNumber = number
	return nil
}

func (f *fakeStore) CommitWin(rec *models.WinRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.winners {
		if w.RoomID == rec.RoomID && w.TicketID == rec.TicketID && w.WinType == rec.WinType {
			return ErrDuplicateClaim
		}
	}
	rec.ID = f.nextID
	f.nextID++
	f.winners = append(f.winners, *rec)

	ticket := f.tickets[rec.TicketID]
	ticket.IsWinner = true
	if ticket.WinType == nil {
		wt := rec.WinType
		ticket.WinType = &wt
	}
	return nil
}

func (f *fakeStore) CompleteGame(roomID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.RoomID == roomID && g.Status == models.GameActive {
			g.Status = models.GameCompleted
		}
	}
	f.rooms[roomID].Status = models.RoomCompleted
	return nil
}

func (f *fakeStore) PurchaseTicket(userID uint, room *models.Room, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[userID]
	if user.Balance < room.TicketPrice {
		return ErrInsufficientBalance
	}
	count := 0
	for _, t := range f.tickets {
		if t.RoomID == room.ID {
			count++
			if t.UserID == userID {
				return ErrAlreadyJoined
			}
		}
	}
	if count >= room.MaxPlayers {
		return ErrRoomFull
	}
	user.Balance -= room.TicketPrice
	ticket.ID = f.nextID
	f.nextID++
	f.tickets[ticket.ID] = ticket
	return nil
}

const (
	organizerID = uint(1)
	playerID    = uint(2)
	rivalID     = uint(3)
)

// newTestSession sets up one waiting room with a player holding a valid
// ticket, and returns the session plus the ticket id.
func newTestSession(t *testing.T) (*Session, *fakeStore, uint) {
	t.Helper()

	store := newFakeStore()
	store.users[organizerID] = &models.User{ID: organizerID, Username: "org", Balance: 100}
	store.users[playerID] = &models.User{ID: playerID, Username: "player", Balance: 100}
	store.users[rivalID] = &models.User{ID: rivalID, Username: "rival", Balance: 100}
	store.rooms[10] = &models.Room{ID: 10, Name: "Friday Night", OrganizerID: organizerID, Status: models.RoomWaiting, MaxPlayers: 100}

	grid, err := housie.NewGrid()
	require.NoError(t, err)
	ticket := &models.Ticket{ID: 50, UserID: playerID, RoomID: 10}
	ticket.SetGrid(grid)
	store.tickets[50] = ticket

	room, err := store.LoadRoom(10)
	require.NoError(t, err)
	s, err := NewSession(room, store, NewBroadcaster())
	require.NoError(t, err)
	return s, store, 50
}

// drawAll exhausts the caller so every category is satisfied for every
// ticket in the room.
func drawAll(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < housie.MaxNumber; i++ {
		_, _, err := s.Draw(organizerID)
		require.NoError(t, err)
	}
}

func TestSession_LifecycleGating(t *testing.T) {
	s, _, ticketID := newTestSession(t)

	_, _, err := s.Draw(organizerID)
	require.ErrorIs(t, err, ErrNoActiveGame)

	_, err = s.Claim(playerID, ticketID, housie.EarlyFive, 0)
	require.ErrorIs(t, err, ErrNoActiveGame)

	require.ErrorIs(t, s.End(organizerID), ErrGameNotActive)

	_, err = s.Start(playerID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	game, err := s.Start(organizerID)
	require.NoError(t, err)
	require.NotNil(t, game)

	_, err = s.Start(organizerID)
	require.ErrorIs(t, err, ErrAlreadyActive)

	require.NoError(t, s.End(organizerID))

	// Completed is terminal.
	_, err = s.Start(organizerID)
	require.ErrorIs(t, err, ErrRoomClosed)
	_, _, err = s.Draw(organizerID)
	require.ErrorIs(t, err, ErrNoActiveGame)
}

func TestSession_DrawOrganizerOnly(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	_, _, err = s.Draw(playerID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	require.ErrorIs(t, s.End(playerID), ErrNotAuthorized)
}

func TestSession_DrawUniqueUntilExhausted(t *testing.T) {
	s, store, _ := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := 0; i < housie.MaxNumber; i++ {
		n, called, err := s.Draw(organizerID)
		require.NoError(t, err)
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true
		require.Len(t, called, i+1)
	}

	_, _, err = s.Draw(organizerID)
	require.ErrorIs(t, err, housie.ErrExhausted)

	// The full sequence was persisted along the way.
	game, err := store.LoadActiveGame(10)
	require.NoError(t, err)
	require.Len(t, game.CalledNumbers(), housie.MaxNumber)
}

func TestSession_DrawFailedPersistLeavesSequenceUnchanged(t *testing.T) {
	s, store, _ := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	store.mu.Lock()
	store.appendErr = errors.New("connection reset")
	store.mu.Unlock()

	_, _, err = s.Draw(organizerID)
	require.EqualError(t, err, "connection reset")

	// The sequence did not advance in memory or in the store.
	require.Empty(t, s.Snapshot().CalledNumbers)
	game, err := store.LoadActiveGame(10)
	require.NoError(t, err)
	require.Empty(t, game.CalledNumbers())

	// The next draw starts clean and persists as usual.
	n, called, err := s.Draw(organizerID)
	require.NoError(t, err)
	require.Equal(t, []int{n}, called)
	require.Equal(t, []int{n}, s.Snapshot().CalledNumbers)
	game, err = store.LoadActiveGame(10)
	require.NoError(t, err)
	require.Equal(t, []int{n}, game.CalledNumbers())
}

func TestSession_ClaimRejectedWhenNotSatisfied(t *testing.T) {
	s, _, ticketID := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	// Nothing called yet: no category can hold.
	_, err = s.Claim(playerID, ticketID, housie.FullHouse, 0)
	require.ErrorIs(t, err, ErrInvalidClaim)

	_, err = s.Claim(playerID, ticketID, housie.Category("Four Corners"), 0)
	require.ErrorIs(t, err, ErrInvalidClaim)
}

func TestSession_ClaimOwnershipChecks(t *testing.T) {
	s, store, ticketID := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)
	drawAll(t, s)

	_, err = s.Claim(rivalID, ticketID, housie.FullHouse, housie.MaxNumber)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = s.Claim(playerID, 999, housie.FullHouse, housie.MaxNumber)
	require.ErrorIs(t, err, ErrTicketNotFound)

	// A ticket from another room is invisible to this session.
	other := &models.Ticket{ID: 60, UserID: playerID, RoomID: 11}
	grid, err := housie.NewGrid()
	require.NoError(t, err)
	other.SetGrid(grid)
	store.mu.Lock()
	store.tickets[60] = other
	store.mu.Unlock()

	_, err = s.Claim(playerID, 60, housie.FullHouse, housie.MaxNumber)
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestSession_ClaimCommitsRecordAndMarksTicket(t *testing.T) {
	s, store, ticketID := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)
	drawAll(t, s)

	rec, err := s.Claim(playerID, ticketID, housie.TopLine, housie.MaxNumber)
	require.NoError(t, err)
	require.Equal(t, string(housie.TopLine), rec.WinType)
	require.Equal(t, housie.MaxNumber, rec.CalledCount)
	require.Equal(t, "player", rec.Username)

	ticket, err := store.LoadTicket(ticketID)
	require.NoError(t, err)
	require.True(t, ticket.IsWinner)
	require.Equal(t, string(housie.TopLine), *ticket.WinType)

	// A different category still gets its own record, but the headline
	// win type on the ticket stays the first one.
	rec2, err := s.Claim(playerID, ticketID, housie.FullHouse, housie.MaxNumber)
	require.NoError(t, err)
	require.Equal(t, string(housie.FullHouse), rec2.WinType)

	ticket, err = store.LoadTicket(ticketID)
	require.NoError(t, err)
	require.Equal(t, string(housie.TopLine), *ticket.WinType)

	require.Len(t, s.Snapshot().Winners, 2)
}

func TestSession_ClaimIdempotence(t *testing.T) {
	s, _, ticketID := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)
	drawAll(t, s)

	_, err = s.Claim(playerID, ticketID, housie.FullHouse, housie.MaxNumber)
	require.NoError(t, err)

	_, err = s.Claim(playerID, ticketID, housie.FullHouse, housie.MaxNumber)
	require.ErrorIs(t, err, ErrDuplicateClaim)

	require.Len(t, s.Snapshot().Winners, 1)
}

func TestSession_ConcurrentClaimsOneWinner(t *testing.T) {
	s, store, ticketID := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)
	drawAll(t, s)

	const claimers = 8
	errs := make(chan error, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Claim(playerID, ticketID, housie.FullHouse, housie.MaxNumber)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		default:
			require.ErrorIs(t, err, ErrDuplicateClaim)
			dup++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, claimers-1, dup)

	winners, err := store.LoadWinners(10)
	require.NoError(t, err)
	require.Len(t, winners, 1)
}

func TestSession_SnapshotConsistentDuringDraws(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < housie.MaxNumber; i++ {
			if _, _, err := s.Draw(organizerID); err != nil {
				return
			}
		}
	}()

	// Readers run against concurrent draws; every snapshot must be a
	// duplicate-free prefix of the called sequence.
	for i := 0; i < 50; i++ {
		st := s.Snapshot()
		seen := map[int]bool{}
		for _, n := range st.CalledNumbers {
			require.False(t, seen[n])
			seen[n] = true
		}
		if len(st.CalledNumbers) > 0 {
			require.Equal(t, st.CalledNumbers[len(st.CalledNumbers)-1], st.CurrentNumber)
		}
	}
	<-done
}

func TestSession_ResumesActiveGameFromStore(t *testing.T) {
	s, store, _ := newTestSession(t)
	_, err := s.Start(organizerID)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, _, err := s.Draw(organizerID)
		require.NoError(t, err)
	}
	before := s.Snapshot()

	// A fresh session (process restart) rebuilds from stored state.
	room, err := store.LoadRoom(10)
	require.NoError(t, err)
	resumed, err := NewSession(room, store, NewBroadcaster())
	require.NoError(t, err)

	after := resumed.Snapshot()
	require.Equal(t, models.RoomActive, after.Status)
	require.Equal(t, before.CalledNumbers, after.CalledNumbers)

	// Already-called numbers are never re-drawn after resume.
	called := map[int]bool{}
	for _, n := range after.CalledNumbers {
		called[n] = true
	}
	n, _, err := resumed.Draw(organizerID)
	require.NoError(t, err)
	require.False(t, called[n])
}

func TestManager_SameSessionPerRoom(t *testing.T) {
	store := newFakeStore()
	store.users[organizerID] = &models.User{ID: organizerID, Username: "org"}
	store.rooms[10] = &models.Room{ID: 10, OrganizerID: organizerID, Status: models.RoomWaiting}

	m := NewManager(store, NewBroadcaster())

	s1, err := m.Session(10)
	require.NoError(t, err)
	s2, err := m.Session(10)
	require.NoError(t, err)
	require.Same(t, s1, s2)

	_, err = m.Session(99)
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = s1.Start(organizerID)
	require.NoError(t, err)
	require.NoError(t, m.End(10, organizerID))

	// The terminal session is forgotten; a new lookup rebuilds from the
	// store and sees the completed room.
	s3, err := m.Session(10)
	require.NoError(t, err)
	require.NotSame(t, s1, s3)
	require.Equal(t, models.RoomCompleted, s3.Snapshot().Status)
}
