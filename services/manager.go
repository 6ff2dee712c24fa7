package services

import (
	"sync"
)

// Manager hands out the one Session per room. Sessions are created
// lazily from the store and torn down once their room completes.
type Manager struct {
	store Store
	bc    *Broadcaster

	mu       sync.Mutex
	sessions map[uint]*Session
}

func NewManager(store Store, bc *Broadcaster) *Manager {
	return &Manager{
		store:    store,
		bc:       bc,
		sessions: make(map[uint]*Session),
	}
}

// Broadcaster exposes the fan-out layer for the websocket handler.
func (m *Manager) Broadcaster() *Broadcaster { return m.bc }

// Session returns the room's session, creating it from stored state on
// first use.
func (m *Manager) Session(roomID uint) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[roomID]; ok {
		return s, nil
	}

	room, err := m.store.LoadRoom(roomID)
	if err != nil {
		return nil, err
	}

	s, err := NewSession(room, m.store, m.bc)
	if err != nil {
		return nil, err
	}
	m.sessions[roomID] = s
	return s, nil
}

// End completes the room's game and forgets the session; the lifecycle
// is terminal so there is nothing left to govern.
func (m *Manager) End(roomID, userID uint) error {
	s, err := m.Session(roomID)
	if err != nil {
		return err
	}
	if err := s.End(userID); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, roomID)
	m.mu.Unlock()
	return nil
}
