package services

import (
	"encoding/json"
	"sync"

	"github.com/lottoplay/housie-backend/utils/logger"
)

// EventKind names the room events pushed to subscribers.
type EventKind string

const (
	EventNumberDrawn    EventKind = "number-drawn"
	EventWinnerDeclared EventKind = "winner-declared"
	EventWinnersUpdated EventKind = "winners-updated"
)

// Event is the envelope every room subscriber receives.
type Event struct {
	Type    EventKind   `json:"type"`
	RoomID  uint        `json:"room_id"`
	Payload interface{} `json:"payload"`
}

// Subscriber is a room listener. Send must not block; it reports false
// when the listener cannot keep up.
type Subscriber interface {
	Send(msg []byte) bool
	Close()
}

// Broadcaster fans room events out to subscribers. Join and Leave are
// idempotent; joining twice replaces nothing, leaving a room you are
// not in is a no-op.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[uint]map[string]Subscriber // roomID -> subscriberID -> listener
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint]map[string]Subscriber)}
}

func (b *Broadcaster) Join(roomID uint, id string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[string]Subscriber)
	}
	if _, ok := b.subs[roomID][id]; ok {
		return
	}
	b.subs[roomID][id] = sub
}

func (b *Broadcaster) Leave(roomID uint, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs[roomID], id)
	if len(b.subs[roomID]) == 0 {
		delete(b.subs, roomID)
	}
}

// Publish delivers the event to every current subscriber of the room.
// A subscriber whose outbox is full is dropped, the way a dead websocket
// would be.
func (b *Broadcaster) Publish(roomID uint, kind EventKind, payload interface{}) {
	msg, err := json.Marshal(Event{Type: kind, RoomID: roomID, Payload: payload})
	if err != nil {
		logger.Errorf("[Room %d] encoding %s event: %v", roomID, kind, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs[roomID] {
		if !sub.Send(msg) {
			logger.Warnf("[Room %d] dropping slow subscriber %s", roomID, id)
			sub.Close()
			delete(b.subs[roomID], id)
		}
	}
}

// CloseRoom closes every subscriber of the room and forgets them.
// Called when a room completes.
func (b *Broadcaster) CloseRoom(roomID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[roomID] {
		sub.Close()
	}
	delete(b.subs, roomID)
}

// Count returns the number of current subscribers of a room.
func (b *Broadcaster) Count(roomID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[roomID])
}
