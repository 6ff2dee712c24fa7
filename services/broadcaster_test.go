package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lottoplay/housie-backend/housie"
)

// chanSub is a test subscriber backed by a buffered channel.
type chanSub struct {
	ch   chan []byte
	once sync.Once
}

func newChanSub(buf int) *chanSub {
	return &chanSub{ch: make(chan []byte, buf)}
}

func (s *chanSub) Send(msg []byte) bool {
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

func (s *chanSub) Close() {
	s.once.Do(func() { close(s.ch) })
}

// recvEvent reads one event with a timeout so tests never hang.
func recvEvent(t *testing.T, ch <-chan []byte, within time.Duration) Event {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber channel closed unexpectedly")
		}
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return Event{} // unreachable
	}
}

func TestBroadcaster_JoinLeaveIdempotent(t *testing.T) {
	b := NewBroadcaster()
	sub := newChanSub(4)

	b.Join(1, "c1", sub)
	b.Join(1, "c1", sub)
	require.Equal(t, 1, b.Count(1))

	// Leaving a room you are not in is a no-op, not an error.
	b.Leave(1, "ghost")
	b.Leave(2, "c1")
	require.Equal(t, 1, b.Count(1))

	b.Leave(1, "c1")
	b.Leave(1, "c1")
	require.Equal(t, 0, b.Count(1))
}

func TestBroadcaster_PublishScopedToRoom(t *testing.T) {
	b := NewBroadcaster()
	inRoom := newChanSub(4)
	elsewhere := newChanSub(4)

	b.Join(1, "c1", inRoom)
	b.Join(2, "c2", elsewhere)

	b.Publish(1, EventNumberDrawn, NumberDrawn{Number: 7, CalledNumbers: []int{7}})

	ev := recvEvent(t, inRoom.ch, 100*time.Millisecond)
	require.Equal(t, EventNumberDrawn, ev.Type)
	require.Equal(t, uint(1), ev.RoomID)

	select {
	case msg := <-elsewhere.ch:
		t.Fatalf("subscriber of another room got event: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_SlowSubscriberDropped(t *testing.T) {
	b := NewBroadcaster()
	slow := newChanSub(1)
	b.Join(1, "slow", slow)

	b.Publish(1, EventNumberDrawn, NumberDrawn{Number: 1})
	b.Publish(1, EventNumberDrawn, NumberDrawn{Number: 2}) // outbox full

	require.Equal(t, 0, b.Count(1))
}

func TestBroadcaster_CloseRoomClosesSubscribers(t *testing.T) {
	b := NewBroadcaster()
	sub := newChanSub(4)
	b.Join(1, "c1", sub)

	b.CloseRoom(1)
	require.Equal(t, 0, b.Count(1))

	_, ok := <-sub.ch
	require.False(t, ok, "channel should be closed")
}

func TestSession_EventOrderWithinRoom(t *testing.T) {
	s, _, ticketID := newTestSession(t)
	sub := newChanSub(256)
	s.bc.Join(s.RoomID(), "watcher", sub)

	_, err := s.Start(organizerID)
	require.NoError(t, err)
	drawAll(t, s)

	_, err = s.Claim(playerID, ticketID, housie.FullHouse, housie.MaxNumber)
	require.NoError(t, err)

	// Every draw event precedes the win events it made possible, and
	// the winner-declared precedes the winners-updated.
	kinds := []EventKind{}
	for i := 0; i < housie.MaxNumber+2; i++ {
		kinds = append(kinds, recvEvent(t, sub.ch, 100*time.Millisecond).Type)
	}
	for i := 0; i < housie.MaxNumber; i++ {
		require.Equal(t, EventNumberDrawn, kinds[i], "event %d", i)
	}
	require.Equal(t, EventWinnerDeclared, kinds[housie.MaxNumber])
	require.Equal(t, EventWinnersUpdated, kinds[housie.MaxNumber+1])
}

func TestSession_EndClosesRoomSubscribers(t *testing.T) {
	s, _, _ := newTestSession(t)
	sub := newChanSub(256)
	s.bc.Join(s.RoomID(), "watcher", sub)

	_, err := s.Start(organizerID)
	require.NoError(t, err)
	require.NoError(t, s.End(organizerID))

	require.Equal(t, 0, s.bc.Count(s.RoomID()))

	// The final winners-updated goes out before teardown.
	ev := recvEvent(t, sub.ch, 100*time.Millisecond)
	require.Equal(t, EventWinnersUpdated, ev.Type)

	var payload WinnersList
	raw, err := json.Marshal(ev.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Empty(t, payload.Winners)
}
