// Package video hosts the websocket signaling rooms for consultations. A room
// carries at most two peers (the patient and the doctor) and relays their
// signaling payloads verbatim; media itself flows peer-to-peer.
package video

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// ErrRoomFull is returned when a third connection tries to join a room.
var ErrRoomFull = errors.New("video: room already has two participants")

const peerBuffer = 32

// Peer is one side of a consultation room.
type Peer struct {
	room *Room
	send chan []byte
}

// Send returns the channel of payloads relayed from the other peer. The
// channel is closed when the peer leaves or the room shuts down.
func (p *Peer) Send() <-chan []byte {
	return p.send
}

// Relay forwards a signaling payload to the other peer, if one is connected.
// Payloads sent while alone in the room are dropped.
func (p *Peer) Relay(payload []byte) {
	p.room.relay(p, payload)
}

// Room relays signaling between the two peers of a single booking.
type Room struct {
	bookingID uuid.UUID

	mu    sync.Mutex
	peers []*Peer
}

func (r *Room) relay(from *Peer, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.peers {
		if p == from {
			continue
		}
		select {
		case p.send <- payload:
		default:
			// Slow consumer; drop rather than stall the sender.
		}
	}
}

// Manager tracks the active room per booking.
type Manager struct {
	logger *logging.Logger

	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewManager creates an empty room manager.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{logger: logger, rooms: make(map[uuid.UUID]*Room)}
}

// Join attaches a peer to the booking's room, creating the room on first
// join. A room holds at most two peers.
func (m *Manager) Join(bookingID uuid.UUID) (*Peer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[bookingID]
	if !ok {
		room = &Room{bookingID: bookingID}
		m.rooms[bookingID] = room
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if len(room.peers) >= 2 {
		return nil, ErrRoomFull
	}

	peer := &Peer{room: room, send: make(chan []byte, peerBuffer)}
	room.peers = append(room.peers, peer)
	m.logger.Info("peer joined consultation room", "booking_id", bookingID, "peers", len(room.peers))
	return peer, nil
}

// Leave detaches a peer and removes the room once it empties.
func (m *Manager) Leave(bookingID uuid.UUID, peer *Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[bookingID]
	if !ok {
		return
	}

	room.mu.Lock()
	for i, p := range room.peers {
		if p == peer {
			room.peers = append(room.peers[:i], room.peers[i+1:]...)
			close(p.send)
			break
		}
	}
	empty := len(room.peers) == 0
	room.mu.Unlock()

	if empty {
		delete(m.rooms, bookingID)
	}
	m.logger.Info("peer left consultation room", "booking_id", bookingID)
}

// Occupancy reports the number of peers currently in the booking's room.
func (m *Manager) Occupancy(bookingID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[bookingID]
	if !ok {
		return 0
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return len(room.peers)
}
