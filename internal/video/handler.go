package video

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// JoinChecker decides whether a booking can be joined right now. Satisfied by
// the bookings service.
type JoinChecker interface {
	CanJoin(ctx context.Context, id uuid.UUID, now time.Time) (*bookings.Booking, error)
}

// Handler upgrades eligible join requests to signaling websockets.
type Handler struct {
	checker  JoinChecker
	rooms    *Manager
	upgrader websocket.Upgrader
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new video room handler.
func NewHandler(checker JoinChecker, rooms *Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		checker: checker,
		rooms:   rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients come from the separately-hosted frontend.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the handler's clock (for testing).
func (h *Handler) WithClock(now func() time.Time) *Handler {
	if now != nil {
		h.now = now
	}
	return h
}

// Join handles GET /api/bookings/{bookingID}/room requests. Eligibility is
// checked before the upgrade so rejected callers get a proper HTTP status.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	booking, err := h.checker.CanJoin(r.Context(), id, h.now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	peer, err := h.rooms.Join(booking.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.rooms.Leave(booking.ID, peer)
		h.logger.Warn("websocket upgrade failed", "booking_id", booking.ID, "error", err)
		return
	}

	h.serve(conn, booking.ID, peer)
}

func (h *Handler) serve(conn *websocket.Conn, bookingID uuid.UUID, peer *Peer) {
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msgType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
				continue
			}
			peer.Relay(payload)
		}
	}()

	for {
		select {
		case payload, ok := <-peer.Send():
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.rooms.Leave(bookingID, peer)
				return
			}
		case <-done:
			h.rooms.Leave(bookingID, peer)
			return
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, bookings.ErrJoinWindow), errors.Is(err, bookings.ErrNotModifiable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("join eligibility check failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
