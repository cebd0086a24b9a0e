package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for booking storage
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Booking, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Booking, error)

	// ListDueReminders returns confirmed bookings with reminders_sent = false
	// whose appointment start falls within [from, to].
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*Booking, error)

	// MarkRemindersSent flips the reminders_sent flag. Once true it never
	// reverts, which is the sole dedupe guarantee for reminder dispatch.
	MarkRemindersSent(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository stores bookings in a mutex-guarded map.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*Booking
}

// NewInMemoryRepository creates a new in-memory booking repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings: make(map[uuid.UUID]*Booking),
	}
}

// Create persists a new booking.
func (r *InMemoryRepository) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	r.mu.Lock()
	r.bookings[b.ID] = copyBooking(b)
	r.mu.Unlock()
	return nil
}

// Get retrieves a booking by id.
func (r *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// Update overwrites a stored booking.
func (r *InMemoryRepository) Update(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrBookingNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

// ListByPatient returns a patient's bookings, most recent appointment first.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.PatientID == patientID }), nil
}

// ListByDoctor returns a doctor's bookings, most recent appointment first.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.DoctorID == doctorID }), nil
}

// ListDueReminders selects confirmed, unreminded bookings starting in [from, to].
func (r *InMemoryRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	result := r.list(func(b *Booking) bool {
		return b.Status == StatusConfirmed &&
			!b.RemindersSent &&
			!b.Start.Before(from) &&
			!b.Start.After(to)
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

// MarkRemindersSent flips the flag; a no-op if already set.
func (r *InMemoryRepository) MarkRemindersSent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.RemindersSent = true
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) list(match func(*Booking) bool) []*Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Booking
	for _, b := range r.bookings {
		if match(b) {
			result = append(result, copyBooking(b))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.After(result[j].Start) })
	return result
}

func copyBooking(b *Booking) *Booking {
	c := *b
	if b.RescheduledAt != nil {
		t := *b.RescheduledAt
		c.RescheduledAt = &t
	}
	return &c
}
