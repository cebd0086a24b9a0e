package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

var (
	// ErrFeedbackExists is returned on a second submission for the same booking
	ErrFeedbackExists = errors.New("feedback already submitted")

	// ErrFeedbackNotFound is returned when no feedback exists for the booking
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrInvalidRating is returned for a rating outside 1..5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNotCompleted is returned when the consultation has not happened yet
	ErrNotCompleted = errors.New("booking is not completed")
)

// Feedback is a patient's one-off review of a completed consultation.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for feedback storage
type Repository interface {
	// Create persists feedback; at most one record per booking ever exists.
	Create(ctx context.Context, f *Feedback) error
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Feedback, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Feedback, error)
}

// InMemoryRepository stores feedback in a mutex-guarded map keyed by booking.
type InMemoryRepository struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID]*Feedback
}

// NewInMemoryRepository creates a new in-memory feedback repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byBooking: make(map[uuid.UUID]*Feedback)}
}

// Create enforces one-per-booking under the lock.
func (r *InMemoryRepository) Create(ctx context.Context, f *Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byBooking[f.BookingID]; ok {
		return ErrFeedbackExists
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now().UTC()
	c := *f
	r.byBooking[f.BookingID] = &c
	return nil
}

// GetByBooking returns the feedback for a booking, if any.
func (r *InMemoryRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byBooking[bookingID]
	if !ok {
		return nil, ErrFeedbackNotFound
	}
	c := *f
	return &c, nil
}

// ListByDoctor returns a doctor's feedback, newest first.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Feedback
	for _, f := range r.byBooking {
		if f.DoctorID == doctorID {
			c := *f
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Service validates and records consultation feedback.
type Service struct {
	repo     Repository
	bookings bookings.Repository
	logger   *logging.Logger
}

// NewService constructs a feedback service.
func NewService(repo Repository, bookingRepo bookings.Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, bookings: bookingRepo, logger: logger}
}

// Submit records feedback for a completed booking. A second submission for
// the same booking fails with ErrFeedbackExists and changes nothing.
func (s *Service) Submit(ctx context.Context, bookingID uuid.UUID, rating int, comment string) (*Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookings.StatusCompleted {
		return nil, ErrNotCompleted
	}

	f := &Feedback{
		ID:        uuid.New(),
		BookingID: bookingID,
		DoctorID:  booking.DoctorID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("feedback: submit: %w", err)
	}

	s.logger.Info("feedback submitted", "booking_id", bookingID, "rating", rating)
	return f, nil
}

// GetByBooking returns the feedback for a booking.
func (s *Service) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Feedback, error) {
	return s.repo.GetByBooking(ctx, bookingID)
}

// ListByDoctor returns a doctor's feedback.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Feedback, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}
