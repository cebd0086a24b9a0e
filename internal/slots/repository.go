package slots

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for slot storage.
//
// Reserve and Release are the slot-claim primitives used by the booking
// lifecycle: Reserve is exclusive (at most one active booking per slot),
// Release is idempotent.
type Repository interface {
	Create(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (*Slot, error)
	Get(ctx context.Context, id uuid.UUID) (*Slot, error)
	ListAvailable(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error)
	Reserve(ctx context.Context, id uuid.UUID) (*Slot, error)
	Release(ctx context.Context, id uuid.UUID) (*Slot, error)
}

// InMemoryRepository stores slots in a mutex-guarded map.
//
// The check-then-set inside Reserve runs under a single lock, so there is no
// interleaving point between reading is_available and flipping it.
type InMemoryRepository struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*Slot
}

// NewInMemoryRepository creates a new in-memory slot repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		slots: make(map[uuid.UUID]*Slot),
	}
}

// Create adds a new available slot for a doctor.
func (r *InMemoryRepository) Create(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (*Slot, error) {
	if err := ValidateDateTime(date, timeOfDay); err != nil {
		return nil, err
	}

	slot := &Slot{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		Date:        date,
		Time:        timeOfDay,
		IsAvailable: true,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.slots[slot.ID] = slot
	r.mu.Unlock()

	return copySlot(slot), nil
}

// Get retrieves a slot by id.
func (r *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return copySlot(slot), nil
}

// ListAvailable returns a doctor's open slots ordered by (date, time) ascending.
func (r *InMemoryRepository) ListAvailable(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	r.mu.RLock()
	var result []*Slot
	for _, slot := range r.slots {
		if slot.DoctorID == doctorID && slot.IsAvailable {
			result = append(result, copySlot(slot))
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Time < result[j].Time
	})
	return result, nil
}

// Reserve flips a slot to unavailable. Fails with ErrSlotTaken if already claimed.
func (r *InMemoryRepository) Reserve(ctx context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if !slot.IsAvailable {
		return nil, ErrSlotTaken
	}
	slot.IsAvailable = false
	return copySlot(slot), nil
}

// Release flips a slot back to available. Releasing an already-available
// slot is a no-op success.
func (r *InMemoryRepository) Release(ctx context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	slot.IsAvailable = true
	return copySlot(slot), nil
}

func copySlot(s *Slot) *Slot {
	c := *s
	return &c
}
