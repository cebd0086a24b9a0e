package doctors

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for doctor storage
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context) ([]*Doctor, error)
}

// InMemoryRepository stores doctors in a mutex-guarded map.
type InMemoryRepository struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]*Doctor
}

// NewInMemoryRepository creates a new in-memory doctor repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{doctors: make(map[uuid.UUID]*Doctor)}
}

// Create persists a new doctor.
func (r *InMemoryRepository) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	c := *d
	r.doctors[d.ID] = &c
	return nil
}

// Get retrieves a doctor by id.
func (r *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	c := *d
	return &c, nil
}

// Update overwrites a stored doctor.
func (r *InMemoryRepository) Update(ctx context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	d.UpdatedAt = time.Now().UTC()
	c := *d
	r.doctors[d.ID] = &c
	return nil
}

// List returns all doctors ordered by last name, then first name.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		c := *d
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}
