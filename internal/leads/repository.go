package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows and pages admin lead listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// InMemoryRepository stores leads in a process-local map. Used in tests and
// store-less development runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create assigns an id and timestamp and stores the lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored := *lead
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()

	return &stored, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	return lead, nil
}

// List returns leads newest first, optionally filtered by status.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	var matched []*Lead
	for _, lead := range r.leads {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		matched = append(matched, lead)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateStatus transitions a stored lead to the given status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	lead.Status = status
	return nil
}
