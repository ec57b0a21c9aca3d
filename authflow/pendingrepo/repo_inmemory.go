package pendingrepo

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrEmptyState    = errors.New("state cannot be empty")
	ErrStateNotFound = errors.New("state not found")
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	requests map[string]AuthRequest
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		requests: make(map[string]AuthRequest),
	}
}

// Upsert stores a copy of req under state.
func (r *InMemoryRepo) Upsert(state string, req *AuthRequest) error {
	if state == "" {
		return ErrEmptyState
	}
	if req == nil {
		return errors.New("request cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[state] = *req
	return nil
}

// Get returns a copy of the request stored under state.
func (r *InMemoryRepo) Get(state string) (*AuthRequest, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.requests[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	return &req, nil
}

func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return ErrEmptyState
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, state)
	return nil
}

// DeleteBefore drops requests created before cutoff and returns how many went.
func (r *InMemoryRepo) DeleteBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for state, req := range r.requests {
		if req.CreatedAt.Before(cutoff) {
			delete(r.requests, state)
			n++
		}
	}
	return n
}
