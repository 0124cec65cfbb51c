package repositories

import (
	"context"
	"sync"
)

// InMemoryRepository is a Repository for tests and throwaway sessions.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]string),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveSessionID(ctx context.Context, accountID, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[accountID] = gameID
	return nil
}

func (r *InMemoryRepository) LoadSessionID(ctx context.Context, accountID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gameID, ok := r.sessions[accountID]
	if !ok {
		return "", &ErrNotFound{}
	}
	return gameID, nil
}

func (r *InMemoryRepository) ClearSessionID(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, accountID)
	return nil
}
