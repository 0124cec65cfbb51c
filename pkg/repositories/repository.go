package repositories

import (
	"context"
)

// Repository is the local durable storage used for reconnection: it
// remembers the last-joined game id per account.
type Repository interface {
	Close(ctx context.Context) error
	SaveSessionID(ctx context.Context, accountID, gameID string) error
	// LoadSessionID returns ErrNotFound when no id is remembered.
	LoadSessionID(ctx context.Context, accountID string) (string, error)
	ClearSessionID(ctx context.Context, accountID string) error
}
