package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a Postgres-backed Repository and
// ensures the sessions table exists. The caller is responsible for
// calling Close().
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	q := `
	CREATE TABLE IF NOT EXISTS sessions (
		account_id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := conn.Exec(ctx, q); err != nil {
		return nil, fmt.Errorf("unable to create sessions table: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveSessionID(ctx context.Context, accountID, gameID string) error {
	q := `
	INSERT INTO sessions (account_id, game_id, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (account_id) DO UPDATE SET game_id = $2, updated_at = now();
	`
	if _, err := r.conn.Exec(ctx, q, accountID, gameID); err != nil {
		return fmt.Errorf("failed to save session id: %v", err)
	}
	return nil
}

func (r *PostgresRepository) LoadSessionID(ctx context.Context, accountID string) (string, error) {
	q := `
	SELECT game_id FROM sessions WHERE account_id = $1;
	`
	var gameID string
	if err := r.conn.QueryRow(ctx, q, accountID).Scan(&gameID); err != nil {
		if err == pgx.ErrNoRows {
			return "", &ErrNotFound{}
		}
		return "", fmt.Errorf("failed to scan session id: %v", err)
	}
	return gameID, nil
}

func (r *PostgresRepository) ClearSessionID(ctx context.Context, accountID string) error {
	q := `
	DELETE FROM sessions WHERE account_id = $1;
	`
	if _, err := r.conn.Exec(ctx, q, accountID); err != nil {
		return fmt.Errorf("failed to clear session id: %v", err)
	}
	return nil
}
