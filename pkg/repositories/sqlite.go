package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveSessionID(ctx context.Context, accountID, gameID string) error {
	q := `
	INSERT OR REPLACE INTO sessions (account_id, game_id, updated_at)
	VALUES (?, ?, strftime('%s', 'now'));
	`
	if _, err := r.db.ExecContext(ctx, q, accountID, gameID); err != nil {
		return fmt.Errorf("failed to save session id: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSessionID(ctx context.Context, accountID string) (string, error) {
	q := `
	SELECT game_id FROM sessions WHERE account_id = ?;
	`
	var gameID string
	if err := r.db.QueryRowContext(ctx, q, accountID).Scan(&gameID); err != nil {
		if err == sql.ErrNoRows {
			return "", &ErrNotFound{}
		}
		return "", fmt.Errorf("failed to scan session id: %v", err)
	}
	return gameID, nil
}

func (r *SQLiteRepository) ClearSessionID(ctx context.Context, accountID string) error {
	q := `
	DELETE FROM sessions WHERE account_id = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, accountID); err != nil {
		return fmt.Errorf("failed to clear session id: %v", err)
	}
	return nil
}
