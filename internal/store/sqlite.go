// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Serializes all database access behind a single mutex-guarded handle

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite. The embedded
// database does not support concurrent writers, so every statement runs
// under an exclusive lock; concurrent callers queue on the mutex.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is created if it doesn't exist and re-applied as a no-op
// otherwise. Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One handle, one statement in flight. The mutex below is the
	// serialization guard; the pool limit keeps database/sql from opening
	// a second connection behind it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// InitSchema creates the database tables and indexes if they don't exist.
// Safe to call on every process start regardless of existing data.
func (s *SQLiteStore) InitSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

		CREATE TABLE IF NOT EXISTS project_entries (
			user_id      INTEGER NOT NULL,
			project_name TEXT NOT NULL,
			checked      INTEGER NOT NULL,

			UNIQUE(user_id, project_name),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`

	return s.execute(func() error {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("%w: applying schema: %v", ErrUnavailable, err)
		}
		return nil
	})
}

// execute runs fn with exclusive ownership of the database handle.
// Only one execute call is in flight at a time; the rest block here.
func (s *SQLiteStore) execute(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateUser inserts a new user row and returns its assigned ID.
// Returns ErrUsernameExists if the username is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	query := `INSERT INTO users (username, password_hash) VALUES (?, ?)`

	var id int64
	err := s.execute(func() error {
		result, err := s.db.ExecContext(ctx, query, username, passwordHash)
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrUsernameExists
			}
			return fmt.Errorf("%w: inserting user: %v", ErrUnavailable, err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: reading inserted user id: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("created user", "id", id, "username", username)
	return id, nil
}

// GetUserByCredentials retrieves a user by exact username and password hash.
// Returns ErrNotFound when no row matches the pair.
func (s *SQLiteStore) GetUserByCredentials(ctx context.Context, username, passwordHash string) (*User, error) {
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = ? AND password_hash = ?
	`

	var user User
	err := s.execute(func() error {
		err := s.db.QueryRowContext(ctx, query, username, passwordHash).Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: querying user by credentials: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE id = ?`

	var user User
	err := s.execute(func() error {
		err := s.db.QueryRowContext(ctx, query, id).Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: querying user: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpsertEntries creates or overwrites one checklist entry per
// (UserID, ProjectName) pair, holding the serialization guard across the
// whole batch so concurrent batches never interleave. Each statement
// commits as it runs; on failure the remaining writes are abandoned and
// the committed ones stay.
func (s *SQLiteStore) UpsertEntries(ctx context.Context, entries []*ProjectEntry) error {
	query := `
		INSERT OR REPLACE INTO project_entries (user_id, project_name, checked)
		VALUES (?, ?, ?)
	`

	err := s.execute(func() error {
		for _, entry := range entries {
			checked := 0
			if entry.Checked {
				checked = 1
			}
			if _, err := s.db.ExecContext(ctx, query, entry.UserID, entry.ProjectName, checked); err != nil {
				return fmt.Errorf("%w: upserting entry %q: %v", ErrUnavailable, entry.ProjectName, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("upserted entries", "count", len(entries))
	return nil
}

// GetEntry retrieves the checklist entry for one (userID, projectName) pair.
// Returns ErrNotFound if the user has never submitted that project.
func (s *SQLiteStore) GetEntry(ctx context.Context, userID int64, projectName string) (*ProjectEntry, error) {
	query := `
		SELECT user_id, project_name, checked
		FROM project_entries
		WHERE user_id = ? AND project_name = ?
	`

	var entry ProjectEntry
	var checked int
	err := s.execute(func() error {
		err := s.db.QueryRowContext(ctx, query, userID, projectName).Scan(
			&entry.UserID,
			&entry.ProjectName,
			&checked,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: querying entry: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry.Checked = checked == 1
	return &entry, nil
}

// ListEntries returns all checklist entries for a user, ordered by project name.
func (s *SQLiteStore) ListEntries(ctx context.Context, userID int64) ([]*ProjectEntry, error) {
	query := `
		SELECT user_id, project_name, checked
		FROM project_entries
		WHERE user_id = ?
		ORDER BY project_name
	`

	var entries []*ProjectEntry
	err := s.execute(func() error {
		rows, err := s.db.QueryContext(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("%w: querying entries: %v", ErrUnavailable, err)
		}
		defer rows.Close()

		for rows.Next() {
			var entry ProjectEntry
			var checked int
			if err := rows.Scan(&entry.UserID, &entry.ProjectName, &checked); err != nil {
				return fmt.Errorf("%w: scanning entry row: %v", ErrUnavailable, err)
			}
			entry.Checked = checked == 1
			entries = append(entries, &entry)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterating entry rows: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	// SQLite returns "UNIQUE constraint failed" in the error message
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
