// ABOUTME: Store interface and data types for checklist persistence
// ABOUTME: Defines User, ProjectEntry structs and the sentinel error taxonomy

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when creating a user with a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrUnavailable is returned when the database backend fails for any reason
// other than a uniqueness violation. Callers treat it as terminal for the
// operation; nothing is retried at this layer.
var ErrUnavailable = errors.New("storage unavailable")

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // hex-encoded SHA-256 digest, never the raw password
}

// ProjectEntry represents the checked state of one project for one user.
// Identity is the (UserID, ProjectName) pair; writes are upserts.
type ProjectEntry struct {
	UserID      int64
	ProjectName string
	Checked     bool
}

// Store defines the interface for user and checklist persistence.
// Implementations serialize all access to the underlying database handle:
// at most one statement is in flight at a time, across all callers.
type Store interface {
	// Users
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByCredentials(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// Checklist entries. UpsertEntries holds the serialization guard for
	// the whole batch: concurrent batches never interleave. The batch
	// stops on the first failure; earlier writes are already committed.
	UpsertEntries(ctx context.Context, entries []*ProjectEntry) error
	GetEntry(ctx context.Context, userID int64, projectName string) (*ProjectEntry, error)
	ListEntries(ctx context.Context, userID int64) ([]*ProjectEntry, error)

	// Close releases the database handle.
	Close() error
}
