// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers user creation, credential lookup, entry upserts, and serialization

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return s
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id, err := store.CreateUser(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Re-applying the schema must be a no-op
	if err := store.InitSchema(); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}

	got, err := store.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID after re-init failed: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username mismatch: got %q, want %q", got.Username, "alice")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id, err := store.CreateUser(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	_, err = store.CreateUser(ctx, "alice", "cafebabe")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	// Exactly one row with that username: the original credentials still match
	got, err := store.GetUserByCredentials(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("GetUserByCredentials failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID mismatch: got %d, want %d", got.ID, id)
	}
	if _, err := store.GetUserByCredentials(ctx, "alice", "cafebabe"); !errors.Is(err, ErrNotFound) {
		t.Errorf("duplicate's credentials should not match, got %v", err)
	}
}

func TestGetUserByCredentials_WrongPassword(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if _, err := store.CreateUser(ctx, "alice", "deadbeef"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := store.GetUserByCredentials(ctx, "alice", "00000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong hash, got %v", err)
	}

	_, err = store.GetUserByCredentials(ctx, "nobody", "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetUserByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertEntry_Overwrites(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	userID, err := store.CreateUser(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := store.UpsertEntries(ctx, []*ProjectEntry{{UserID: userID, ProjectName: "P1", Checked: true}}); err != nil {
		t.Fatalf("UpsertEntries failed: %v", err)
	}
	if err := store.UpsertEntries(ctx, []*ProjectEntry{{UserID: userID, ProjectName: "P1", Checked: false}}); err != nil {
		t.Fatalf("second UpsertEntries failed: %v", err)
	}

	got, err := store.GetEntry(ctx, userID, "P1")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.Checked {
		t.Error("entry should have been flipped to unchecked")
	}

	// No duplicate rows for the pair
	entries, err := store.ListEntries(ctx, userID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	userID, err := store.CreateUser(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err = store.GetEntry(ctx, userID, "never-submitted")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntries_Ordered(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	userID, err := store.CreateUser(ctx, "alice", "deadbeef")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	entries := []*ProjectEntry{
		{UserID: userID, ProjectName: "P3", Checked: true},
		{UserID: userID, ProjectName: "P1", Checked: true},
		{UserID: userID, ProjectName: "P2", Checked: true},
	}
	if err := store.UpsertEntries(ctx, entries); err != nil {
		t.Fatalf("UpsertEntries failed: %v", err)
	}

	entries, err = store.ListEntries(ctx, userID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"P1", "P2", "P3"} {
		if entries[i].ProjectName != want {
			t.Errorf("entry %d: got %q, want %q", i, entries[i].ProjectName, want)
		}
	}
}

func TestConcurrentAccess_Serialized(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Writers on disjoint users plus credential reads, all racing on the
	// single handle. The serialization guard must keep every call whole.
	const users = 8
	ids := make([]int64, users)
	for i := range ids {
		id, err := store.CreateUser(ctx, fmt.Sprintf("user-%d", i), "deadbeef")
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		ids[i] = id
	}

	var wg sync.WaitGroup
	errs := make(chan error, users*2)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := &ProjectEntry{UserID: ids[i], ProjectName: "P1", Checked: i%2 == 0}
			if err := store.UpsertEntries(ctx, []*ProjectEntry{entry}); err != nil {
				errs <- err
			}
		}(i)

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.GetUserByCredentials(ctx, fmt.Sprintf("user-%d", i), "deadbeef"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}

	for i := 0; i < users; i++ {
		got, err := store.GetEntry(ctx, ids[i], "P1")
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.Checked != (i%2 == 0) {
			t.Errorf("user %d: entry state does not match its own write", i)
		}
	}
}
