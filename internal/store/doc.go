// Package store provides persistent storage for accounts and checklist
// entries using SQLite.
//
// The package owns the single database handle. All access funnels through
// an internal serialization guard: at most one statement executes at a
// time, storage-wide, and writes are committed before the call returns.
// No other package may open a second handle to the same file.
//
// # Error Handling
//
// Store methods surface exactly three error kinds:
//
//   - ErrNotFound: the requested row does not exist
//   - ErrUsernameExists: a uniqueness violation on users.username
//   - ErrUnavailable: any other backend failure, wrapped with context
//
// Services translate these into domain-level outcomes; raw driver errors
// never leave this package uncategorized.
//
// Use NewSQLiteStore(":memory:") for tests that need a real database.
package store
