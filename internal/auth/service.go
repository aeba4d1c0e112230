// ABOUTME: Registration and login service, the only writer of user rows
// ABOUTME: Owns password hashing and maps store errors to domain outcomes

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/checklist/internal/credcache"
	"github.com/2389/checklist/internal/store"
)

// ErrPasswordMismatch is returned when password and confirmation differ.
// Checked before any storage access; no row is written.
var ErrPasswordMismatch = errors.New("passwords do not match")

// ErrUsernameTaken is returned when registering an already-used username.
var ErrUsernameTaken = errors.New("username already taken")

// ErrMissingFields is returned when username or password is empty.
var ErrMissingFields = errors.New("username and password required")

// ErrInvalidCredentials is returned on any failed login. It deliberately
// conflates "no such user" with "wrong password" so a caller cannot
// enumerate usernames.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles account registration and login.
type Service struct {
	store  store.Store
	creds  *credcache.Cache
	logger *slog.Logger
}

// New creates an auth service backed by the given store and credential cache.
func New(st store.Store, creds *credcache.Cache) *Service {
	return &Service{
		store:  st,
		creds:  creds,
		logger: slog.Default().With("component", "auth"),
	}
}

// HashPassword returns the hex-encoded SHA-256 digest of the password.
// The digest is deterministic and unsalted; registration and login must
// produce the same string for the same input, and the stored format
// matches databases written by earlier versions of this application.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a new account and returns its user ID.
// Returns ErrMissingFields, ErrPasswordMismatch, or ErrUsernameTaken for
// the corresponding user errors; anything else is a storage failure.
// Registration does not log the user in.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (int64, error) {
	if username == "" || password == "" {
		return 0, ErrMissingFields
	}
	if password != confirmation {
		return 0, ErrPasswordMismatch
	}

	id, err := s.store.CreateUser(ctx, username, HashPassword(password))
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("registered user", "username", username, "user_id", id)
	return id, nil
}

// Login verifies a credential pair and returns the matching user ID.
// Returns ErrInvalidCredentials when the pair matches no account; the
// error shape is identical whether the username exists or not.
func (s *Service) Login(ctx context.Context, username, password string) (int64, error) {
	user, err := s.creds.Lookup(ctx, username, HashPassword(password))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("verifying credentials: %w", err)
	}

	s.logger.Info("login successful", "username", username, "user_id", user.ID)
	return user.ID, nil
}

// UserByID returns the account for a user ID. Used by the driver for
// display only; it never substitutes for credential verification.
func (s *Service) UserByID(ctx context.Context, id int64) (*store.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return user, nil
}
