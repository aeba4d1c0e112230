// ABOUTME: Session state machine deciding which screen a request may reach
// ABOUTME: Transitions fire only on service outcomes, never on absent state

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State is the screen a session is allowed to reach.
type State int

const (
	// StateAnonymous is the initial state: the login form is shown.
	StateAnonymous State = iota
	// StateRegistering shows the registration form.
	StateRegistering
	// StateAuthenticated shows the checklist. Terminal: there is no
	// logout transition, the session ends when the driver discards it.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateRegistering:
		return "registering"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a transition is requested from a
// state that does not allow it.
var ErrInvalidTransition = errors.New("invalid session transition")

// Session is the per-interaction-chain state bag. A single enum plus the
// one-shot notice flag: combinations like "registering and authenticated
// at once" are unrepresentable.
type Session struct {
	mu             sync.Mutex
	state          State
	userID         int64
	justRegistered bool
}

// NewSession creates an empty session in the Anonymous state.
func NewSession() *Session {
	return &Session{state: StateAnonymous}
}

// UserID returns the authenticated user's ID, or false when the session
// is not authenticated.
func (s *Session) UserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return 0, false
	}
	return s.userID, true
}

// Controller applies service outcomes to sessions.
type Controller struct {
	logger *slog.Logger
}

// NewController creates a session controller.
func NewController() *Controller {
	return &Controller{logger: slog.Default().With("component", "session")}
}

// CurrentState returns the state the session's next render must use.
func (c *Controller) CurrentState(s *Session) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RequestRegistration moves an anonymous session to the registration
// screen. Clears a pending one-shot notice.
func (c *Controller) RequestRegistration(s *Session) error {
	return c.transition(s, StateAnonymous, StateRegistering, func() {
		s.justRegistered = false
	})
}

// CancelRegistration returns a registering session to the login screen.
func (c *Controller) CancelRegistration(s *Session) error {
	return c.transition(s, StateRegistering, StateAnonymous, nil)
}

// CompleteRegistration records a successful registration: back to the
// login screen with the one-shot notice set. Registration never logs the
// user in.
func (c *Controller) CompleteRegistration(s *Session) error {
	return c.transition(s, StateRegistering, StateAnonymous, func() {
		s.justRegistered = true
	})
}

// CompleteLogin records a successful login and binds the session to the
// user. Only an anonymous session can log in.
func (c *Controller) CompleteLogin(s *Session, userID int64) error {
	return c.transition(s, StateAnonymous, StateAuthenticated, func() {
		s.userID = userID
		s.justRegistered = false
	})
}

// ConsumeNotice reports whether the one-shot registration notice is
// pending, clearing it. The notice is shown at most once.
func (c *Controller) ConsumeNotice(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.justRegistered
	s.justRegistered = false
	return pending
}

// transition atomically moves the session from one state to another,
// running apply under the same lock.
func (c *Controller) transition(s *Session, from, to State, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, s.state)
	}
	if apply != nil {
		apply()
	}
	s.state = to

	c.logger.Debug("session transition", "from", from.String(), "to", to.String())
	return nil
}
