// ABOUTME: Tests for the session state machine and registry
// ABOUTME: Covers the full transition table, invalid transitions, and the one-shot notice

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_StartsAnonymous(t *testing.T) {
	c := NewController()
	s := NewSession()

	assert.Equal(t, StateAnonymous, c.CurrentState(s))
	_, ok := s.UserID()
	assert.False(t, ok)
	assert.False(t, c.ConsumeNotice(s))
}

func TestRegistrationFlow(t *testing.T) {
	c := NewController()
	s := NewSession()

	require.NoError(t, c.RequestRegistration(s))
	assert.Equal(t, StateRegistering, c.CurrentState(s))

	// Successful registration returns to the login screen, not the checklist
	require.NoError(t, c.CompleteRegistration(s))
	assert.Equal(t, StateAnonymous, c.CurrentState(s))
	_, ok := s.UserID()
	assert.False(t, ok)

	// Notice fires exactly once
	assert.True(t, c.ConsumeNotice(s))
	assert.False(t, c.ConsumeNotice(s))
}

func TestCancelRegistration(t *testing.T) {
	c := NewController()
	s := NewSession()

	require.NoError(t, c.RequestRegistration(s))
	require.NoError(t, c.CancelRegistration(s))
	assert.Equal(t, StateAnonymous, c.CurrentState(s))
	assert.False(t, c.ConsumeNotice(s))
}

func TestCompleteLogin(t *testing.T) {
	c := NewController()
	s := NewSession()

	require.NoError(t, c.CompleteLogin(s, 7))
	assert.Equal(t, StateAuthenticated, c.CurrentState(s))

	id, ok := s.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestLoginClearsPendingNotice(t *testing.T) {
	c := NewController()
	s := NewSession()

	require.NoError(t, c.RequestRegistration(s))
	require.NoError(t, c.CompleteRegistration(s))
	require.NoError(t, c.CompleteLogin(s, 7))

	assert.False(t, c.ConsumeNotice(s))
}

func TestInvalidTransitions(t *testing.T) {
	c := NewController()

	// Authenticated is terminal
	s := NewSession()
	require.NoError(t, c.CompleteLogin(s, 7))
	assert.ErrorIs(t, c.RequestRegistration(s), ErrInvalidTransition)
	assert.ErrorIs(t, c.CompleteLogin(s, 8), ErrInvalidTransition)
	assert.ErrorIs(t, c.CompleteRegistration(s), ErrInvalidTransition)

	// A failed transition leaves the session untouched
	id, ok := s.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	// Registration outcomes require the registering state
	s = NewSession()
	assert.ErrorIs(t, c.CompleteRegistration(s), ErrInvalidTransition)
	assert.ErrorIs(t, c.CancelRegistration(s), ErrInvalidTransition)

	// Login is not possible mid-registration
	require.NoError(t, c.RequestRegistration(s))
	assert.ErrorIs(t, c.CompleteLogin(s, 7), ErrInvalidTransition)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "registering", StateRegistering.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Get("unknown"))
	assert.Equal(t, 0, r.Len())

	id, s := r.Create()
	require.NotEmpty(t, id)
	assert.Same(t, s, r.Get(id))
	assert.Equal(t, 1, r.Len())

	// IDs are unique per session
	id2, s2 := r.Create()
	assert.NotEqual(t, id, id2)
	assert.NotSame(t, s, s2)
}
