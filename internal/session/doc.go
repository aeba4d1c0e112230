// Package session models the per-user interaction state as an explicit
// three-state machine (anonymous, registering, authenticated) whose
// transitions fire only on service outcomes, plus an in-memory registry
// the request driver uses to find a session by its opaque ID.
package session
