// ABOUTME: Web UI package driving the checklist core over HTTP forms
// ABOUTME: Maps session state to screens and service outcomes to transitions

package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/checklist/internal/auth"
	"github.com/2389/checklist/internal/checklist"
	"github.com/2389/checklist/internal/session"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "checklist_session"

// Server handles the checklist UI routes. Each request is dispatched to
// the screen its session state allows; every transition between screens
// is the result of a service outcome.
type Server struct {
	auth       *auth.Service
	checklist  *checklist.Service
	controller *session.Controller
	sessions   *session.Registry
	catalog    []checklist.Project
	logger     *slog.Logger
}

// New creates a web server over the given services and project catalog.
func New(authSvc *auth.Service, checklistSvc *checklist.Service, catalog []checklist.Project) *Server {
	return &Server{
		auth:       authSvc,
		checklist:  checklistSvc,
		controller: session.NewController(),
		sessions:   session.NewRegistry(),
		catalog:    catalog,
		logger:     slog.Default().With("component", "web"),
	}
}

// RegisterRoutes registers all UI routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)

	mux.HandleFunc("POST /register/start", s.handleRegisterStart)
	mux.HandleFunc("POST /register/cancel", s.handleRegisterCancel)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)

	mux.HandleFunc("GET /checklist", s.requireAuth(s.handleChecklistPage))
	mux.HandleFunc("POST /checklist", s.requireAuth(s.handleChecklistSubmit))

	s.logger.Info("web routes registered")
}

// getOrCreateSession returns the request's session, creating a fresh
// anonymous one (and setting its cookie) on first contact.
func (s *Server) getOrCreateSession(w http.ResponseWriter, r *http.Request) *session.Session {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if sess := s.sessions.Get(cookie.Value); sess != nil {
			return sess
		}
	}

	id, sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// requireAuth wraps a handler to require an authenticated session.
// The user ID comes from the session bag, never from the request.
func (s *Server) requireAuth(next func(w http.ResponseWriter, r *http.Request, sess *session.Session, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.getOrCreateSession(w, r)
		userID, ok := sess.UserID()
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, sess, userID)
	}
}

// handleIndex redirects to the screen the session state allows.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	switch s.controller.CurrentState(sess) {
	case session.StateRegistering:
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case session.StateAuthenticated:
		http.Redirect(w, r, "/checklist", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// handleLoginPage renders the login form with the one-shot registration
// notice when it is pending.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	switch s.controller.CurrentState(sess) {
	case session.StateAuthenticated:
		http.Redirect(w, r, "/checklist", http.StatusSeeOther)
		return
	case session.StateRegistering:
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	notice := ""
	if s.controller.ConsumeNotice(sess) {
		notice = "Registration complete! Please log in."
	}
	s.renderLoginPage(w, notice, "")
}

// handleLogin processes the login form submission.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	if err := r.ParseForm(); err != nil {
		s.renderLoginPage(w, "", "Invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	userID, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.renderLoginPage(w, "", "Invalid username or password")
			return
		}
		s.logger.Error("login failed", "error", err)
		s.renderLoginPage(w, "", "An error occurred")
		return
	}

	if err := s.controller.CompleteLogin(sess, userID); err != nil {
		// Session already authenticated by a parallel request; either way
		// the checklist is the right screen.
		s.logger.Warn("login transition rejected", "error", err)
	}

	http.Redirect(w, r, "/checklist", http.StatusSeeOther)
}

// handleRegisterStart moves an anonymous session to the registration screen.
func (s *Server) handleRegisterStart(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	if err := s.controller.RequestRegistration(sess); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// handleRegisterCancel returns a registering session to the login screen.
func (s *Server) handleRegisterCancel(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	if err := s.controller.CancelRegistration(sess); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleRegisterPage renders the registration form. Only a session in the
// registering state may reach it.
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	if s.controller.CurrentState(sess) != session.StateRegistering {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderRegisterPage(w, "")
}

// handleRegister processes the registration form submission.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := s.getOrCreateSession(w, r)

	if s.controller.CurrentState(sess) != session.StateRegistering {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderRegisterPage(w, "Invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	confirmation := r.FormValue("confirm_password")

	_, err := s.auth.Register(r.Context(), username, password, confirmation)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			s.renderRegisterPage(w, "Username and password required")
		case errors.Is(err, auth.ErrPasswordMismatch):
			s.renderRegisterPage(w, "Passwords do not match")
		case errors.Is(err, auth.ErrUsernameTaken):
			s.renderRegisterPage(w, "This username is already taken")
		default:
			s.logger.Error("registration failed", "error", err)
			s.renderRegisterPage(w, "An error occurred")
		}
		return
	}

	// Registration does not log the user in; back to the login screen
	// with the one-shot notice pending.
	if err := s.controller.CompleteRegistration(sess); err != nil {
		s.logger.Warn("registration transition rejected", "error", err)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChecklistPage renders the checklist for the authenticated user.
func (s *Server) handleChecklistPage(w http.ResponseWriter, r *http.Request, _ *session.Session, userID int64) {
	saved := r.URL.Query().Get("saved") == "1"
	s.renderChecklist(w, r, userID, saved)
}

// handleChecklistSubmit upserts the submitted selections and re-renders.
// The session stays authenticated; there is no transition.
func (s *Server) handleChecklistSubmit(w http.ResponseWriter, r *http.Request, _ *session.Session, userID int64) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/checklist", http.StatusSeeOther)
		return
	}

	// Every catalog project is present in the form; a checked box submits
	// its name, an unchecked one is absent.
	selections := make(map[string]bool, len(s.catalog))
	for _, project := range s.catalog {
		selections[project.Name] = r.Form.Has("project:" + project.Name)
	}

	if err := s.checklist.Submit(r.Context(), userID, s.catalog, selections); err != nil {
		s.logger.Error("checklist submit failed", "error", err)
		s.renderChecklistError(w, "An error occurred while saving")
		return
	}

	http.Redirect(w, r, "/checklist?saved=1", http.StatusSeeOther)
}
