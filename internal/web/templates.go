// ABOUTME: Template rendering functions for the checklist UI
// ABOUTME: Loads templates from the embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"

	"github.com/2389/checklist/internal/checklist"
)

// Template data types
type loginData struct {
	Title  string
	Notice string
	Error  string
}

type registerData struct {
	Title string
	Error string
}

type checklistData struct {
	Title        string
	Username     string
	Projects     []checklist.ProjectState
	CheckedCount int
	Saved        bool
	Error        string
}

// renderLoginPage renders the login form with an optional one-shot notice.
func (s *Server) renderLoginPage(w http.ResponseWriter, notice, errorMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := loginData{
		Title:  "Login",
		Notice: notice,
		Error:  errorMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render login page", "error", err)
	}
}

// renderRegisterPage renders the registration form.
func (s *Server) renderRegisterPage(w http.ResponseWriter, errorMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/register.html"))

	data := registerData{
		Title: "Create Account",
		Error: errorMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render register page", "error", err)
	}
}

// renderChecklist renders the project checklist for the user.
func (s *Server) renderChecklist(w http.ResponseWriter, r *http.Request, userID int64, saved bool) {
	data := checklistData{
		Title: "Projects",
		Saved: saved,
	}

	user, err := s.auth.UserByID(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		s.renderChecklistError(w, "Could not load user information")
		return
	}
	data.Username = user.Username

	states, err := s.checklist.GetState(r.Context(), userID, s.catalog)
	if err != nil {
		s.logger.Error("failed to load checklist", "user_id", userID, "error", err)
		s.renderChecklistError(w, "An error occurred")
		return
	}
	data.Projects = states
	data.CheckedCount = checklist.CheckedCount(states)

	s.renderChecklistData(w, data)
}

// renderChecklistError renders the checklist page with only an error banner.
func (s *Server) renderChecklistError(w http.ResponseWriter, errorMsg string) {
	s.renderChecklistData(w, checklistData{
		Title: "Projects",
		Error: errorMsg,
	})
}

func (s *Server) renderChecklistData(w http.ResponseWriter, data checklistData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/checklist.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render checklist page", "error", err)
	}
}
