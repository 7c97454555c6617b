package httpapi

import (
	"net/http"

	"calorina/internal/auth"
	"calorina/internal/i18n"
	"calorina/internal/session"
)

type signUpRequest struct {
	auth.SignUpRequest
	Language string `json:"language,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Language string `json:"language,omitempty"`
}

type sessionResponse struct {
	Token   string       `json:"token"`
	Session session.View `json:"session"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.Users.SignUp(req.SignUpRequest)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.openSession(w, r, user, req.Language, http.StatusCreated)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.Users.SignIn(req.Email, req.Phone)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.openSession(w, r, user, req.Language, http.StatusOK)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request, user auth.User, lang string, status int) {
	id := s.Sessions.Create(user, s.language(r, lang))
	token, err := s.Tokens.Issue(id, user.IsAdmin)
	if err != nil {
		_ = s.Sessions.Logout(id)
		s.fail(w, r, err)
		return
	}
	view, err := s.Sessions.Snapshot(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, Session: view})
}

// language resolves an explicit choice, then Accept-Language, then the
// server default.
func (s *Server) language(r *http.Request, explicit string) i18n.Language {
	if lang, err := i18n.Parse(explicit); err == nil {
		return lang
	}
	return i18n.Negotiate(r.Header.Get("Accept-Language"), s.DefaultLanguage)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Logout(sessionID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Snapshot(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	lang, err := i18n.Parse(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Sessions.SetLanguage(sessionID(r), lang); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Reset(sessionID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
