package server

import (
	"net/http"
	"strconv"
	"strings"

	"ebookstore/pkg/domain"
)

type loginResponse struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

// handleAccountCollection serves GET /api/users and /api/admins.
func (s *Server) handleAccountCollection(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		if _, ok := s.authorize(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		accounts, err := s.app.ListAccounts(kind)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

// handleAccountSubroutes dispatches register, login, logout, email
// lookup and per-ID operations for one principal table.
func (s *Server) handleAccountSubroutes(kind domain.AccountKind) http.HandlerFunc {
	base := "/api/users/"
	if kind == domain.KindAdmin {
		base = "/api/admins/"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, base)
		switch {
		case rest == "register":
			s.handleRegister(w, r, kind)
		case rest == "login":
			s.handleLogin(w, r, kind)
		case rest == "logout":
			s.handleLogout(w, r)
		case strings.HasPrefix(rest, "email/"):
			s.handleAccountByEmail(w, r, kind, strings.TrimPrefix(rest, "email/"))
		default:
			s.handleAccountByID(w, r, kind, rest)
		}
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, kind domain.AccountKind) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var in domain.AccountInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, err := s.app.Register(kind, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, kind domain.AccountKind) {
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, token, err := s.app.Login(kind, creds)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Account: account})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, _, ok := s.app.ResolveSession(token); !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountByEmail(w http.ResponseWriter, r *http.Request, kind domain.AccountKind, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	if email == "" || strings.Contains(email, "/") {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.authorize(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := s.app.GetAccountByEmail(kind, email)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request, kind domain.AccountKind, raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.authorize(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch r.Method {
	case http.MethodGet:
		account, err := s.app.GetAccount(kind, id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodPut:
		var in domain.AccountInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		account, err := s.app.UpdateAccount(kind, id, in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodDelete:
		if err := s.app.DeleteAccount(kind, id); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r)
	}
}
