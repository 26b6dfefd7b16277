package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ebookstore/internal/app"
	"ebookstore/internal/ratelimit"
	"ebookstore/internal/store"
	"ebookstore/internal/util"
	"ebookstore/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App           *app.App
	RedisAddr     string
	RedisPassword string

	LoginRateLimitPerMinute   int
	CaptureRateLimitPerMinute int
	TrustedProxies            []string
}

// Server exposes the HTTP endpoints for the bookstore backend.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	loginLimiter   *ratelimit.FixedWindowLimiter
	captureLimiter *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	captureLimit := cfg.CaptureRateLimitPerMinute
	if captureLimit <= 0 {
		captureLimit = 30
	}
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "ebookstore:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	captureLimiter, err := newLimiter("capture", captureLimit)
	if err != nil {
		return nil, err
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		loginLimiter:   loginLimiter,
		captureLimiter: captureLimiter,
		trustedProxies: trusted,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware
// chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// catalog
	s.mux.HandleFunc("/api/books", s.handleBooks)
	s.mux.HandleFunc("/api/books/", s.handleBookSubroutes)

	// downloads
	s.mux.HandleFunc("/api/downloads/capture", s.handleCapture)
	s.mux.HandleFunc("/api/downloads/secure/", s.handleDownloadInfo)
	s.mux.HandleFunc("/api/downloads/file/", s.handleDownloadFile)
	s.mux.Handle("/api/downloads/leads", s.authenticated(s.handleLeads))
	s.mux.Handle("/api/downloads/leads/export/csv", s.authenticated(s.handleExportCSV))
	s.mux.Handle("/api/downloads/stats", s.authenticated(s.handleStats))

	// principals
	s.mux.HandleFunc("/api/users", s.handleAccountCollection(domain.KindUser))
	s.mux.HandleFunc("/api/users/", s.handleAccountSubroutes(domain.KindUser))
	s.mux.HandleFunc("/api/admins", s.handleAccountCollection(domain.KindAdmin))
	s.mux.HandleFunc("/api/admins/", s.handleAccountSubroutes(domain.KindAdmin))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session wrappers
type sessionHandler func(http.ResponseWriter, *http.Request, store.Principal)

func (s *Server) authenticated(next sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.authorize(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, p)
	})
}

func (s *Server) authorize(r *http.Request) (store.Principal, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return store.Principal{}, false
	}
	p, _, ok := s.app.ResolveSession(token)
	return p, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, r, http.StatusTooManyRequests, msg)
	return false
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// writeAppError maps the core error taxonomy to HTTP responses.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var v *app.ValidationError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, errorBody(r, "validation failed", map[string]any{"fields": v.Fields}))
	case errors.Is(err, app.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrConflict):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func errorBody(r *http.Request, msg string, extra map[string]any) map[string]any {
	body := map[string]any{"error": msg}
	if id := util.RequestIDFromRequest(r); id != "" {
		body["requestId"] = id
	}
	for k, val := range extra {
		body[k] = val
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody(r, msg, nil))
}
