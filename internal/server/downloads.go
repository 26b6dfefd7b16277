package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ebookstore/internal/store"
	"ebookstore/internal/util"
	"ebookstore/pkg/domain"
)

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if !s.allowRate(w, r, s.captureLimiter, "too many download requests") {
		return
	}
	var in domain.LeadInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	view, err := s.app.Capture(in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleDownloadInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/api/downloads/secure/")
	if code == "" || strings.Contains(code, "/") {
		http.NotFound(w, r)
		return
	}
	gate, err := s.app.DownloadInfo(code)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/downloads/file/")
	leadID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || leadID <= 0 {
		http.NotFound(w, r)
		return
	}
	rc, size, filename, err := s.app.OpenDownload(r.Context(), leadID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sanitizeFilename(filename)+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		util.LoggerFromContext(r.Context()).Warn("download stream interrupted", "lead_id", leadID, "error", err)
	}
}

func sanitizeFilename(name string) string {
	return strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request, _ store.Principal) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	var bookID int64
	if raw := q.Get("bookId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "bookId must be a positive integer")
			return
		}
		bookID = parsed
	}
	views, err := s.app.ListLeads(bookID, q.Get("email"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, _ store.Principal) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	var bookID int64
	if raw := q.Get("bookId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "bookId must be a positive integer")
			return
		}
		bookID = parsed
	}
	out, err := s.app.ExportCSV(bookID, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	filename := "leads-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ store.Principal) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	stats, err := s.app.Stats()
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
