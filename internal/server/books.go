package server

import (
	"net/http"
	"strconv"
	"strings"

	"ebookstore/pkg/domain"
)

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		books, err := s.app.ListBooks()
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, books)
	case http.MethodPost:
		if _, ok := s.authorize(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		var in domain.BookInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		book, err := s.app.CreateBook(in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, book)
	default:
		methodNotAllowed(w, r)
	}
}

// handleBookSubroutes dispatches everything under /api/books/: numeric
// IDs, the search endpoint, and the named lookup prefixes.
func (s *Server) handleBookSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/books/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	if rest == "search" {
		s.handleBookSearch(w, r)
		return
	}

	prefix, arg, hasArg := strings.Cut(rest, "/")
	if !hasArg {
		s.handleBookByID(w, r, prefix)
		return
	}
	if arg == "" || strings.Contains(arg, "/") && prefix != "exists" {
		http.NotFound(w, r)
		return
	}

	switch prefix {
	case "code":
		s.handleBookLookup(w, r, func() (domain.Book, error) { return s.app.GetBookByCode(arg) })
	case "author":
		s.handleBookList(w, r, func() ([]domain.Book, error) { return s.app.ListBooksByAuthor(arg) })
	case "name":
		s.handleBookList(w, r, func() ([]domain.Book, error) { return s.app.ListBooksByName(arg) })
	case "category":
		s.handleBookList(w, r, func() ([]domain.Book, error) { return s.app.ListBooksByCategory(arg) })
	case "subcategory":
		s.handleBookList(w, r, func() ([]domain.Book, error) { return s.app.ListBooksBySubcategory(arg) })
	case "exists":
		s.handleBookExists(w, r, arg)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		book, err := s.app.GetBook(id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodPut:
		if _, ok := s.authorize(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		var in domain.BookInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		book, err := s.app.UpdateBook(id, in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodDelete:
		if _, ok := s.authorize(r); !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := s.app.DeleteBook(id); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r)
	}
}

func (s *Server) handleBookSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	q := r.URL.Query()
	books, err := s.app.SearchBooks(q.Get("author"), q.Get("category"), q.Get("subcategory"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleBookLookup(w http.ResponseWriter, r *http.Request, fetch func() (domain.Book, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	book, err := fetch()
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleBookList(w http.ResponseWriter, r *http.Request, fetch func() ([]domain.Book, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	books, err := fetch()
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// handleBookExists serves /api/books/exists/{id} and
// /api/books/exists/code/{code}.
func (s *Server) handleBookExists(w http.ResponseWriter, r *http.Request, arg string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	var exists bool
	var err error
	if code, hasCode := strings.CutPrefix(arg, "code/"); hasCode {
		if code == "" || strings.Contains(code, "/") {
			http.NotFound(w, r)
			return
		}
		exists, err = s.app.BookCodeExists(code)
	} else {
		id, parseErr := strconv.ParseInt(arg, 10, 64)
		if parseErr != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}
		exists, err = s.app.BookExists(id)
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
