package app

import (
	"errors"
	"fmt"
	"strings"

	"ebookstore/internal/store"
	"ebookstore/pkg/domain"
)

// CreateBook validates and stores a new catalog entry. A code collision
// is reported as ErrConflict; the unique index is the authority, the
// pre-check only produces a friendlier failure for the common case.
func (a *App) CreateBook(in domain.BookInput) (domain.Book, error) {
	if err := validateBookInput(in); err != nil {
		return domain.Book{}, err
	}
	book := bookFromInput(0, in)
	if book.Code != "" {
		taken, err := a.store.HasBookCode(book.Code)
		if err != nil {
			return domain.Book{}, fmt.Errorf("check book code: %w", err)
		}
		if taken {
			return domain.Book{}, fmt.Errorf("book code %q: %w", book.Code, ErrConflict)
		}
	}
	created, err := a.store.CreateBook(book)
	if errors.Is(err, store.ErrDuplicateKey) {
		return domain.Book{}, fmt.Errorf("book code %q: %w", book.Code, ErrConflict)
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return created, nil
}

// UpdateBook replaces all fields of an existing book. Changing the code
// to one held by another book fails with ErrConflict; keeping the
// existing code succeeds.
func (a *App) UpdateBook(id int64, in domain.BookInput) (domain.Book, error) {
	if err := validateBookInput(in); err != nil {
		return domain.Book{}, err
	}
	current, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	book := bookFromInput(id, in)
	if book.Code != "" && book.Code != current.Code {
		taken, err := a.store.HasBookCode(book.Code)
		if err != nil {
			return domain.Book{}, fmt.Errorf("check book code: %w", err)
		}
		if taken {
			return domain.Book{}, fmt.Errorf("book code %q: %w", book.Code, ErrConflict)
		}
	}
	if err := a.store.UpdateBook(book); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return domain.Book{}, fmt.Errorf("book code %q: %w", book.Code, ErrConflict)
		}
		return domain.Book{}, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book and its leads in one transaction.
func (a *App) DeleteBook(id int64) error {
	_, ok, err := a.store.GetBook(id)
	if err != nil {
		return fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err := a.store.DeleteBook(id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// GetBook looks up a book by ID.
func (a *App) GetBook(id int64) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return book, nil
}

// GetBookByCode looks up a book by its unique code.
func (a *App) GetBookByCode(code string) (domain.Book, error) {
	book, ok, err := a.store.GetBookByCode(code)
	if err != nil {
		return domain.Book{}, fmt.Errorf("fetch book by code: %w", err)
	}
	if !ok {
		return domain.Book{}, fmt.Errorf("book code %q: %w", code, ErrNotFound)
	}
	return book, nil
}

// BookExists reports whether a book with the ID exists.
func (a *App) BookExists(id int64) (bool, error) {
	_, ok, err := a.store.GetBook(id)
	if err != nil {
		return false, fmt.Errorf("fetch book: %w", err)
	}
	return ok, nil
}

// BookCodeExists reports whether any book uses the code.
func (a *App) BookCodeExists(code string) (bool, error) {
	taken, err := a.store.HasBookCode(code)
	if err != nil {
		return false, fmt.Errorf("check book code: %w", err)
	}
	return taken, nil
}

// ListBooks returns the whole catalog.
func (a *App) ListBooks() ([]domain.Book, error) {
	return a.store.ListBooks()
}

// SearchBooks filters the catalog. Author matches as a case-insensitive
// substring, category and subcategory as case-insensitive exact values.
// Omitted filters impose no constraint.
func (a *App) SearchBooks(author, category, subcategory string) ([]domain.Book, error) {
	return a.store.SearchBooks(strings.TrimSpace(author), strings.TrimSpace(category), strings.TrimSpace(subcategory))
}

// ListBooksByAuthor matches on an author substring.
func (a *App) ListBooksByAuthor(author string) ([]domain.Book, error) {
	return a.store.SearchBooks(strings.TrimSpace(author), "", "")
}

// ListBooksByName matches on a name substring.
func (a *App) ListBooksByName(name string) ([]domain.Book, error) {
	return a.store.ListBooksByName(strings.TrimSpace(name))
}

// ListBooksByCategory matches the category exactly, ignoring case.
func (a *App) ListBooksByCategory(category string) ([]domain.Book, error) {
	return a.store.SearchBooks("", strings.TrimSpace(category), "")
}

// ListBooksBySubcategory matches the subcategory exactly, ignoring case.
func (a *App) ListBooksBySubcategory(subcategory string) ([]domain.Book, error) {
	return a.store.SearchBooks("", "", strings.TrimSpace(subcategory))
}

func bookFromInput(id int64, in domain.BookInput) domain.Book {
	return domain.Book{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.TrimSpace(in.Code),
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Author:      strings.TrimSpace(in.Author),
		Description: strings.TrimSpace(in.Description),
		DownloadURL: strings.TrimSpace(in.DownloadURL),
	}
}
