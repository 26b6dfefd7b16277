package store

import (
	"errors"
	"time"

	"ebookstore/pkg/domain"
)

// ErrDuplicateKey is returned when an insert or update violates a
// uniqueness constraint (book code, account name or email).
var ErrDuplicateKey = errors.New("store: duplicate key")

// LeadFilter narrows lead listings. Zero values impose no constraint.
type LeadFilter struct {
	BookID        int64
	Email         string
	ContactNumber string
	UserName      string
}

// Store defines persistence operations for books, leads and the two
// principal tables.
type Store interface {
	// books
	CreateBook(b domain.Book) (domain.Book, error)
	UpdateBook(b domain.Book) error
	GetBook(id int64) (domain.Book, bool, error)
	GetBookByCode(code string) (domain.Book, bool, error)
	HasBookCode(code string) (bool, error)
	ListBooks() ([]domain.Book, error)
	ListBooksByName(name string) ([]domain.Book, error)
	SearchBooks(author, category, subcategory string) ([]domain.Book, error)
	// DeleteBook removes the book and its leads in one atomic unit.
	DeleteBook(id int64) error
	BookCount() (int64, error)

	// leads
	CreateLead(l domain.Lead) (domain.Lead, error)
	GetLead(id int64) (domain.Lead, bool, error)
	ListLeads(f LeadFilter) ([]domain.Lead, error)
	LeadCount() (int64, error)
	LeadCountAfter(t time.Time) (int64, error)
	DistinctLeadEmails() (int64, error)

	// principals
	CreateAccount(kind domain.AccountKind, a domain.Account) (domain.Account, error)
	UpdateAccount(kind domain.AccountKind, a domain.Account) error
	GetAccount(kind domain.AccountKind, id int64) (domain.Account, bool, error)
	GetAccountByEmail(kind domain.AccountKind, email string) (domain.Account, bool, error)
	HasAccountName(kind domain.AccountKind, name string) (bool, error)
	// HasAccountEmail checks email uniqueness; excludeID > 0 skips that
	// account so an update can keep its own email.
	HasAccountEmail(kind domain.AccountKind, email string, excludeID int64) (bool, error)
	ListAccounts(kind domain.AccountKind) ([]domain.Account, error)
	DeleteAccount(kind domain.AccountKind, id int64) error
}
