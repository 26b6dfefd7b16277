package domain

import "time"

// AccountKind selects one of the two independent principal tables.
type AccountKind string

const (
	KindAdmin AccountKind = "admin"
	KindUser  AccountKind = "user"
)

// Book is a catalog entry for a downloadable publication.
// Code is unique across all books when set; an empty Code means unset.
type Book struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// BookInput carries the client-supplied fields for create and update.
type BookInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Author      string `json:"author"`
	Description string `json:"description"`
	DownloadURL string `json:"downloadUrl"`
}

// Lead is a captured download request. Immutable once created;
// DownloadTime is assigned by the server at capture.
type Lead struct {
	ID            int64     `json:"id"`
	BookID        int64     `json:"bookId"`
	UserName      string    `json:"userName"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email"`
	DownloadTime  time.Time `json:"downloadTime"`
}

// LeadInput carries the capture form fields.
type LeadInput struct {
	BookID        int64  `json:"bookId"`
	UserName      string `json:"userName"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

// LeadView is a Lead with the book name and code resolved at read time.
// The denormalized fields are never stored; a missing book renders as
// "Unknown".
type LeadView struct {
	Lead
	BookName string `json:"bookName"`
	BookCode string `json:"bookCode"`
}

// GateInfo is the public pre-download descriptor shown before the
// capture form. DownloadAllowed is always true today; the field is the
// extension point for future access policy.
type GateInfo struct {
	BookID          int64  `json:"bookId"`
	BookName        string `json:"bookName"`
	BookCode        string `json:"bookCode"`
	Author          string `json:"author"`
	DownloadAllowed bool   `json:"downloadAllowed"`
}

// Stats summarizes the download ledger for the dashboard. The time
// windows overlap: a lead from two days ago counts toward both the week
// and the month.
type Stats struct {
	TotalDownloads     int64 `json:"totalDownloads"`
	TotalBooks         int64 `json:"totalBooks"`
	UniqueRequesters   int64 `json:"uniqueRequesters"`
	DownloadsToday     int64 `json:"downloadsToday"`
	DownloadsThisWeek  int64 `json:"downloadsThisWeek"`
	DownloadsThisMonth int64 `json:"downloadsThisMonth"`
}

// Account is an authenticatable principal (admin or user depending on
// the table it lives in).
type Account struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// AccountInput carries registration and partial-update fields. Blank
// fields are left unchanged on update.
type AccountInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is a login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
