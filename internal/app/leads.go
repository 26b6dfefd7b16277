package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ebookstore/internal/storage"
	"ebookstore/internal/store"
	"ebookstore/pkg/domain"
)

const (
	unknownBookLabel = "Unknown"
	csvTimeLayout    = "2006-01-02 15:04:05"
	exportDateLayout = "2006-01-02"
)

// Capture records a download lead for a book. The book must exist;
// otherwise the capture fails without side effects. DownloadTime is
// assigned server-side.
func (a *App) Capture(in domain.LeadInput) (domain.LeadView, error) {
	if err := validateLeadInput(in); err != nil {
		return domain.LeadView{}, err
	}
	book, ok, err := a.store.GetBook(in.BookID)
	if err != nil {
		return domain.LeadView{}, fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return domain.LeadView{}, fmt.Errorf("book %d: %w", in.BookID, ErrNotFound)
	}
	lead := domain.Lead{
		BookID:        book.ID,
		UserName:      strings.TrimSpace(in.UserName),
		ContactNumber: in.ContactNumber,
		Email:         strings.TrimSpace(in.Email),
		DownloadTime:  time.Now().UTC(),
	}
	created, err := a.store.CreateLead(lead)
	if err != nil {
		return domain.LeadView{}, fmt.Errorf("create lead: %w", err)
	}
	return leadView(created, book), nil
}

// DownloadInfo returns the public gate descriptor for a book code.
// Downloads are always allowed today; the flag is the policy hook.
func (a *App) DownloadInfo(code string) (domain.GateInfo, error) {
	book, ok, err := a.store.GetBookByCode(code)
	if err != nil {
		return domain.GateInfo{}, fmt.Errorf("fetch book by code: %w", err)
	}
	if !ok {
		return domain.GateInfo{}, fmt.Errorf("book code %q: %w", code, ErrNotFound)
	}
	return domain.GateInfo{
		BookID:          book.ID,
		BookName:        book.Name,
		BookCode:        book.Code,
		Author:          book.Author,
		DownloadAllowed: true,
	}, nil
}

// OpenDownload resolves a lead's book and streams its file. The
// suggested filename is the book name with a .pdf extension.
func (a *App) OpenDownload(ctx context.Context, leadID int64) (io.ReadCloser, int64, string, error) {
	lead, ok, err := a.store.GetLead(leadID)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fetch lead: %w", err)
	}
	if !ok {
		return nil, 0, "", fmt.Errorf("lead %d: %w", leadID, ErrNotFound)
	}
	book, ok, err := a.store.GetBook(lead.BookID)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fetch book: %w", err)
	}
	if !ok {
		return nil, 0, "", fmt.Errorf("book %d: %w", lead.BookID, ErrNotFound)
	}
	rc, size, err := a.files.Open(ctx, book.DownloadURL)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, "", fmt.Errorf("file for book %d: %w", book.ID, ErrNotFound)
	}
	if err != nil {
		return nil, 0, "", fmt.Errorf("open book file: %w", err)
	}
	return rc, size, book.Name + ".pdf", nil
}

// ListLeads returns leads, optionally filtered by book or email, with
// book name and code resolved per row. A deleted book shows as
// "Unknown".
func (a *App) ListLeads(bookID int64, email string) ([]domain.LeadView, error) {
	leads, err := a.store.ListLeads(store.LeadFilter{BookID: bookID, Email: strings.TrimSpace(email)})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return a.leadViews(leads)
}

func (a *App) leadViews(leads []domain.Lead) ([]domain.LeadView, error) {
	views := make([]domain.LeadView, 0, len(leads))
	books := make(map[int64]domain.Book)
	for _, lead := range leads {
		book, cached := books[lead.BookID]
		if !cached {
			var ok bool
			var err error
			book, ok, err = a.store.GetBook(lead.BookID)
			if err != nil {
				return nil, fmt.Errorf("fetch book: %w", err)
			}
			if !ok {
				book = domain.Book{}
			}
			books[lead.BookID] = book
		}
		views = append(views, leadView(lead, book))
	}
	return views, nil
}

func leadView(lead domain.Lead, book domain.Book) domain.LeadView {
	view := domain.LeadView{Lead: lead, BookName: unknownBookLabel, BookCode: unknownBookLabel}
	if book.ID != 0 {
		view.BookName = book.Name
		view.BookCode = book.Code
	}
	return view
}

// Stats aggregates the download ledger. Today counts from the server's
// local midnight; week and month are rolling 7- and 30-day windows. The
// windows overlap.
func (a *App) Stats() (domain.Stats, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats domain.Stats
	var err error
	if stats.TotalDownloads, err = a.store.LeadCount(); err != nil {
		return domain.Stats{}, fmt.Errorf("count leads: %w", err)
	}
	if stats.TotalBooks, err = a.store.BookCount(); err != nil {
		return domain.Stats{}, fmt.Errorf("count books: %w", err)
	}
	if stats.UniqueRequesters, err = a.store.DistinctLeadEmails(); err != nil {
		return domain.Stats{}, fmt.Errorf("count requesters: %w", err)
	}
	if stats.DownloadsToday, err = a.store.LeadCountAfter(midnight); err != nil {
		return domain.Stats{}, fmt.Errorf("count today: %w", err)
	}
	if stats.DownloadsThisWeek, err = a.store.LeadCountAfter(now.AddDate(0, 0, -7)); err != nil {
		return domain.Stats{}, fmt.Errorf("count week: %w", err)
	}
	if stats.DownloadsThisMonth, err = a.store.LeadCountAfter(now.AddDate(0, 0, -30)); err != nil {
		return domain.Stats{}, fmt.Errorf("count month: %w", err)
	}
	return stats, nil
}

// ExportCSV renders the lead ledger as CSV. bookID restricts to one
// book when positive. The date filter activates only when both dates
// are present and keeps leads strictly inside start 00:00:00 to end
// 23:59:59. A lead whose book is gone renders Unknown for name and
// code instead of failing the export.
func (a *App) ExportCSV(bookID int64, startDate, endDate string) ([]byte, error) {
	var from, to time.Time
	filterDates := startDate != "" && endDate != ""
	if filterDates {
		start, err := time.ParseInLocation(exportDateLayout, startDate, time.UTC)
		if err != nil {
			v := &ValidationError{}
			v.add("startDate", "must be a yyyy-MM-dd date")
			return nil, v
		}
		end, err := time.ParseInLocation(exportDateLayout, endDate, time.UTC)
		if err != nil {
			v := &ValidationError{}
			v.add("endDate", "must be a yyyy-MM-dd date")
			return nil, v
		}
		from = start
		to = end.Add(24*time.Hour - time.Second)
	}

	views, err := a.ListLeads(bookID, "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Book Name", "Book Code", "User Name", "Email", "Contact Number", "Download Time"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range views {
		if filterDates && !(v.DownloadTime.After(from) && v.DownloadTime.Before(to)) {
			continue
		}
		row := []string{
			strconv.FormatInt(v.ID, 10),
			v.BookName,
			v.BookCode,
			v.UserName,
			v.Email,
			v.ContactNumber,
			v.DownloadTime.Format(csvTimeLayout),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
