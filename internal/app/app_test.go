package app

import (
	"testing"
	"time"

	"ebookstore/internal/store"
	"ebookstore/pkg/domain"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	a, err := New(Config{
		Store:    mem,
		Sessions: store.NewMemorySessionStore(time.Hour),
		FilesDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, mem
}

func mustCreateBook(t *testing.T, a *App, in domain.BookInput) domain.Book {
	t.Helper()
	book, err := a.CreateBook(in)
	if err != nil {
		t.Fatalf("CreateBook(%q): %v", in.Name, err)
	}
	return book
}

func mustCapture(t *testing.T, a *App, in domain.LeadInput) domain.LeadView {
	t.Helper()
	view, err := a.Capture(in)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	return view
}

func validLeadInput(bookID int64) domain.LeadInput {
	return domain.LeadInput{
		BookID:        bookID,
		UserName:      "Ana Reyes",
		ContactNumber: "9876543210",
		Email:         "ana@example.com",
	}
}
