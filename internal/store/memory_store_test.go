package store

import (
	"errors"
	"testing"
	"time"

	"ebookstore/pkg/domain"
)

func TestMemoryStoreBookCRUD(t *testing.T) {
	m := NewMemoryStore()

	b, err := m.CreateBook(domain.Book{Name: "Go Basics", Code: "GO-101", Author: "Pat"})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	if _, err := m.CreateBook(domain.Book{Name: "Duplicate", Code: "GO-101"}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("duplicate code: got %v, want ErrDuplicateKey", err)
	}
	if _, err := m.CreateBook(domain.Book{Name: "No Code A"}); err != nil {
		t.Fatalf("create without code: %v", err)
	}
	if _, err := m.CreateBook(domain.Book{Name: "No Code B"}); err != nil {
		t.Fatalf("second create without code: %v", err)
	}

	got, ok, err := m.GetBook(b.ID)
	if err != nil || !ok {
		t.Fatalf("GetBook: ok=%v err=%v", ok, err)
	}
	if got.Name != "Go Basics" {
		t.Fatalf("GetBook name = %q", got.Name)
	}

	got, ok, err = m.GetBookByCode("GO-101")
	if err != nil || !ok {
		t.Fatalf("GetBookByCode: ok=%v err=%v", ok, err)
	}
	if got.ID != b.ID {
		t.Fatalf("GetBookByCode ID = %d, want %d", got.ID, b.ID)
	}

	b.Author = "Sam"
	if err := m.UpdateBook(b); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	got, _, _ = m.GetBook(b.ID)
	if got.Author != "Sam" {
		t.Fatalf("author after update = %q", got.Author)
	}

	count, err := m.BookCount()
	if err != nil || count != 3 {
		t.Fatalf("BookCount = %d err=%v, want 3", count, err)
	}
}

func TestMemoryStoreBookSearch(t *testing.T) {
	m := NewMemoryStore()
	seed := []domain.Book{
		{Name: "Go in Action", Author: "Kennedy", Category: "tech", Subcategory: "go"},
		{Name: "The Go Programming Language", Author: "Donovan", Category: "tech", Subcategory: "go"},
		{Name: "Cooking at Home", Author: "Reyes", Category: "food", Subcategory: "basics"},
	}
	for _, b := range seed {
		if _, err := m.CreateBook(b); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	byName, err := m.ListBooksByName("go")
	if err != nil {
		t.Fatalf("ListBooksByName: %v", err)
	}
	if len(byName) != 2 {
		t.Fatalf("name search returned %d books, want 2", len(byName))
	}

	byAuthor, err := m.SearchBooks("donovan", "", "")
	if err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].Name != "The Go Programming Language" {
		t.Fatalf("author search = %+v", byAuthor)
	}

	byCat, err := m.SearchBooks("", "tech", "go")
	if err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if len(byCat) != 2 {
		t.Fatalf("category search returned %d books, want 2", len(byCat))
	}

	all, err := m.ListBooks()
	if err != nil || len(all) != 3 {
		t.Fatalf("ListBooks = %d err=%v, want 3", len(all), err)
	}
}

func TestMemoryStoreDeleteBookCascades(t *testing.T) {
	m := NewMemoryStore()
	b, _ := m.CreateBook(domain.Book{Name: "Doomed"})
	other, _ := m.CreateBook(domain.Book{Name: "Keeper"})

	l1, _ := m.CreateLead(domain.Lead{BookID: b.ID, Email: "a@example.com", DownloadTime: time.Now()})
	l2, _ := m.CreateLead(domain.Lead{BookID: other.ID, Email: "b@example.com", DownloadTime: time.Now()})

	if err := m.DeleteBook(b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, ok, _ := m.GetBook(b.ID); ok {
		t.Fatal("book survived delete")
	}
	if _, ok, _ := m.GetLead(l1.ID); ok {
		t.Fatal("lead for deleted book survived")
	}
	if _, ok, _ := m.GetLead(l2.ID); !ok {
		t.Fatal("unrelated lead was deleted")
	}
}

func TestMemoryStoreLeads(t *testing.T) {
	m := NewMemoryStore()
	b, _ := m.CreateBook(domain.Book{Name: "Go Basics"})
	now := time.Now()

	leads := []domain.Lead{
		{BookID: b.ID, UserName: "ana", Email: "ana@example.com", ContactNumber: "9876543210", DownloadTime: now.Add(-48 * time.Hour)},
		{BookID: b.ID, UserName: "ben", Email: "ben@example.com", ContactNumber: "9876500000", DownloadTime: now.Add(-time.Hour)},
		{BookID: b.ID, UserName: "ana", Email: "ana@example.com", ContactNumber: "9876543210", DownloadTime: now},
	}
	for _, l := range leads {
		if _, err := m.CreateLead(l); err != nil {
			t.Fatalf("CreateLead: %v", err)
		}
	}

	all, err := m.ListLeads(LeadFilter{})
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListLeads returned %d, want 3", len(all))
	}
	if !all[0].DownloadTime.After(all[1].DownloadTime) || !all[1].DownloadTime.After(all[2].DownloadTime) {
		t.Fatal("leads not sorted newest first")
	}

	byEmail, _ := m.ListLeads(LeadFilter{Email: "ana@example.com"})
	if len(byEmail) != 2 {
		t.Fatalf("email filter returned %d, want 2", len(byEmail))
	}
	byContact, _ := m.ListLeads(LeadFilter{ContactNumber: "9876500000"})
	if len(byContact) != 1 || byContact[0].UserName != "ben" {
		t.Fatalf("contact filter = %+v", byContact)
	}

	total, _ := m.LeadCount()
	if total != 3 {
		t.Fatalf("LeadCount = %d, want 3", total)
	}
	recent, _ := m.LeadCountAfter(now.Add(-2 * time.Hour))
	if recent != 2 {
		t.Fatalf("LeadCountAfter = %d, want 2", recent)
	}
	distinct, _ := m.DistinctLeadEmails()
	if distinct != 2 {
		t.Fatalf("DistinctLeadEmails = %d, want 2", distinct)
	}
}

func TestMemoryStoreAccounts(t *testing.T) {
	m := NewMemoryStore()

	admin, err := m.CreateAccount(domain.KindAdmin, domain.Account{Name: "root", Email: "root@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if _, err := m.CreateAccount(domain.KindAdmin, domain.Account{Name: "root", Email: "other@example.com"}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("duplicate name: got %v, want ErrDuplicateKey", err)
	}
	if _, err := m.CreateAccount(domain.KindAdmin, domain.Account{Name: "other", Email: "root@example.com"}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateKey", err)
	}

	// The same name in the other table is fine, kinds are isolated.
	user, err := m.CreateAccount(domain.KindUser, domain.Account{Name: "root", Email: "root@example.com"})
	if err != nil {
		t.Fatalf("CreateAccount user: %v", err)
	}

	got, ok, err := m.GetAccountByEmail(domain.KindAdmin, "root@example.com")
	if err != nil || !ok || got.ID != admin.ID {
		t.Fatalf("GetAccountByEmail: ok=%v err=%v id=%d", ok, err, got.ID)
	}

	has, _ := m.HasAccountName(domain.KindAdmin, "root")
	if !has {
		t.Fatal("HasAccountName = false, want true")
	}
	has, _ = m.HasAccountEmail(domain.KindAdmin, "root@example.com", admin.ID)
	if has {
		t.Fatal("HasAccountEmail should exclude the account itself")
	}

	admin.Name = "superroot"
	if err := m.UpdateAccount(domain.KindAdmin, admin); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	got, _, _ = m.GetAccount(domain.KindAdmin, admin.ID)
	if got.Name != "superroot" {
		t.Fatalf("name after update = %q", got.Name)
	}

	users, _ := m.ListAccounts(domain.KindUser)
	if len(users) != 1 || users[0].ID != user.ID {
		t.Fatalf("ListAccounts users = %+v", users)
	}

	if err := m.DeleteAccount(domain.KindUser, user.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, ok, _ := m.GetAccount(domain.KindUser, user.ID); ok {
		t.Fatal("account survived delete")
	}
}
