package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"ebookstore/pkg/domain"
)

// MemoryStore keeps everything in-process. It mirrors the GormStore
// semantics (uniqueness, cascade delete, ordering) and backs tests and
// local development.
type MemoryStore struct {
	mu sync.RWMutex

	books     map[int64]domain.Book
	bookOrder []int64
	nextBook  int64

	leads    map[int64]domain.Lead
	nextLead int64

	accounts map[domain.AccountKind]map[int64]domain.Account
	nextAcct map[domain.AccountKind]int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[int64]domain.Book),
		leads: make(map[int64]domain.Lead),
		accounts: map[domain.AccountKind]map[int64]domain.Account{
			domain.KindAdmin: {},
			domain.KindUser:  {},
		},
		nextAcct: map[domain.AccountKind]int64{},
	}
}

// CreateBook stores a book, enforcing code uniqueness under the lock.
func (m *MemoryStore) CreateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.Code != "" && m.codeTaken(b.Code, 0) {
		return domain.Book{}, ErrDuplicateKey
	}
	m.nextBook++
	b.ID = m.nextBook
	m.books[b.ID] = b
	m.bookOrder = append(m.bookOrder, b.ID)
	return b, nil
}

// UpdateBook replaces all fields of an existing book. Updating a
// missing book is a no-op.
func (m *MemoryStore) UpdateBook(b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return nil
	}
	if b.Code != "" && m.codeTaken(b.Code, b.ID) {
		return ErrDuplicateKey
	}
	m.books[b.ID] = b
	return nil
}

func (m *MemoryStore) codeTaken(code string, excludeID int64) bool {
	for _, other := range m.books {
		if other.ID != excludeID && other.Code == code {
			return true
		}
	}
	return false
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(id int64) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// GetBookByCode retrieves a book by its code.
func (m *MemoryStore) GetBookByCode(code string) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok && b.Code != "" && b.Code == code {
			return b, true, nil
		}
	}
	return domain.Book{}, false, nil
}

// HasBookCode checks whether any book uses the code.
func (m *MemoryStore) HasBookCode(code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.codeTaken(code, 0), nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	return m.filterBooks(func(domain.Book) bool { return true })
}

// ListBooksByName matches on a case-insensitive name substring.
func (m *MemoryStore) ListBooksByName(name string) ([]domain.Book, error) {
	needle := strings.ToLower(name)
	return m.filterBooks(func(b domain.Book) bool {
		return strings.Contains(strings.ToLower(b.Name), needle)
	})
}

// SearchBooks applies the same filter semantics as the SQL store.
func (m *MemoryStore) SearchBooks(author, category, subcategory string) ([]domain.Book, error) {
	author = strings.ToLower(author)
	category = strings.ToLower(category)
	subcategory = strings.ToLower(subcategory)
	return m.filterBooks(func(b domain.Book) bool {
		if author != "" && !strings.Contains(strings.ToLower(b.Author), author) {
			return false
		}
		if category != "" && !strings.EqualFold(b.Category, category) {
			return false
		}
		if subcategory != "" && !strings.EqualFold(b.Subcategory, subcategory) {
			return false
		}
		return true
	})
}

func (m *MemoryStore) filterBooks(keep func(domain.Book) bool) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.bookOrder))
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok && keep(b) {
			res = append(res, b)
		}
	}
	return res, nil
}

// DeleteBook removes the book and cascades to its leads.
func (m *MemoryStore) DeleteBook(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	filtered := m.bookOrder[:0]
	for _, item := range m.bookOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.bookOrder = filtered
	for leadID, lead := range m.leads {
		if lead.BookID == id {
			delete(m.leads, leadID)
		}
	}
	return nil
}

// BookCount returns the number of books.
func (m *MemoryStore) BookCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.books)), nil
}

// CreateLead appends a lead to the ledger.
func (m *MemoryStore) CreateLead(l domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLead++
	l.ID = m.nextLead
	m.leads[l.ID] = l
	return l, nil
}

// GetLead retrieves a lead by ID.
func (m *MemoryStore) GetLead(id int64) (domain.Lead, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[id]
	return l, ok, nil
}

// ListLeads returns leads matching the filter, newest first.
func (m *MemoryStore) ListLeads(f LeadFilter) ([]domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		if f.BookID > 0 && l.BookID != f.BookID {
			continue
		}
		if f.Email != "" && l.Email != f.Email {
			continue
		}
		if f.ContactNumber != "" && l.ContactNumber != f.ContactNumber {
			continue
		}
		if f.UserName != "" && l.UserName != f.UserName {
			continue
		}
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].DownloadTime.After(res[j].DownloadTime)
	})
	return res, nil
}

// LeadCount returns the total number of leads.
func (m *MemoryStore) LeadCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.leads)), nil
}

// LeadCountAfter counts leads captured after the given instant.
func (m *MemoryStore) LeadCountAfter(t time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, l := range m.leads {
		if l.DownloadTime.After(t) {
			count++
		}
	}
	return count, nil
}

// DistinctLeadEmails counts distinct requester emails.
func (m *MemoryStore) DistinctLeadEmails() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{}, len(m.leads))
	for _, l := range m.leads {
		seen[l.Email] = struct{}{}
	}
	return int64(len(seen)), nil
}

// CreateAccount stores a principal, enforcing name and email uniqueness
// within its kind under the lock.
func (m *MemoryStore) CreateAccount(kind domain.AccountKind, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.accounts[kind] {
		if other.Name == a.Name || other.Email == a.Email {
			return domain.Account{}, ErrDuplicateKey
		}
	}
	m.nextAcct[kind]++
	a.ID = m.nextAcct[kind]
	m.accounts[kind][a.ID] = a
	return a, nil
}

// UpdateAccount replaces an existing principal's fields.
func (m *MemoryStore) UpdateAccount(kind domain.AccountKind, a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[kind][a.ID]; !ok {
		return nil
	}
	for _, other := range m.accounts[kind] {
		if other.ID != a.ID && (other.Name == a.Name || other.Email == a.Email) {
			return ErrDuplicateKey
		}
	}
	m.accounts[kind][a.ID] = a
	return nil
}

// GetAccount retrieves a principal by ID.
func (m *MemoryStore) GetAccount(kind domain.AccountKind, id int64) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[kind][id]
	return a, ok, nil
}

// GetAccountByEmail retrieves a principal by email.
func (m *MemoryStore) GetAccountByEmail(kind domain.AccountKind, email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts[kind] {
		if a.Email == email {
			return a, true, nil
		}
	}
	return domain.Account{}, false, nil
}

// HasAccountName checks if the name is taken within the kind.
func (m *MemoryStore) HasAccountName(kind domain.AccountKind, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts[kind] {
		if a.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// HasAccountEmail checks if the email is taken, optionally excluding one
// account ID.
func (m *MemoryStore) HasAccountEmail(kind domain.AccountKind, email string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts[kind] {
		if a.ID != excludeID && a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ListAccounts returns all principals of the kind ordered by ID.
func (m *MemoryStore) ListAccounts(kind domain.AccountKind) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Account, 0, len(m.accounts[kind]))
	for _, a := range m.accounts[kind] {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// DeleteAccount removes a principal.
func (m *MemoryStore) DeleteAccount(kind domain.AccountKind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts[kind], id)
	return nil
}
