package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ebookstore/pkg/domain"
)

// GormStore implements Store using GORM + Postgres. Uniqueness of book
// codes and account names/emails is enforced by unique indexes, so
// concurrent check-then-insert races surface as ErrDuplicateKey instead
// of silently corrupting the tables.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BookModel{}, &LeadModel{}, &AdminModel{}, &UserModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// CreateBook inserts a book and returns it with the assigned ID.
func (s *GormStore) CreateBook(b domain.Book) (domain.Book, error) {
	model := bookToModel(b)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Book{}, translate(err)
	}
	return bookFromModel(model), nil
}

// UpdateBook replaces all fields of an existing book.
func (s *GormStore) UpdateBook(b domain.Book) error {
	model := bookToModel(b)
	if err := s.db.Save(&model).Error; err != nil {
		return translate(err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *GormStore) GetBook(id int64) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// GetBookByCode retrieves a book by its unique code.
func (s *GormStore) GetBookByCode(code string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "book_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// HasBookCode checks whether any book already uses the code.
func (s *GormStore) HasBookCode(code string) (bool, error) {
	var count int64
	if err := s.db.Model(&BookModel{}).Where("book_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListBooks returns all books ordered by ID.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	return s.listBooks(s.db.Model(&BookModel{}))
}

// ListBooksByName returns books whose name contains the substring,
// case-insensitively.
func (s *GormStore) ListBooksByName(name string) ([]domain.Book, error) {
	tx := s.db.Model(&BookModel{}).
		Where("LOWER(book_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	return s.listBooks(tx)
}

// SearchBooks applies the optional filters: author is a case-insensitive
// substring match, category and subcategory are case-insensitive exact
// matches. Empty filters impose no constraint; provided filters AND.
func (s *GormStore) SearchBooks(author, category, subcategory string) ([]domain.Book, error) {
	tx := s.db.Model(&BookModel{})
	if author != "" {
		tx = tx.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(author)+"%")
	}
	if category != "" {
		tx = tx.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if subcategory != "" {
		tx = tx.Where("LOWER(subcategory) = ?", strings.ToLower(subcategory))
	}
	return s.listBooks(tx)
}

func (s *GormStore) listBooks(tx *gorm.DB) ([]domain.Book, error) {
	var models []BookModel
	if err := tx.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// DeleteBook removes the book and its leads in one transaction, so the
// ledger never keeps leads for a book that was deleted here.
func (s *GormStore) DeleteBook(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&LeadModel{}, "ebook_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&BookModel{}, "id = ?", id).Error
	})
}

// BookCount returns the number of books.
func (s *GormStore) BookCount() (int64, error) {
	var count int64
	if err := s.db.Model(&BookModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateLead appends a lead to the download ledger.
func (s *GormStore) CreateLead(l domain.Lead) (domain.Lead, error) {
	model := leadToModel(l)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Lead{}, translate(err)
	}
	return leadFromModel(model), nil
}

// GetLead retrieves a lead by ID.
func (s *GormStore) GetLead(id int64) (domain.Lead, bool, error) {
	var model LeadModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Lead{}, false, nil
		}
		return domain.Lead{}, false, err
	}
	return leadFromModel(model), true, nil
}

// ListLeads returns leads matching the filter, newest first.
func (s *GormStore) ListLeads(f LeadFilter) ([]domain.Lead, error) {
	tx := s.db.Model(&LeadModel{})
	if f.BookID > 0 {
		tx = tx.Where("ebook_id = ?", f.BookID)
	}
	if f.Email != "" {
		tx = tx.Where("email = ?", f.Email)
	}
	if f.ContactNumber != "" {
		tx = tx.Where("contact_number = ?", f.ContactNumber)
	}
	if f.UserName != "" {
		tx = tx.Where("user_name = ?", f.UserName)
	}
	var models []LeadModel
	if err := tx.Order("download_time DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Lead, 0, len(models))
	for _, m := range models {
		res = append(res, leadFromModel(m))
	}
	return res, nil
}

// LeadCount returns the total number of leads.
func (s *GormStore) LeadCount() (int64, error) {
	var count int64
	if err := s.db.Model(&LeadModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LeadCountAfter counts leads captured after the given instant.
func (s *GormStore) LeadCountAfter(t time.Time) (int64, error) {
	var count int64
	if err := s.db.Model(&LeadModel{}).Where("download_time > ?", t).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DistinctLeadEmails counts distinct requester emails across all leads.
func (s *GormStore) DistinctLeadEmails() (int64, error) {
	var count int64
	if err := s.db.Model(&LeadModel{}).Distinct("email").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// accountRecord is the row shape shared by the admins and users tables.
type accountRecord struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	Name         string
	Email        string
	PasswordHash string
}

func accountTable(kind domain.AccountKind) string {
	if kind == domain.KindAdmin {
		return "admins"
	}
	return "users"
}

// CreateAccount inserts a principal into the table for its kind.
func (s *GormStore) CreateAccount(kind domain.AccountKind, a domain.Account) (domain.Account, error) {
	rec := accountRecord{Name: a.Name, Email: a.Email, PasswordHash: a.PasswordHash}
	if err := s.db.Table(accountTable(kind)).Create(&rec).Error; err != nil {
		return domain.Account{}, translate(err)
	}
	a.ID = rec.ID
	return a, nil
}

// UpdateAccount replaces name, email and password hash.
func (s *GormStore) UpdateAccount(kind domain.AccountKind, a domain.Account) error {
	err := s.db.Table(accountTable(kind)).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"name":          a.Name,
			"email":         a.Email,
			"password_hash": a.PasswordHash,
		}).Error
	return translate(err)
}

// GetAccount retrieves a principal by ID.
func (s *GormStore) GetAccount(kind domain.AccountKind, id int64) (domain.Account, bool, error) {
	var rec accountRecord
	err := s.db.Table(accountTable(kind)).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromRecord(rec), true, nil
}

// GetAccountByEmail retrieves a principal by email.
func (s *GormStore) GetAccountByEmail(kind domain.AccountKind, email string) (domain.Account, bool, error) {
	var rec accountRecord
	err := s.db.Table(accountTable(kind)).Where("email = ?", email).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromRecord(rec), true, nil
}

// HasAccountName checks if the name is already taken in the kind's table.
func (s *GormStore) HasAccountName(kind domain.AccountKind, name string) (bool, error) {
	var count int64
	if err := s.db.Table(accountTable(kind)).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasAccountEmail checks if the email is taken, optionally excluding one
// account (so an update keeping its own email passes).
func (s *GormStore) HasAccountEmail(kind domain.AccountKind, email string, excludeID int64) (bool, error) {
	tx := s.db.Table(accountTable(kind)).Where("email = ?", email)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAccounts returns all principals of the kind ordered by ID.
func (s *GormStore) ListAccounts(kind domain.AccountKind) ([]domain.Account, error) {
	var recs []accountRecord
	if err := s.db.Table(accountTable(kind)).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Account, 0, len(recs))
	for _, rec := range recs {
		res = append(res, accountFromRecord(rec))
	}
	return res, nil
}

// DeleteAccount removes a principal.
func (s *GormStore) DeleteAccount(kind domain.AccountKind, id int64) error {
	return s.db.Table(accountTable(kind)).Where("id = ?", id).Delete(&accountRecord{}).Error
}

func bookToModel(b domain.Book) BookModel {
	var code *string
	if b.Code != "" {
		c := b.Code
		code = &c
	}
	return BookModel{
		ID:          b.ID,
		Name:        b.Name,
		Code:        code,
		Category:    b.Category,
		Subcategory: b.Subcategory,
		Author:      b.Author,
		Description: b.Description,
		DownloadURL: b.DownloadURL,
	}
}

func bookFromModel(m BookModel) domain.Book {
	code := ""
	if m.Code != nil {
		code = *m.Code
	}
	return domain.Book{
		ID:          m.ID,
		Name:        m.Name,
		Code:        code,
		Category:    m.Category,
		Subcategory: m.Subcategory,
		Author:      m.Author,
		Description: m.Description,
		DownloadURL: m.DownloadURL,
	}
}

func leadToModel(l domain.Lead) LeadModel {
	return LeadModel{
		ID:            l.ID,
		BookID:        l.BookID,
		UserName:      l.UserName,
		ContactNumber: l.ContactNumber,
		Email:         l.Email,
		DownloadTime:  l.DownloadTime,
	}
}

func leadFromModel(m LeadModel) domain.Lead {
	return domain.Lead{
		ID:            m.ID,
		BookID:        m.BookID,
		UserName:      m.UserName,
		ContactNumber: m.ContactNumber,
		Email:         m.Email,
		DownloadTime:  m.DownloadTime,
	}
}

func accountFromRecord(rec accountRecord) domain.Account {
	return domain.Account{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
	}
}
