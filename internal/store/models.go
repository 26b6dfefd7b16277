package store

import "time"

// GORM models used for persistence.
type BookModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"column:book_name;size:100;not null"`
	Code        *string `gorm:"column:book_code;size:50;uniqueIndex"`
	Category    string  `gorm:"size:100"`
	Subcategory string  `gorm:"size:100"`
	Author      string  `gorm:"size:100;not null"`
	Description string  `gorm:"type:text"`
	DownloadURL string  `gorm:"column:download_url;size:512"`
}

func (BookModel) TableName() string { return "books" }

type LeadModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	BookID        int64     `gorm:"column:ebook_id;not null;index"`
	UserName      string    `gorm:"size:100;not null"`
	ContactNumber string    `gorm:"size:15;not null"`
	Email         string    `gorm:"size:100;not null;index"`
	DownloadTime  time.Time `gorm:"not null;index"`
}

func (LeadModel) TableName() string { return "downloads" }

type AdminModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:50;not null;uniqueIndex"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
}

func (AdminModel) TableName() string { return "admins" }

type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:50;not null;uniqueIndex"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
}

func (UserModel) TableName() string { return "users" }
