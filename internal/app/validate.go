package app

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ebookstore/pkg/domain"
)

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	contactPattern = regexp.MustCompile(`^[0-9]{10}$`)
)

func validateBookInput(in domain.BookInput) error {
	var v ValidationError
	if strings.TrimSpace(in.Name) == "" {
		v.add("name", "must not be blank")
	} else if utf8.RuneCountInString(in.Name) > 100 {
		v.add("name", "must be at most 100 characters")
	}
	if strings.TrimSpace(in.Author) == "" {
		v.add("author", "must not be blank")
	}
	return v.orNil()
}

func validateLeadInput(in domain.LeadInput) error {
	var v ValidationError
	if in.BookID <= 0 {
		v.add("bookId", "must be a positive ID")
	}
	name := strings.TrimSpace(in.UserName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		v.add("userName", "must be 2 to 100 characters")
	}
	if !contactPattern.MatchString(in.ContactNumber) {
		v.add("contactNumber", "must be exactly 10 digits")
	}
	if !validEmail(in.Email) {
		v.add("email", "must be a valid email address")
	}
	return v.orNil()
}

func validateRegistration(in domain.AccountInput) error {
	var v ValidationError
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		v.add("name", "must be 2 to 100 characters")
	}
	if !validEmail(in.Email) {
		v.add("email", "must be a valid email address")
	}
	return v.orNil()
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && len(email) <= 100 && emailPattern.MatchString(email)
}
