package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

const specialChars = "@$!%*?&#^_-+=~"

// ValidatePassword enforces the account password policy: at least 8
// characters with one lowercase letter, one uppercase letter, one digit
// and one special character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return errors.New("password must contain lowercase, uppercase, digit and special characters")
	}
	return nil
}
