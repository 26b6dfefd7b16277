package app

import (
	"errors"
	"fmt"
	"strings"

	"ebookstore/internal/store"
	"ebookstore/pkg/auth"
	"ebookstore/pkg/domain"
)

// Register creates an account in the table selected by kind. A name or
// email already in use fails with ErrConflict and leaves the existing
// account untouched.
func (a *App) Register(kind domain.AccountKind, in domain.AccountInput) (domain.Account, error) {
	if err := validateRegistration(in); err != nil {
		return domain.Account{}, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		v := &ValidationError{}
		v.add("password", err.Error())
		return domain.Account{}, v
	}
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if taken, err := a.store.HasAccountName(kind, name); err != nil {
		return domain.Account{}, fmt.Errorf("check name: %w", err)
	} else if taken {
		return domain.Account{}, fmt.Errorf("name %q: %w", name, ErrConflict)
	}
	if taken, err := a.store.HasAccountEmail(kind, email, 0); err != nil {
		return domain.Account{}, fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.Account{}, fmt.Errorf("email %q: %w", email, ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	account, err := a.store.CreateAccount(kind, domain.Account{Name: name, Email: email, PasswordHash: hash})
	if errors.Is(err, store.ErrDuplicateKey) {
		return domain.Account{}, fmt.Errorf("account: %w", ErrConflict)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Login checks credentials and issues a session token. The failure is
// uniform whether the email is unknown or the password wrong.
func (a *App) Login(kind domain.AccountKind, creds domain.Credentials) (domain.Account, string, error) {
	email := normalizeEmail(creds.Email)
	account, ok, err := a.store.GetAccountByEmail(kind, email)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("fetch account: %w", err)
	}
	if !ok || !auth.CheckPassword(creds.Password, account.PasswordHash) {
		return domain.Account{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(store.Principal{Kind: kind, AccountID: account.ID})
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("create session: %w", err)
	}
	return account, token, nil
}

// Logout invalidates a single session token.
func (a *App) Logout(token string) error {
	return a.sessions.Delete(token)
}

// ResolveSession maps a bearer token to its account.
func (a *App) ResolveSession(token string) (store.Principal, domain.Account, bool) {
	p, ok, err := a.sessions.Resolve(token)
	if err != nil || !ok {
		return store.Principal{}, domain.Account{}, false
	}
	account, found, err := a.store.GetAccount(p.Kind, p.AccountID)
	if err != nil || !found {
		return store.Principal{}, domain.Account{}, false
	}
	return p, account, true
}

// UpdateAccount applies a partial update: blank fields keep their
// current values. An email change re-checks uniqueness excluding the
// account itself.
func (a *App) UpdateAccount(kind domain.AccountKind, id int64, in domain.AccountInput) (domain.Account, error) {
	account, ok, err := a.store.GetAccount(kind, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}

	if name := strings.TrimSpace(in.Name); name != "" && name != account.Name {
		if taken, err := a.store.HasAccountName(kind, name); err != nil {
			return domain.Account{}, fmt.Errorf("check name: %w", err)
		} else if taken {
			return domain.Account{}, fmt.Errorf("name %q: %w", name, ErrConflict)
		}
		account.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" && email != account.Email {
		if !validEmail(email) {
			v := &ValidationError{}
			v.add("email", "must be a valid email address")
			return domain.Account{}, v
		}
		if taken, err := a.store.HasAccountEmail(kind, email, id); err != nil {
			return domain.Account{}, fmt.Errorf("check email: %w", err)
		} else if taken {
			return domain.Account{}, fmt.Errorf("email %q: %w", email, ErrConflict)
		}
		account.Email = email
	}
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			v := &ValidationError{}
			v.add("password", err.Error())
			return domain.Account{}, v
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return domain.Account{}, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if err := a.store.UpdateAccount(kind, account); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return domain.Account{}, fmt.Errorf("account: %w", ErrConflict)
		}
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// DeleteAccount removes an account and invalidates all of its sessions.
func (a *App) DeleteAccount(kind domain.AccountKind, id int64) error {
	_, ok, err := a.store.GetAccount(kind, id)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err := a.store.DeleteAccount(kind, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := a.sessions.DeleteAccountSessions(store.Principal{Kind: kind, AccountID: id}); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	return nil
}

// GetAccount looks up an account by ID.
func (a *App) GetAccount(kind domain.AccountKind, id int64) (domain.Account, error) {
	account, ok, err := a.store.GetAccount(kind, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return account, nil
}

// GetAccountByEmail looks up an account by email.
func (a *App) GetAccountByEmail(kind domain.AccountKind, email string) (domain.Account, error) {
	account, ok, err := a.store.GetAccountByEmail(kind, normalizeEmail(email))
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, fmt.Errorf("account %q: %w", email, ErrNotFound)
	}
	return account, nil
}

// ListAccounts returns all accounts of one kind.
func (a *App) ListAccounts(kind domain.AccountKind) ([]domain.Account, error) {
	return a.store.ListAccounts(kind)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
