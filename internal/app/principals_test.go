package app

import (
	"errors"
	"testing"

	"ebookstore/pkg/domain"
)

func validRegistration() domain.AccountInput {
	return domain.AccountInput{Name: "Ana Reyes", Email: "ana@example.com", Password: "Str0ng!pass"}
}

func TestRegisterAndLogin(t *testing.T) {
	a, _ := newTestApp(t)

	account, err := a.Register(domain.KindUser, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.ID == 0 {
		t.Fatal("account has no ID")
	}
	if account.PasswordHash == "Str0ng!pass" {
		t.Fatal("password stored in the clear")
	}

	got, token, err := a.Login(domain.KindUser, domain.Credentials{Email: "Ana@Example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != account.ID || token == "" {
		t.Fatalf("login = %+v token=%q", got, token)
	}

	p, resolved, ok := a.ResolveSession(token)
	if !ok || p.AccountID != account.ID || p.Kind != domain.KindUser || resolved.Email != "ana@example.com" {
		t.Fatalf("ResolveSession = %+v/%+v ok=%v", p, resolved, ok)
	}

	if err := a.Logout(token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, ok := a.ResolveSession(token); ok {
		t.Fatal("session resolved after logout")
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.Register(domain.KindUser, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, errUnknown := a.Login(domain.KindUser, domain.Credentials{Email: "nobody@example.com", Password: "Str0ng!pass"})
	_, _, errWrongPass := a.Login(domain.KindUser, domain.Credentials{Email: "ana@example.com", Password: "wrong-pass"})
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("errors differ: %v vs %v", errUnknown, errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errWrongPass)
	}
}

func TestRegisterConflicts(t *testing.T) {
	a, _ := newTestApp(t)
	first, err := a.Register(domain.KindAdmin, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	sameName := validRegistration()
	sameName.Email = "other@example.com"
	if _, err := a.Register(domain.KindAdmin, sameName); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate name: got %v, want ErrConflict", err)
	}

	sameEmail := validRegistration()
	sameEmail.Name = "Someone Else"
	if _, err := a.Register(domain.KindAdmin, sameEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}

	// The existing account is untouched.
	got, err := a.GetAccount(domain.KindAdmin, first.ID)
	if err != nil || got.Name != "Ana Reyes" || got.Email != "ana@example.com" {
		t.Fatalf("existing account changed: %+v err=%v", got, err)
	}

	// The same identity in the other table does not collide.
	if _, err := a.Register(domain.KindUser, validRegistration()); err != nil {
		t.Fatalf("cross-kind register: %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a, _ := newTestApp(t)
	in := validRegistration()
	in.Password = "weak"

	var v *ValidationError
	if _, err := a.Register(domain.KindUser, in); !errors.As(err, &v) {
		t.Fatalf("weak password: got %v, want ValidationError", err)
	}
}

func TestUpdateAccountPartial(t *testing.T) {
	a, _ := newTestApp(t)
	account, err := a.Register(domain.KindUser, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	other := validRegistration()
	other.Name = "Ben Ito"
	other.Email = "ben@example.com"
	if _, err := a.Register(domain.KindUser, other); err != nil {
		t.Fatalf("Register other: %v", err)
	}

	// Blank fields keep their current values.
	updated, err := a.UpdateAccount(domain.KindUser, account.ID, domain.AccountInput{Name: "Ana R."})
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.Name != "Ana R." || updated.Email != "ana@example.com" {
		t.Fatalf("partial update = %+v", updated)
	}

	// Taking another account's email fails.
	if _, err := a.UpdateAccount(domain.KindUser, account.ID, domain.AccountInput{Email: "ben@example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("email collision: got %v, want ErrConflict", err)
	}

	// Password change re-hashes and old password stops working.
	if _, err := a.UpdateAccount(domain.KindUser, account.ID, domain.AccountInput{Password: "N3w!passw0rd"}); err != nil {
		t.Fatalf("password update: %v", err)
	}
	if _, _, err := a.Login(domain.KindUser, domain.Credentials{Email: "ana@example.com", Password: "Str0ng!pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still valid: %v", err)
	}
	if _, _, err := a.Login(domain.KindUser, domain.Credentials{Email: "ana@example.com", Password: "N3w!passw0rd"}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if _, err := a.UpdateAccount(domain.KindUser, 9999, domain.AccountInput{Name: "Ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing account: got %v, want ErrNotFound", err)
	}
}

func TestDeleteAccountInvalidatesSessions(t *testing.T) {
	a, _ := newTestApp(t)
	account, err := a.Register(domain.KindUser, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, token, err := a.Login(domain.KindUser, domain.Credentials{Email: "ana@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := a.DeleteAccount(domain.KindUser, account.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, _, ok := a.ResolveSession(token); ok {
		t.Fatal("session survived account delete")
	}
	if err := a.DeleteAccount(domain.KindUser, account.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestAccountLookups(t *testing.T) {
	a, _ := newTestApp(t)
	account, err := a.Register(domain.KindAdmin, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	byEmail, err := a.GetAccountByEmail(domain.KindAdmin, "ANA@example.com")
	if err != nil || byEmail.ID != account.ID {
		t.Fatalf("GetAccountByEmail = %+v err=%v", byEmail, err)
	}
	if _, err := a.GetAccountByEmail(domain.KindAdmin, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing email: got %v, want ErrNotFound", err)
	}

	all, err := a.ListAccounts(domain.KindAdmin)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListAccounts = %d err=%v, want 1", len(all), err)
	}
	users, _ := a.ListAccounts(domain.KindUser)
	if len(users) != 0 {
		t.Fatalf("user table not empty: %d", len(users))
	}
}
