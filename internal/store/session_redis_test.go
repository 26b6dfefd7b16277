package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"ebookstore/pkg/domain"
)

func TestRedisSessionStoreLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(mr.Addr(), "", time.Hour)
	p := Principal{Kind: domain.KindAdmin, AccountID: 9}

	token, err := s.NewSession(p)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	got, ok, err := s.Resolve(token)
	if err != nil || !ok {
		t.Fatalf("Resolve: ok=%v err=%v", ok, err)
	}
	if got != p {
		t.Fatalf("Resolve = %+v, want %+v", got, p)
	}

	if err := s.Delete(token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Resolve(token); ok {
		t.Fatal("token resolved after delete")
	}
	if err := s.Delete(token); err != nil {
		t.Fatalf("deleting a missing token: %v", err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(mr.Addr(), "", time.Minute)

	token, err := s.NewSession(Principal{Kind: domain.KindUser, AccountID: 2})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.Resolve(token); ok {
		t.Fatal("token resolved after TTL")
	}
}

func TestRedisSessionStoreDeleteAccountSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(mr.Addr(), "", time.Hour)
	p := Principal{Kind: domain.KindUser, AccountID: 5}
	other := Principal{Kind: domain.KindAdmin, AccountID: 5}

	t1, _ := s.NewSession(p)
	t2, _ := s.NewSession(p)
	t3, _ := s.NewSession(other)

	if err := s.DeleteAccountSessions(p); err != nil {
		t.Fatalf("DeleteAccountSessions: %v", err)
	}
	if _, ok, _ := s.Resolve(t1); ok {
		t.Fatal("first token survived account-wide delete")
	}
	if _, ok, _ := s.Resolve(t2); ok {
		t.Fatal("second token survived account-wide delete")
	}
	if _, ok, _ := s.Resolve(t3); !ok {
		t.Fatal("other kind's token was deleted")
	}
}
