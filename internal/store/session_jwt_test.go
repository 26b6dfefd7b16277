package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"ebookstore/pkg/domain"
)

func newTestJWTStore(t *testing.T, ttl time.Duration) *JWTSessionStore {
	t.Helper()
	s, err := NewJWTSessionStore("test-secret-please-rotate", ttl, NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("NewJWTSessionStore: %v", err)
	}
	return s
}

func TestJWTSessionStoreLifecycle(t *testing.T) {
	s := newTestJWTStore(t, time.Hour)
	p := Principal{Kind: domain.KindAdmin, AccountID: 11}

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
		t.Fatal("revoked token still resolves")
	}
}

func TestJWTSessionStoreRejectsGarbage(t *testing.T) {
	s := newTestJWTStore(t, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, ok, err := s.Resolve(token); ok || err != nil {
			t.Fatalf("Resolve(%q): ok=%v err=%v", token, ok, err)
		}
	}
}

func TestJWTSessionStoreRejectsForeignSignature(t *testing.T) {
	issuer := newTestJWTStore(t, time.Hour)
	token, err := issuer.NewSession(Principal{Kind: domain.KindUser, AccountID: 1})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	verifier, err := NewJWTSessionStore("a-different-secret-entirely", time.Hour, NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("NewJWTSessionStore: %v", err)
	}
	if _, ok, _ := verifier.Resolve(token); ok {
		t.Fatal("token with a foreign signature resolved")
	}
}

func TestJWTSessionStoreDeleteAccountSessions(t *testing.T) {
	s := newTestJWTStore(t, time.Hour)
	p := Principal{Kind: domain.KindUser, AccountID: 6}
	other := Principal{Kind: domain.KindUser, AccountID: 7}

	t1, _ := s.NewSession(p)
	t2, _ := s.NewSession(p)
	t3, _ := s.NewSession(other)

	if err := s.DeleteAccountSessions(p); err != nil {
		t.Fatalf("DeleteAccountSessions: %v", err)
	}
	if _, ok, _ := s.Resolve(t1); ok {
		t.Fatal("first token survived account-wide revocation")
	}
	if _, ok, _ := s.Resolve(t2); ok {
		t.Fatal("second token survived account-wide revocation")
	}
	if _, ok, _ := s.Resolve(t3); !ok {
		t.Fatal("unrelated account's token was revoked")
	}
}

func TestMemoryTokenRevoker(t *testing.T) {
	r := NewMemoryTokenRevoker()

	if _, revoked, err := r.RevokedAt("missing"); revoked || err != nil {
		t.Fatalf("RevokedAt on missing key: revoked=%v err=%v", revoked, err)
	}

	if err := r.Revoke("jti-1", time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, revoked, _ := r.RevokedAt("jti-1"); !revoked {
		t.Fatal("key not revoked")
	}

	if err := r.Revoke("jti-2", time.Millisecond); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, revoked, _ := r.RevokedAt("jti-2"); revoked {
		t.Fatal("expired revocation still active")
	}
}

func TestRedisTokenRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedisTokenRevoker(mr.Addr(), "")

	if err := r.Revoke("jti-1", time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revokedAt, revoked, err := r.RevokedAt("jti-1")
	if err != nil || !revoked {
		t.Fatalf("RevokedAt: revoked=%v err=%v", revoked, err)
	}
	if time.Since(revokedAt) > time.Minute {
		t.Fatalf("revocation timestamp too old: %v", revokedAt)
	}

	mr.FastForward(2 * time.Hour)
	if _, revoked, _ := r.RevokedAt("jti-1"); revoked {
		t.Fatal("revocation survived its TTL")
	}
}
