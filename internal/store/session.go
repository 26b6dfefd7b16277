package store

import (
	"fmt"
	"strconv"
	"strings"

	"ebookstore/pkg/domain"
)

// Principal identifies a logged-in account: which table it lives in and
// its row ID.
type Principal struct {
	Kind      domain.AccountKind
	AccountID int64
}

// SessionStore persists session tokens. DeleteAccountSessions exists so
// deleting an account invalidates every session bound to it.
type SessionStore interface {
	NewSession(p Principal) (string, error)
	Resolve(token string) (Principal, bool, error)
	Delete(token string) error
	DeleteAccountSessions(p Principal) error
}

func encodePrincipal(p Principal) string {
	return string(p.Kind) + ":" + strconv.FormatInt(p.AccountID, 10)
}

func decodePrincipal(s string) (Principal, error) {
	kind, idStr, ok := strings.Cut(s, ":")
	if !ok {
		return Principal{}, fmt.Errorf("malformed principal %q", s)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("malformed principal id %q", idStr)
	}
	switch domain.AccountKind(kind) {
	case domain.KindAdmin, domain.KindUser:
		return Principal{Kind: domain.AccountKind(kind), AccountID: id}, nil
	}
	return Principal{}, fmt.Errorf("unknown principal kind %q", kind)
}
