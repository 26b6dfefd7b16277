package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySessionStore keeps sessions in-process (single instance only).
type MemorySessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	sess map[string]memorySession
	acct map[string]map[string]struct{} // principal -> token set
}

type memorySession struct {
	principal Principal
	expiresAt time.Time
}

// NewMemorySessionStore builds an in-memory session store. A zero TTL
// means sessions never expire.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:  ttl,
		sess: make(map[string]memorySession),
		acct: make(map[string]map[string]struct{}),
	}
}

// NewSession creates a token bound to the principal.
func (s *MemorySessionStore) NewSession(p Principal) (string, error) {
	token := uuid.NewString()
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}
	key := encodePrincipal(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess[token] = memorySession{principal: p, expiresAt: expiresAt}
	if s.acct[key] == nil {
		s.acct[key] = make(map[string]struct{})
	}
	s.acct[key][token] = struct{}{}
	return token, nil
}

// Resolve returns the principal bound to the token.
func (s *MemorySessionStore) Resolve(token string) (Principal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sess[token]
	if !ok {
		return Principal{}, false, nil
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		s.remove(token, sess.principal)
		return Principal{}, false, nil
	}
	return sess.principal, true, nil
}

// Delete removes a single session token.
func (s *MemorySessionStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sess[token]; ok {
		s.remove(token, sess.principal)
	}
	return nil
}

// DeleteAccountSessions removes every session bound to the principal.
func (s *MemorySessionStore) DeleteAccountSessions(p Principal) error {
	key := encodePrincipal(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.acct[key] {
		delete(s.sess, token)
	}
	delete(s.acct, key)
	return nil
}

func (s *MemorySessionStore) remove(token string, p Principal) {
	delete(s.sess, token)
	key := encodePrincipal(p)
	if set, ok := s.acct[key]; ok {
		delete(set, token)
		if len(set) == 0 {
			delete(s.acct, key)
		}
	}
}
