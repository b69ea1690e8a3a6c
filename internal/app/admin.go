package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenStore holds opaque admin session tokens. Tokens never expire on
// their own; only an explicit logout revokes them.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]time.Time)}
}

func (s *TokenStore) Issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = time.Now()
	s.mu.Unlock()
	log.Info().Str("module", "app.admin").Msg("issued admin token")
	return token
}

func (s *TokenStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Revoke reports whether the token was live.
func (s *TokenStore) Revoke(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return false
	}
	delete(s.tokens, token)
	log.Info().Str("module", "app.admin").Msg("revoked admin token")
	return true
}
