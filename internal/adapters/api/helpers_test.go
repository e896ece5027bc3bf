package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"github.com/stretchr/testify/require"
)

// memTokenStore is a goroutine-safe in-memory token store for tests.
type memTokenStore struct {
	mu   sync.Mutex
	pair domain.TokenPair
	has  bool
}

var _ ports.TokenStore = (*memTokenStore)(nil)

func newMemTokenStore(pair domain.TokenPair) *memTokenStore {
	return &memTokenStore{pair: pair, has: pair.Valid()}
}

func (s *memTokenStore) Load(context.Context) (domain.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return domain.TokenPair{}, domain.ErrNotAuthenticated
	}
	return s.pair, nil
}

func (s *memTokenStore) Save(_ context.Context, pair domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.has = true
	return nil
}

func (s *memTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = domain.TokenPair{}
	s.has = false
	return nil
}

func (s *memTokenStore) current() (domain.TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.has
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
