// Package secrets adapts a generic secret store into the session token store.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
)

const (
	accessTokenKey  = "sana/auth/accessToken"
	refreshTokenKey = "sana/auth/refreshToken"
)

// TokenStore persists the token pair under two secret keys. The pair is
// atomic from a reader's point of view: Load only ever returns a complete
// pair, and a half-written pair found on disk is cleaned up and reported as
// not authenticated.
type TokenStore struct {
	store ports.SecretStore
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(store ports.SecretStore) *TokenStore {
	return &TokenStore{store: store}
}

func (s *TokenStore) Load(ctx context.Context) (domain.TokenPair, error) {
	access, accessErr := s.store.Get(ctx, accessTokenKey)
	refresh, refreshErr := s.store.Get(ctx, refreshTokenKey)

	if accessErr == nil && refreshErr == nil {
		pair := domain.TokenPair{AccessToken: access, RefreshToken: refresh}
		if !pair.Valid() {
			_ = s.Clear(ctx)
			return domain.TokenPair{}, domain.ErrNotAuthenticated
		}
		return pair, nil
	}

	if isMissing(accessErr) || isMissing(refreshErr) {
		// One half of the pair without the other is a broken session.
		_ = s.Clear(ctx)
		return domain.TokenPair{}, domain.ErrNotAuthenticated
	}

	err := errors.Join(accessErr, refreshErr)
	return domain.TokenPair{}, fmt.Errorf("load token pair: %w", err)
}

func (s *TokenStore) Save(ctx context.Context, pair domain.TokenPair) error {
	if !pair.Valid() {
		return errors.New("refusing to save partial token pair")
	}

	if err := s.store.Put(ctx, refreshTokenKey, pair.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if err := s.store.Put(ctx, accessTokenKey, pair.AccessToken); err != nil {
		// Roll the refresh token back so no partial pair survives.
		if clearErr := s.store.Delete(ctx, refreshTokenKey); clearErr != nil {
			return fmt.Errorf("save access token and rollback refresh token: %w", errors.Join(err, clearErr))
		}
		return fmt.Errorf("save access token: %w", err)
	}

	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	accessErr := s.store.Delete(ctx, accessTokenKey)
	refreshErr := s.store.Delete(ctx, refreshTokenKey)

	if accessErr != nil || refreshErr != nil {
		return fmt.Errorf("clear token pair: %w", errors.Join(accessErr, refreshErr))
	}
	return nil
}

func isMissing(err error) bool {
	return err != nil && errors.Is(err, ports.ErrSecretNotFound)
}
