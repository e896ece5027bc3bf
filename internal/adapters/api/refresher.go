package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/api/auth/token/refresh"

// Refresher exchanges the refresh token for a new pair, coalescing concurrent
// callers into a single network call. All waiters observe the same outcome,
// and the new pair is persisted before any waiter resumes.
type Refresher struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenStore
	timeout time.Duration
	log     *zap.Logger

	group singleflight.Group
}

func NewRefresher(baseURL string, httpClient *http.Client, tokens ports.TokenStore, timeout time.Duration, logger *zap.Logger) *Refresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Refresher{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
		timeout: timeout,
		log:     logger,
	}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	// The exchange is detached from the first caller's context so that one
	// caller navigating away does not fail every waiter.
	_, err, shared := r.group.Do("refresh", func() (any, error) {
		return nil, r.exchange(context.WithoutCancel(ctx))
	})
	if shared {
		r.log.Debug("joined in-flight token refresh")
	}
	return err
}

func (r *Refresher) exchange(ctx context.Context) error {
	pair, err := r.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return fmt.Errorf("%w: no refresh token", domain.ErrRefreshFailed)
		}
		return fmt.Errorf("%w: load tokens: %s", domain.ErrRefreshFailed, err)
	}

	endpoint, err := joinURL(r.baseURL, refreshPath)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrRefreshFailed, err)
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": pair.RefreshToken})
	if err != nil {
		return fmt.Errorf("%w: encode request: %s", domain.ErrRefreshFailed, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %s", domain.ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		// A blip here does not prove the refresh token is bad.
		return &domain.NetworkError{Op: "POST " + refreshPath, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.log.Warn("refresh token rejected", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", domain.ErrRefreshFailed, resp.StatusCode)
	}

	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&refreshed); err != nil {
		return fmt.Errorf("%w: decode response: %s", domain.ErrRefreshFailed, err)
	}

	next := domain.TokenPair{AccessToken: refreshed.AccessToken, RefreshToken: refreshed.RefreshToken}
	if !next.Valid() {
		return fmt.Errorf("%w: response missing token pair", domain.ErrRefreshFailed)
	}

	if err := r.tokens.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: persist refreshed pair: %s", domain.ErrRefreshFailed, err)
	}

	r.log.Debug("token pair refreshed")
	return nil
}
