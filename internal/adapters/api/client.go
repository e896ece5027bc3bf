// Package api is the authenticated HTTP client for the sana backend. It owns
// response classification and the refresh-then-retry-once policy on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL string
	// Timeout bounds each HTTP attempt. Zero means 30s.
	Timeout time.Duration
	// RefreshSkew triggers a proactive token refresh when the access token
	// expires within this window. Zero disables proactive refresh.
	RefreshSkew time.Duration
}

type Client struct {
	cfg       Config
	http      *http.Client
	tokens    ports.TokenStore
	refresher *Refresher
	clock     ports.Clock
	log       *zap.Logger
}

func NewClient(cfg Config, httpClient *http.Client, tokens ports.TokenStore, refresher *Refresher, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:       cfg,
		http:      httpClient,
		tokens:    tokens,
		refresher: refresher,
		clock:     ports.SystemClock{},
		log:       logger,
	}
}

// WithClock overrides the time source, for tests.
func (c *Client) WithClock(clock ports.Clock) *Client {
	c.clock = clock
	return c
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do issues one authenticated request. On 401 it refreshes the token pair
// through the single-flight refresher and re-issues the request exactly once;
// a second 401 fails the session.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any) error {
	pair, err := c.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return domain.ErrNotAuthenticated
		}
		return fmt.Errorf("load session tokens: %w", err)
	}

	if c.cfg.RefreshSkew > 0 && tokenExpiringSoon(pair.AccessToken, c.clock.Now(), c.cfg.RefreshSkew) {
		// Best effort: if the proactive refresh fails the 401 path below
		// still decides the session's fate.
		if err := c.refresher.Refresh(ctx); err != nil {
			c.log.Debug("proactive token refresh failed", zap.Error(err))
		} else if refreshed, loadErr := c.tokens.Load(ctx); loadErr == nil {
			pair = refreshed
		}
	}

	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	status, respBody, err := c.attempt(ctx, method, path, payload, pair.AccessToken)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
			return c.failSession(ctx, refreshErr)
		}

		pair, err = c.tokens.Load(ctx)
		if err != nil {
			return c.failSession(ctx, err)
		}

		status, respBody, err = c.attempt(ctx, method, path, payload, pair.AccessToken)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// Refreshed token rejected too. Never retry a third time.
			return c.failSession(ctx, domain.ErrRefreshFailed)
		}
	}

	return classify(method, path, status, respBody, out)
}

// Unauthenticated issues a request without a bearer token, for login.
func (c *Client) Unauthenticated(ctx context.Context, method, path string, body any, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	status, respBody, err := c.attempt(ctx, method, path, payload, "")
	if err != nil {
		return err
	}

	return classify(method, path, status, respBody, out)
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, accessToken string) (int, []byte, error) {
	endpoint, err := joinURL(c.cfg.BaseURL, path)
	if err != nil {
		return 0, nil, err
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed before a response", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &domain.NetworkError{Op: method + " " + path, Err: err}
	}

	c.log.Debug("request completed", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return resp.StatusCode, respBody, nil
}

// failSession converts a refresh failure into the terminal session error and
// clears stored tokens so the caller lands in a signed-out state. A network
// failure during refresh is not fatal: the tokens may still be good.
func (c *Client) failSession(ctx context.Context, cause error) error {
	if domain.IsNetworkError(cause) {
		return cause
	}

	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Warn("clear tokens after failed refresh", zap.Error(err))
	}
	c.log.Info("session expired", zap.Error(cause))

	return fmt.Errorf("%w: %s", domain.ErrSessionExpired, cause)
}

func classify(method, path string, status int, body []byte, out any) error {
	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
		return nil
	case status == http.StatusConflict:
		if msg := errorMessage(body); msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrSlotConflict, msg)
		}
		return domain.ErrSlotConflict
	default:
		return &domain.APIError{Status: status, Message: errorMessage(body)}
	}
}

// errorMessage pulls a human-readable message out of an error body, falling
// back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func joinURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
