// Package authclient talks to the hosted auth service: it exchanges OAuth
// codes for sessions and resolves access tokens to users.
package authclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/destinote/destinote/internal/config"
	"github.com/destinote/destinote/internal/logging"
	"github.com/destinote/destinote/internal/metrics"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const serviceName = "auth"

// ErrNotConfigured is returned when no service URL is set.
var ErrNotConfigured = errors.New("auth service is not configured")

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service: %d %s", e.Status, e.Message)
}

// User is the subset of the service's user object this app reads.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Metadata returns the first non-empty string value among keys.
func (u *User) Metadata(keys ...string) string {
	for _, k := range keys {
		if s, ok := u.UserMetadata[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Session is the result of a code exchange.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// Client calls the auth service through a circuit breaker. Calls are
// never retried.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

// New builds a client from configuration.
func New(cfg config.AuthConfig) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.ServiceTimeout})
}

// NewWithHTTPClient is New with an explicit transport, used by tests.
func NewWithHTTPClient(cfg config.AuthConfig, hc *http.Client) *Client {
	name := "auth-service"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors (bad code, expired token) say nothing about the
		// health of the service.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.ServiceURL, "/"),
		anonKey: cfg.ServiceAnonKey,
		http:    hc,
		cb:      cb,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ExchangeCode trades an OAuth authorization code (plus the PKCE verifier
// the browser stored, when present) for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"auth_code":     code,
		"code_verifier": codeVerifier,
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, "exchange_code", http.MethodPost, "/auth/v1/token?grant_type=pkce", "", body)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.User.ID == "" {
		return nil, errors.New("auth service returned a session without user")
	}
	return &s, nil
}

// GetUser returns the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	raw, err := c.do(ctx, "get_user", http.MethodGet, "/auth/v1/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return nil, errors.New("auth service returned a user without id")
	}
	return &u, nil
}

// Verify implements auth.TokenVerifier by asking the service.
func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	u, err := c.GetUser(ctx, token)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// SignOut revokes the refresh tokens of accessToken's session.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, "sign_out", http.MethodPost, "/auth/v1/logout", accessToken, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path, bearer string, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	out, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, bearer, body)
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.UpstreamRequests.WithLabelValues(serviceName, op, result).Inc()
	return out, err
}

func (c *Client) roundTrip(ctx context.Context, method, path, bearer string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service %s %s: %w", method, redact(path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// errorMessage pulls a human message out of the service's error body.
func errorMessage(raw []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(raw, &e) == nil {
		for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

// redact drops the query string from logged paths.
func redact(path string) string {
	if u, err := url.Parse(path); err == nil {
		return u.Path
	}
	return path
}
