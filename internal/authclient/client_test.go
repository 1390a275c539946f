package authclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/destinote/destinote/internal/config"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(config.AuthConfig{
		ServiceURL:     srv.URL,
		ServiceAnonKey: "anon",
	}, &http.Client{Timeout: 5 * time.Second})
}

func TestExchangeCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		require.NoError(t, json.Unmarshal(body, &in))
		assert.Equal(t, "the-code", in["auth_code"])
		assert.Equal(t, "the-verifier", in["code_verifier"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":3600,
			"user":{"id":"u-1","email":"ana@example.com","user_metadata":{"full_name":"Ana Lima","user_name":"ana"}}}`)
	})

	s, err := c.ExchangeCode(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "u-1", s.User.ID)
	assert.Equal(t, "ana", s.User.Metadata("user_name", "preferred_username"))
	assert.Equal(t, "Ana Lima", s.User.Metadata("name", "full_name"))
	assert.Equal(t, "", s.User.Metadata("missing"))
}

func TestExchangeCode_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid auth code"}`)
	})

	_, err := c.ExchangeCode(context.Background(), "bad", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid auth code", apiErr.Message)
}

func TestVerify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"msg":"invalid JWT"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"u-7","email":"x@example.com"}`)
	})

	id, err := c.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-7", id)

	_, err = c.Verify(context.Background(), "bad")
	assert.Error(t, err)
}

func TestCircuitOpensOnServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := c.GetUser(context.Background(), "tok")
		require.Error(t, err)
	}
	_, err := c.GetUser(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, 5, calls, "open breaker must short-circuit")
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})
	for i := 0; i < 8; i++ {
		_, _ = c.GetUser(context.Background(), "tok")
	}
	assert.Equal(t, 8, calls)
}

func TestNotConfigured(t *testing.T) {
	c := New(config.AuthConfig{})
	_, err := c.GetUser(context.Background(), "tok")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
