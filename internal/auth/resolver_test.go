package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	id    string
	err   error
	calls int
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.id, s.err
}

func newSessionRequest(t *testing.T, s *Sessions, target, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		rr := httptest.NewRecorder()
		s.Create(rr, userID)
		for _, c := range rr.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	return req
}

func TestResolver_Precedence(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)
	tokens := &stubVerifier{id: "bearer-user"}
	res := &Resolver{Sessions: sessions, Tokens: tokens}

	// Query wins only when allowed.
	req := newSessionRequest(t, sessions, "/api/auth/role?userId=query-user", "cookie-user")
	req.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, "query-user", res.Resolve(req, true))
	assert.Equal(t, "cookie-user", res.Resolve(req, false))
	assert.Equal(t, 0, tokens.calls, "bearer must not be consulted when the cookie resolves")

	// Bearer is the last resort.
	req = newSessionRequest(t, sessions, "/", "")
	req.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, "bearer-user", res.Resolve(req, false))
}

func TestResolver_ServiceErrorsMeanNoIdentity(t *testing.T) {
	res := &Resolver{
		Sessions: NewSessions("secret", time.Hour, false),
		Tokens:   &stubVerifier{err: errors.New("auth service unavailable")},
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	assert.Equal(t, "", res.Resolve(req, false))
}

func TestResolver_Middleware(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)
	res := &Resolver{Sessions: sessions}

	var got string
	var ok bool
	h := res.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), newSessionRequest(t, sessions, "/?userId=ignored", "cookie-user"))
	assert.True(t, ok)
	assert.Equal(t, "cookie-user", got)

	h.ServeHTTP(httptest.NewRecorder(), newSessionRequest(t, sessions, "/?userId=ignored", ""))
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"Bearer":      "",
		"":            "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(req), "header %q", header)
	}
}
