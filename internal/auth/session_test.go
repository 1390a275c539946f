package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestWithCookies replays the cookies set on rr onto a new request.
func requestWithCookies(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessions_RoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)
	rr := httptest.NewRecorder()
	s.Create(rr, "8b6f1f5e-1111-4c3a-9a57-0d5b1f1d2a3c")

	id, err := s.Parse(requestWithCookies(rr))
	require.NoError(t, err)
	assert.Equal(t, "8b6f1f5e-1111-4c3a-9a57-0d5b1f1d2a3c", id)
}

func TestSessions_Tampered(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)
	rr := httptest.NewRecorder()
	s.Create(rr, "user-a")

	other := NewSessions("another-secret", time.Hour, false)
	_, err := other.Parse(requestWithCookies(rr))
	assert.ErrorIs(t, err, ErrInvalidSession)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "user-b.9999999999.forged"})
	_, err = s.Parse(req)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessions_Expired(t *testing.T) {
	s := NewSessions("secret", time.Minute, false)
	start := time.Now()
	s.now = func() time.Time { return start }
	rr := httptest.NewRecorder()
	s.Create(rr, "user-a")

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err := s.Parse(requestWithCookies(rr))
	assert.ErrorIs(t, err, ErrExpiredSession)
}

func TestSessions_NoCookieAndClear(t *testing.T) {
	s := NewSessions("secret", time.Hour, true)
	_, err := s.Parse(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	rr := httptest.NewRecorder()
	s.Clear(rr)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].Secure)
}
