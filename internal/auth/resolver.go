package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/destinote/destinote/internal/logging"
)

type ctxKey string

const userIDCtxKey = ctxKey("userID")

// SessionReader reads the user id from a session, if any.
type SessionReader interface {
	Parse(r *http.Request) (string, error)
}

// Resolver determines the acting user of a request. First success wins:
//  1. the userId query parameter, only when the caller allows it;
//  2. the session cookie;
//  3. an "Authorization: Bearer" token.
//
// Failures of the session or token services mean "no identity".
type Resolver struct {
	Sessions SessionReader
	Tokens   TokenVerifier
}

// Resolve returns the user id or "" when no identity can be established.
func (res *Resolver) Resolve(r *http.Request, allowQuery bool) string {
	if allowQuery {
		if id := r.URL.Query().Get("userId"); id != "" {
			return id
		}
	}

	if res.Sessions != nil {
		id, err := res.Sessions.Parse(r)
		if err == nil && id != "" {
			return id
		}
		if err != nil && err != ErrNoSession {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("session rejected")
		}
	}

	token := BearerToken(r)
	if token == "" || res.Tokens == nil {
		return ""
	}
	id, err := res.Tokens.Verify(r.Context(), token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("bearer token rejected")
		return ""
	}
	return id
}

// Middleware attaches the resolved user id (if any) to the request context.
// It never rejects a request; authorization happens later.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := res.Resolve(r, false); uid != "" {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDCtxKey).(string)
	return id, ok && id != ""
}
