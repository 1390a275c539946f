package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/authclient"
	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/logging"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/policy"
	"github.com/destinote/destinote/internal/slug"
	"gorm.io/gorm"
)

// codeVerifierCookie holds the PKCE verifier set by the browser before it
// left for the OAuth provider.
const codeVerifierCookie = "destinote_code_verifier"

// AuthService is the part of the auth service client the handlers use.
type AuthService interface {
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*authclient.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	resolver *auth.Resolver
	roles    policy.RoleResolver
	service  AuthService
	siteURL  string
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, resolver *auth.Resolver, roles policy.RoleResolver, service AuthService, siteURL string) *AuthHandler {
	return &AuthHandler{
		db:       db,
		sessions: sessions,
		resolver: resolver,
		roles:    roles,
		service:  service,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// Logout clears the session cookie and, for bearer callers, revokes the
// token upstream. Revocation failures do not fail the logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	if token := auth.BearerToken(r); token != "" && h.service != nil {
		if err := h.service.SignOut(r.Context(), token); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("upstream sign out failed")
		}
	}
	httpx.JSON(w, http.StatusOK, ok)
}

// Role reports the caller's role. It is the only endpoint that honours a
// userId query parameter.
func (h *AuthHandler) Role(w http.ResponseWriter, r *http.Request) {
	uid := h.resolver.Resolve(r, true)
	if uid == "" {
		httpx.Error(w, r, gate.ErrUnauthenticated)
		return
	}
	role, err := h.roles.RoleOf(r.Context(), uid)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"isAdmin": role == gate.RoleAdmin,
		"userId":  uid,
	})
}

// Callback completes the OAuth flow: it exchanges the code, makes sure the
// user has a profile, opens a session and sends the browser to the profile.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		msg := q.Get("error_description")
		if msg == "" {
			msg = e
		}
		h.redirect(w, r, "/login?error="+url.QueryEscape(msg))
		return
	}
	code := q.Get("code")
	if code == "" {
		httpx.Error(w, r, httpx.BadRequest("code is required"))
		return
	}
	if h.service == nil {
		httpx.Error(w, r, authclient.ErrNotConfigured)
		return
	}

	var verifier string
	if c, err := r.Cookie(codeVerifierCookie); err == nil {
		verifier = c.Value
	}

	ctx := r.Context()
	sess, err := h.service.ExchangeCode(ctx, code, verifier)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("oauth code exchange failed")
		h.redirect(w, r, "/login?error=auth_callback_failed")
		return
	}

	profile, err := h.ensureProfile(ctx, &sess.User)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	h.sessions.Create(w, profile.ID)
	http.SetCookie(w, &http.Cookie{Name: codeVerifierCookie, Value: "", Path: "/", MaxAge: -1})

	target := profilePath(profile)
	if next := q.Get("next"); isLocalPath(next) {
		target = next
	}
	logging.Ctx(ctx).Info().Str("user_id", profile.ID).Msg("signed in")
	h.redirect(w, r, target)
}

// ensureProfile returns the user's profile, creating it on first sign-in
// with a username derived from the provider metadata or the email.
func (h *AuthHandler) ensureProfile(ctx context.Context, u *authclient.User) (*models.Profile, error) {
	var p models.Profile
	err := h.db.WithContext(ctx).Take(&p, "id = ?", u.ID).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	preferred := u.Metadata("user_name", "preferred_username", "name", "full_name")
	if preferred == "" {
		preferred, _, _ = strings.Cut(u.Email, "@")
	}
	username, err := uniqueSlug(ctx, h.db, &models.Profile{}, "username", preferred, "user", u.ID)
	if err != nil {
		return nil, err
	}

	p = models.Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  username,
		FullName:  u.Metadata("full_name", "name"),
		AvatarURL: u.Metadata("avatar_url", "picture"),
		Role:      string(gate.RoleUser),
	}
	if err := h.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// profilePath is the public profile URL of p. Usernames written outside
// the callback are not guaranteed to be slugs, so the slug is recomputed.
func profilePath(p *models.Profile) string {
	local, _, _ := strings.Cut(p.Email, "@")
	return "/profile/" + url.PathEscape(slug.MakeOr(p.Username, slug.MakeOr(local, "user")))
}

func (h *AuthHandler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.siteURL+path, http.StatusSeeOther)
}

// isLocalPath accepts same-site absolute paths only.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
