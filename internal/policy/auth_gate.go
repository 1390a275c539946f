package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/metrics"
	"gorm.io/gorm"
)

// Resource type names registered on the gate.
const (
	ResourceArticle = "article"
	ResourceComment = "comment"
	ResourcePhoto   = "photo"
	ResourceFollow  = "follow"
	ResourceVisited = "visited"
	ResourceLike    = "like"
	ResourceImage   = "image"
	ResourceAdmin   = "admin"
)

// AuthGate is the central authorization point: it turns the identity in
// the request context into an Actor and asks the gate.
type AuthGate struct {
	Gate  *gate.Gate
	Roles RoleResolver
}

// NewAuthGate creates a gate with the application's policies registered.
// serviceDB is used for role lookups only.
func NewAuthGate(serviceDB *gorm.DB) *AuthGate {
	return NewAuthGateWithRoles(NewDBRoleResolver(serviceDB))
}

// NewAuthGateWithRoles is NewAuthGate with an explicit role source.
func NewAuthGateWithRoles(roles RoleResolver) *AuthGate {
	g := gate.New()

	owned := gate.OwnershipPolicy{}
	g.Register(ResourceArticle, owned)
	g.Register(ResourceComment, owned)
	g.Register(ResourcePhoto, owned)
	g.Register(ResourceFollow, owned)
	g.Register(ResourceVisited, owned)

	g.Register(ResourceLike, gate.AuthenticatedPolicy{})
	g.Register(ResourceImage, gate.AuthenticatedPolicy{})

	g.Register(ResourceAdmin, gate.AdminOnlyPolicy{})

	return &AuthGate{Gate: g, Roles: roles}
}

// Actor builds the actor of the current request. No identity yields the
// zero Actor and no error; a failing role lookup is returned as is.
func (ag *AuthGate) Actor(ctx context.Context) (gate.Actor, error) {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.Actor{}, nil
	}
	role, err := ag.Roles.RoleOf(ctx, uid)
	if err != nil {
		return gate.Actor{}, err
	}
	return gate.Actor{UserID: uid, Role: role}, nil
}

// Authorize checks whether the current request may perform action on
// resource. It returns gate.ErrUnauthenticated, gate.ErrForbidden, or the
// role lookup error.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) (gate.Actor, error) {
	actor, err := ag.Actor(ctx)
	if err != nil {
		return actor, err
	}
	err = ag.Gate.Authorize(ctx, actor, action, resourceType, resource)
	metrics.AccessDecisions.WithLabelValues(resourceType, outcome(err)).Inc()
	return actor, err
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	_, err := ag.Authorize(ctx, action, resourceType, resource)
	return err == nil
}

// RequireIdentity rejects requests without a resolved identity with 401.
func (ag *AuthGate) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			httpx.Error(w, r, gate.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows admins only: 401 without identity, 403 for others.
func (ag *AuthGate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := ag.Authorize(r.Context(), gate.ActionModerate, ResourceAdmin, nil); err != nil {
			httpx.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "allow"
	case errors.Is(err, gate.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, gate.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
