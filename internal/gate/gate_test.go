package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/destinote/destinote/internal/gate"
)

// mockPolicy is a simple policy for testing.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ gate.Actor, _ gate.Action, _ any) bool {
	return p.allowAll
}

var member = gate.Actor{UserID: "u-1", Role: gate.RoleUser}

func TestGate_Authorize_NoIdentity(t *testing.T) {
	g := gate.New()
	g.Register("test", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), gate.Actor{}, gate.ActionView, "test", nil)
	if !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.New()

	err := g.Authorize(context.Background(), member, gate.ActionView, "unknown", nil)
	if !errors.Is(err, gate.ErrNoPolicyDefined) {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize_Allowed(t *testing.T) {
	g := gate.New()
	g.Register("test", &mockPolicy{allowAll: true})

	if err := g.Authorize(context.Background(), member, gate.ActionView, "test", nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestGate_Authorize_Denied(t *testing.T) {
	g := gate.New()
	g.Register("test", &mockPolicy{allowAll: false})

	err := g.Authorize(context.Background(), member, gate.ActionView, "test", nil)
	if !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGate_Can(t *testing.T) {
	g := gate.New()
	g.Register("test", &mockPolicy{allowAll: true})
	g.Register("denied", &mockPolicy{allowAll: false})

	if !g.Can(context.Background(), member, gate.ActionCreate, "test", nil) {
		t.Error("expected Can to return true")
	}
	if g.Can(context.Background(), member, gate.ActionCreate, "denied", nil) {
		t.Error("expected Can to return false")
	}
}

func TestGate_PolicyFunc(t *testing.T) {
	g := gate.New()
	g.Register("article", gate.PolicyFunc(func(_ context.Context, _ gate.Actor, action gate.Action, _ any) bool {
		return action == gate.ActionView
	}))

	if !g.Can(context.Background(), member, gate.ActionView, "article", nil) {
		t.Error("view should be allowed")
	}
	if g.Can(context.Background(), member, gate.ActionDelete, "article", nil) {
		t.Error("delete should be denied")
	}
}
