package policy

import (
	"context"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/store"
)

// LoadFunc fetches the owner of the targeted record.
type LoadFunc func(ctx context.Context) (gate.Ownable, error)

// PerformFunc runs the single store operation on behalf of actor.
type PerformFunc[T any] func(ctx context.Context, actor gate.Actor) (T, error)

// Guard runs the access sequence shared by every owner-or-admin endpoint:
// load the owner (store.ErrNotFound when missing), resolve the actor,
// consult the gate, then perform. Errors from perform pass through
// unchanged so their message reaches the client.
func Guard[T any](ctx context.Context, ag *AuthGate, resourceType string, action gate.Action, load LoadFunc, perform PerformFunc[T]) (T, error) {
	var zero T

	owner, err := load(ctx)
	if err != nil {
		return zero, store.Translate(err)
	}

	actor, err := ag.Authorize(ctx, action, resourceType, owner)
	if err != nil {
		return zero, err
	}

	return perform(ctx, actor)
}
