// Package gate provides the ownership/role authorization rule and a small
// registry of per-resource policies. It has no dependency on storage or HTTP.
package gate

import "context"

// Gate is the central authorization checkpoint.
// Register policies by resource type name, then call Authorize or Can.
type Gate struct {
	policies map[string]Policy
}

// New creates an empty Gate ready to register policies.
func New() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Register adds a policy for a given resource type (e.g., "article").
// Overwrites any existing policy for that type.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize checks authorization and returns an error if denied.
// ErrUnauthenticated is returned for an actor without identity,
// ErrForbidden when the policy denies and ErrNoPolicyDefined when
// resourceType has no registered policy.
func (g *Gate) Authorize(ctx context.Context, actor Actor, action Action, resourceType string, resource any) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, actor, action, resource) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, actor Actor, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, actor, action, resourceType, resource) == nil
}
