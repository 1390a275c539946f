package gate

import "context"

// Policy defines authorization rules for a resource type.
// For list/create, resource may be nil (context-only check).
type Policy interface {
	Can(ctx context.Context, actor Actor, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(ctx context.Context, actor Actor, action Action, resource any) bool

func (f PolicyFunc) Can(ctx context.Context, actor Actor, action Action, resource any) bool {
	return f(ctx, actor, action, resource)
}

// Ownable is implemented by records that carry exactly one owner.
type Ownable interface {
	OwnerID() string
}

// Owner is a bare Ownable, used when only the owner column was loaded.
type Owner string

func (o Owner) OwnerID() string { return string(o) }

// OwnershipPolicy allows the owner of a resource or an admin.
type OwnershipPolicy struct{}

// Can applies CanAct to the resource's owner. A nil resource is allowed
// for any authenticated actor; a resource without an owner is denied.
func (OwnershipPolicy) Can(_ context.Context, actor Actor, _ Action, resource any) bool {
	if resource == nil {
		return actor.Authenticated()
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return CanAct(actor, ownable.OwnerID())
}

// AdminOnlyPolicy allows admins and nobody else, regardless of ownership.
type AdminOnlyPolicy struct{}

func (AdminOnlyPolicy) Can(_ context.Context, actor Actor, _ Action, _ any) bool {
	return actor.Authenticated() && actor.IsAdmin()
}

// AuthenticatedPolicy allows any caller with a resolved identity.
type AuthenticatedPolicy struct{}

func (AuthenticatedPolicy) Can(_ context.Context, actor Actor, _ Action, _ any) bool {
	return actor.Authenticated()
}
