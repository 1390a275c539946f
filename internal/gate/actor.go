package gate

// Role is the coarse privilege level stored on a user's profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role value to a Role. Unknown or empty values
// are treated as RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Actor is the caller of a single request. It is rebuilt for every request.
type Actor struct {
	UserID string
	Role   Role
}

// Authenticated reports whether an identity was resolved for the request.
func (a Actor) Authenticated() bool { return a.UserID != "" }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAct is the ownership/role rule: the owner or an admin may act.
func CanAct(a Actor, ownerID string) bool {
	if !a.Authenticated() {
		return false
	}
	return a.UserID == ownerID || a.IsAdmin()
}
