package shared

// IdentityKind who is calling
type IdentityKind string

const (
	IdentityGuest IdentityKind = "guest"
	IdentityUser  IdentityKind = "user"
	IdentityAdmin IdentityKind = "admin"
)

// Identity explicit caller identity, resolved once at the edge and passed
// into every application service call.
type Identity struct {
	Kind  IdentityKind
	ID    string
	Email string
	Name  string
}

// Guest anonymous identity
func Guest() Identity {
	return Identity{Kind: IdentityGuest}
}

// UserIdentity authenticated shopper
func UserIdentity(id, email string) Identity {
	return Identity{Kind: IdentityUser, ID: id, Email: email}
}

// AdminIdentity authenticated administrator
func AdminIdentity(id, email string) Identity {
	return Identity{Kind: IdentityAdmin, ID: id, Email: email}
}

// IsAuthenticated user or admin
func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityUser || i.Kind == IdentityAdmin
}

// IsAdmin admin capability
func (i Identity) IsAdmin() bool {
	return i.Kind == IdentityAdmin
}

// RequireUser fails unless the caller is an authenticated account
func (i Identity) RequireUser() error {
	if !i.IsAuthenticated() || i.ID == "" {
		return NewUnauthorizedError("not authorized, login required")
	}
	return nil
}

// RequireAdmin fails unless the caller holds the admin capability
func (i Identity) RequireAdmin() error {
	if err := i.RequireUser(); err != nil {
		return err
	}
	if !i.IsAdmin() {
		return NewForbiddenError("identity", "admin access required")
	}
	return nil
}
