package domain

import "strings"

// Role is the account kind returned by the backend.
type Role string

const (
	RoleClient     Role = "client"
	RoleProvider   Role = "provider"
	RoleMixed      Role = "mixto"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// RegistrationRoles are the roles a user may pick when signing up.
var RegistrationRoles = []Role{RoleClient, RoleProvider, RoleMixed}

// ParseRole normalizes a role name. The second result is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleClient, RoleProvider, RoleMixed, RoleAdmin, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// IsRegistrable reports whether the role can be chosen at registration.
func (r Role) IsRegistrable() bool {
	for _, allowed := range RegistrationRoles {
		if r == allowed {
			return true
		}
	}
	return false
}

// User is the account attached to an authenticated session.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// HasRole reports whether the user has exactly the given role.
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the user has one of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasAnyRole(RoleAdmin, RoleSuperAdmin)
}

func (u *User) CanProvideServices() bool {
	return u.HasAnyRole(RoleProvider, RoleMixed)
}

func (u *User) CanCreateReviews() bool {
	return u.HasAnyRole(RoleClient, RoleMixed)
}

// Credentials is the login form input.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the sign-up form input.
type Registration struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            Role
}
