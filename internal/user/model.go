package user

import "time"

// Role is the coarse authorization role attached to a user. It maps
// directly onto the authority strings embedded in access tokens.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a directory record. PublicID is the stable external identifier
// used as the token subject; the numeric ID never leaves the service.
// Audit and soft-delete fields are set explicitly by the service and
// repository at insert/update time.
type User struct {
	ID           int64
	PublicID     string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Deleted      bool
	DeletedAt    *time.Time
}

// Authorities returns the role set embedded into tokens for this user.
func (u *User) Authorities() []string {
	return []string{string(u.Role)}
}
