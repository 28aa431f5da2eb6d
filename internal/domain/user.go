package domain

import "time"

// Role is the access level attached to an identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RolePM    Role = "pm"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePM, RoleUser:
		return true
	}
	return false
}

// Identity is the verified caller of a request.
type Identity struct {
	SubjectID string
	Email     string
	Role      Role
}

// ManagedUser is the directory view of an identity, assembled per call
// from the provider's record set and never persisted locally.
type ManagedUser struct {
	SubjectID   string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	PhoneNumber string     `json:"phoneNumber"`
	Role        Role       `json:"role"`
	Disabled    bool       `json:"disabled"`
	CreatedAt   *time.Time `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin"`
}
