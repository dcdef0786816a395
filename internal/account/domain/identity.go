package domain

import "strings"

// AdminIDPrefix marks administrator identifiers issued by the frontend.
const AdminIDPrefix = "admin_"

// Role distinguishes administrators from ordinary reporters.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is a tagged principal. The role is decided once, when the
// identity is parsed, and carried unchanged afterwards.
type Identity struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}

// ParseIdentity classifies a raw user identifier. Empty input yields false.
func ParseIdentity(raw string) (Identity, bool) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return Identity{}, false
	}
	if strings.HasPrefix(id, AdminIDPrefix) {
		return Identity{Role: RoleAdmin, ID: id}, true
	}
	return Identity{Role: RoleUser, ID: id}, true
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
