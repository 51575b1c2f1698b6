// Package session holds who is signed in: an Identity paired with its opaque token,
// restored from and persisted to a Persister.
package session

import (
	"strings"
)

// Role is the user's role as understood by the role policy.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLecturer Role = "lecturer"
	RoleStudent  Role = "student"
)

var (
	KnownRoles = []Role{RoleAdmin, RoleLecturer, RoleStudent}

	// legacy values the records API still hands out
	roleAliases = map[string]Role{
		"teacher": RoleLecturer,
	}
)

// NormalizeRole lowers and trims `raw`. Unknown values are kept as they are.
func NormalizeRole(raw string) Role {
	r := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := roleAliases[r]; ok {
		return alias
	}
	return Role(r)
}

func (r Role) IsKnown() bool {
	for _, known := range KnownRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Identity is the signed-in user's profile.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// FullName is "First Last", trimmed when either part is missing.
func (id Identity) FullName() string {
	return strings.TrimSpace(id.FirstName + " " + id.LastName)
}

// DisplayName is the first name, falling back to the local part of the email.
func (id Identity) DisplayName() string {
	if id.FirstName != "" {
		return id.FirstName
	}
	return strings.SplitN(id.Email, "@", 2)[0]
}

func (id Identity) valid() bool {
	return id.ID != ""
}
