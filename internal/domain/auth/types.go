// Package auth contains domain-level types for the portal's client session.
// It is pure and free of framework/adapter concerns.
package auth

import "strings"

// Role represents a portal authorization role.
// Keep string form for easy persistence in the profile store.
// Valid values are defined as constants below; the set is closed.
type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ParseRole reports whether s is one of the three portal roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RolePatient, RoleStaff, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Valid returns true when r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// RolePtr is a helper for optional role inputs.
func RolePtr(r Role) *Role { return &r }

// Identity is the authenticated principal. JSON names follow the clinic API.
type Identity struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role,omitempty"`
	PatientRef *int   `json:"patient_id,omitempty"`
}

// Session is the persisted authentication artifact for one browser profile.
type Session struct {
	Token    string
	Identity Identity
}

// State is the lifecycle state of a session manager.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Permissions is the derived, non-persisted projection of an identity.
type Permissions struct {
	IsAuthenticated bool `json:"is_authenticated"`
	IsAdmin         bool `json:"is_admin"`
	IsStaff         bool `json:"is_staff"`
	IsPatient       bool `json:"is_patient"`
}

// PermissionsFor computes all flags from a single identity value.
// A nil identity yields the anonymous view.
func PermissionsFor(id *Identity) Permissions {
	if id == nil {
		return Permissions{}
	}
	return Permissions{
		IsAuthenticated: true,
		IsAdmin:         id.Role == RoleAdmin,
		IsStaff:         id.Role == RoleStaff || id.Role == RoleAdmin,
		IsPatient:       id.Role == RolePatient,
	}
}

// InferRole derives a role from free-text email content.
// Precedence: "admin" substring, then "staff", otherwise patient.
func InferRole(email string) Role {
	switch {
	case strings.Contains(email, "admin"):
		return RoleAdmin
	case strings.Contains(email, "staff"):
		return RoleStaff
	default:
		return RolePatient
	}
}

// ResolveRole picks the role for a successful backend response:
// explicit service role, then the requested role, then inference from email.
func ResolveRole(explicit Role, requested *Role, email string) Role {
	if explicit.Valid() {
		return explicit
	}
	if requested != nil && requested.Valid() {
		return *requested
	}
	return InferRole(email)
}

// FallbackRole picks the role for a locally synthesized demo session.
// An email containing admin or staff overrides the requested role here.
func FallbackRole(email string, requested *Role) Role {
	role := RolePatient
	if requested != nil && requested.Valid() {
		role = *requested
	}
	if inferred := InferRole(email); inferred != RolePatient {
		role = inferred
	}
	return role
}

// NormalizeIdentity ensures a hydrated identity carries a valid role.
// changed reports whether the result should be written back to storage;
// identities without an email get patient without a back-fill.
func NormalizeIdentity(id Identity) (Identity, bool) {
	if id.Role.Valid() {
		return id, false
	}
	if id.Email == "" {
		id.Role = RolePatient
		return id, false
	}
	id.Role = InferRole(id.Email)
	return id, true
}

// DisplayName returns the portion of an email before "@".
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
