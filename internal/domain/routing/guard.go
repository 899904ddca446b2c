// Package routing decides, for each navigable path, whether to render it or redirect.
// The guard only checks authentication; it does not enforce per-role path membership.
package routing

import (
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
)

// Well-known paths.
const (
	PathLanding          = "/"
	PathLogin            = "/login"
	PathRegister         = "/register"
	PathDashboard        = "/dashboard"
	PathPatientDashboard = "/patient-dashboard"
)

// Kind is the outcome of a guard evaluation.
type Kind int

const (
	Render Kind = iota
	RedirectLogin
	RedirectHome
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is what the guard wants done with a navigation.
type Decision struct {
	Kind     Kind
	Location string // empty for Render
}

var publicPaths = map[string]bool{
	PathLanding:  true,
	PathLogin:    true,
	PathRegister: true,
}

var protectedPaths = map[string]bool{
	PathDashboard:           true,
	"/patients":             true,
	"/appointments":         true,
	"/messages":             true,
	"/templates":            true,
	"/broadcasts":           true,
	"/analytics":            true,
	"/audit-logs":           true,
	"/admin-management":     true,
	PathPatientDashboard:    true,
	"/patient-appointments": true,
	"/patient-messages":     true,
}

// IsKnown reports whether path is a page the portal serves.
func IsKnown(path string) bool {
	return publicPaths[path] || protectedPaths[path]
}

// IsProtected reports whether path requires an authenticated session.
func IsProtected(path string) bool {
	return protectedPaths[path]
}

// ProtectedPaths returns the page paths that require authentication.
func ProtectedPaths() []string {
	out := make([]string, 0, len(protectedPaths))
	for p := range protectedPaths {
		out = append(out, p)
	}
	return out
}

// HomeFor returns the landing page for an authenticated user.
func HomeFor(p domainauth.Permissions) string {
	if p.IsPatient {
		return PathPatientDashboard
	}
	return PathDashboard
}

// Evaluate applies the guard policy to a navigation.
func Evaluate(path string, p domainauth.Permissions) Decision {
	if !p.IsAuthenticated {
		if protectedPaths[path] {
			return Decision{Kind: RedirectLogin, Location: PathLogin}
		}
		return Decision{Kind: Render}
	}
	if path == PathLogin || path == PathRegister {
		return Decision{Kind: RedirectHome, Location: HomeFor(p)}
	}
	return Decision{Kind: Render}
}
