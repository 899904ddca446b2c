package httpx

import (
	"context"

	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

// managerKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type managerKey struct{}

// profileKey carries the browser profile id.
type profileKey struct{}

// SetManagerInContext returns a child context that carries the given session manager.
// If m is nil, the original ctx is returned unchanged.
func SetManagerInContext(ctx context.Context, m *service.SessionManager) context.Context {
	if m == nil {
		return ctx
	}
	return context.WithValue(ctx, managerKey{}, m)
}

// ManagerFromContext returns the request's session manager and whether one is present.
func ManagerFromContext(ctx context.Context) (*service.SessionManager, bool) {
	if m, ok := ctx.Value(managerKey{}).(*service.SessionManager); ok && m != nil {
		return m, true
	}
	return nil, false
}

// SetProfileIDInContext returns a child context carrying the browser profile id.
func SetProfileIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileKey{}, id)
}

// ProfileIDFromContext returns the browser profile id, or "" when absent.
func ProfileIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(profileKey{}).(string)
	return id
}
