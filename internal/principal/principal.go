// Package principal carries the authenticated user through request contexts.
package principal

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole returns the role for raw, or false when it is unknown.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// IsAdmin is true for admins and super admins.
func IsAdmin(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func IsSuperAdmin(r Role) bool {
	return r == RoleSuperAdmin
}

type Principal struct {
	UserID snowflake.ID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return IsAdmin(p.Role)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, false
	}
	return p, true
}
