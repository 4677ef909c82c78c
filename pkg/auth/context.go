package auth

import (
	"context"
	"errors"
)

// UserContext is the authenticated identity attached to a request.
type UserContext struct {
	UID      string
	Username string
	Roles    []string
	Policies []string
}

// HasPolicy reports whether the identity carries the named policy flag.
func (u *UserContext) HasPolicy(name string) bool {
	for _, p := range u.Policies {
		if p == name {
			return true
		}
	}
	return false
}

type contextKey struct{}

// ErrNoUserInContext is returned when a request carries no authenticated user.
var ErrNoUserInContext = errors.New("no user in context")

// SetUserInContext attaches the authenticated user to ctx.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// GetUserFromContext returns the authenticated user attached to ctx.
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(contextKey{}).(*UserContext)
	if !ok || user == nil {
		return nil, ErrNoUserInContext
	}
	return user, nil
}
